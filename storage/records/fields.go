package records

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/strcase"

	"github.com/trezcool/studyflow/core/due"
)

// state tags every decoded backend value.
type state int

const (
	absent state = iota
	malformed
	present
)

// FieldName maps an entity field to its backend name: `Id` & `name` map to the backend
// system fields, every other field to snake_case + "_c" (eg. gradeCategories -> grade_categories_c).
func FieldName(field string) string {
	switch field {
	case IDField, "id":
		return IDField
	case "name":
		return NameField
	}
	return strcase.ToSnake(field) + "_c"
}

func fieldNames(fields []string) map[string]string {
	names := make(map[string]string, len(fields))
	for _, f := range fields {
		names[FieldName(f)] = f
	}
	return names
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func decodeFloat(v interface{}) (float64, state) {
	if isBlank(v) {
		return 0, absent
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, malformed
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, malformed
		}
		f = parsed
	default:
		return 0, malformed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, malformed
	}
	return f, present
}

func decodeInt(v interface{}) (int, state) {
	f, st := decodeFloat(v)
	if st != present {
		return 0, st
	}
	if f != math.Trunc(f) {
		return 0, malformed
	}
	return int(f), present
}

func decodeString(v interface{}) (string, state) {
	if v == nil {
		return "", absent
	}
	switch s := v.(type) {
	case string:
		return s, present
	case float64, json.Number, int, int64, bool:
		b, _ := json.Marshal(s)
		return string(b), present
	default:
		return "", malformed
	}
}

// decodeRef normalizes a reference that may be a bare id, a numeric string or an embedded {Id, Name} object.
func decodeRef(v interface{}) (int, state) {
	if obj, ok := v.(map[string]interface{}); ok {
		id, st := decodeInt(obj[IDField])
		if st == absent {
			return 0, malformed
		}
		return id, st
	}
	if obj, ok := v.(Record); ok {
		return decodeRef(map[string]interface{}(obj))
	}
	return decodeInt(v)
}

func decodeTime(v interface{}) (time.Time, state) {
	if isBlank(v) {
		return time.Time{}, absent
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), present
	case string:
		parsed, err := due.ParseDate(strings.TrimSpace(t), time.UTC)
		if err != nil {
			return time.Time{}, malformed
		}
		return parsed.UTC(), present
	default:
		return time.Time{}, malformed
	}
}

// decodeList decodes a JSON-encoded list stored as a string, or an already decoded list.
func decodeList(v interface{}) ([]interface{}, state) {
	if isBlank(v) {
		return nil, absent
	}
	switch l := v.(type) {
	case []interface{}:
		return l, present
	case string:
		var list []interface{}
		if err := json.Unmarshal([]byte(l), &list); err != nil {
			return nil, malformed
		}
		if list == nil { // "null"
			return nil, absent
		}
		return list, present
	default:
		return nil, malformed
	}
}

func encodeJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decoder reads the fields of one record and remembers which were malformed.
type decoder struct {
	rec       Record
	malformed []string
}

func newDecoder(rec Record) *decoder {
	return &decoder{rec: rec}
}

func (d *decoder) report(field string, st state) {
	if st == malformed {
		d.malformed = append(d.malformed, field)
	}
}

func (d *decoder) string(field string) string {
	s, st := decodeString(d.rec[field])
	switch st {
	case present:
		return s
	case malformed:
		d.report(field, st)
	}
	return ""
}

func (d *decoder) int(field string, fallback int) int {
	i, st := decodeInt(d.rec[field])
	switch st {
	case present:
		return i
	case malformed:
		d.report(field, st)
	}
	return fallback
}

func (d *decoder) float(field string, fallback float64) float64 {
	f, st := decodeFloat(d.rec[field])
	switch st {
	case present:
		return f
	case malformed:
		d.report(field, st)
	}
	return fallback
}

// nullFloat returns (value, valid). A malformed value yields malformedValid.
func (d *decoder) nullFloat(field string, malformedValid bool) (float64, bool) {
	f, st := decodeFloat(d.rec[field])
	switch st {
	case present:
		return f, true
	case malformed:
		d.report(field, st)
		return 0, malformedValid
	}
	return 0, false
}

func (d *decoder) ref(field string) int {
	id, st := decodeRef(d.rec[field])
	switch st {
	case present:
		return id
	case malformed:
		d.report(field, st)
	}
	return 0
}

func (d *decoder) time(field string) time.Time {
	t, st := decodeTime(d.rec[field])
	switch st {
	case present:
		return t
	case malformed:
		d.report(field, st)
	}
	return time.Time{}
}

func (d *decoder) list(field string) []interface{} {
	l, st := decodeList(d.rec[field])
	switch st {
	case present:
		return l
	case malformed:
		d.report(field, st)
	}
	return []interface{}{}
}
