package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/trezcool/studyflow/storage/records"
)

func (db *DB) FetchMany(ctx context.Context, tbl string, q records.Query) (*records.ManyResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := db.table(tbl)
	if err != nil {
		return nil, err
	}

	t.RLock()
	matched := make([]records.Record, 0, len(t.rows))
	for _, row := range t.rows {
		if matchesAll(row, q.Where) {
			cp, err := clone(project(row, q.Fields))
			if err != nil {
				t.RUnlock()
				return nil, err
			}
			matched = append(matched, cp)
		}
	}
	t.RUnlock()

	sortRecords(matched, q)
	total := len(matched)
	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	return &records.ManyResponse{Success: true, Data: matched, Total: total}, nil
}

func (db *DB) FetchOne(ctx context.Context, tbl string, id int) (*records.OneResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := db.table(tbl)
	if err != nil {
		return nil, err
	}

	t.RLock()
	defer t.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return &records.OneResponse{Success: true}, nil
	}
	cp, err := clone(row)
	if err != nil {
		return nil, err
	}
	return &records.OneResponse{Success: true, Data: cp}, nil
}

func (db *DB) Create(ctx context.Context, tbl string, recs []records.Record, idempotencyKey string) (*records.MutateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := db.table(tbl)
	if err != nil {
		return nil, err
	}

	t.Lock()
	defer t.Unlock()

	if idempotencyKey != "" {
		if prev, ok := t.keys[idempotencyKey]; ok {
			return cloneResponse(prev)
		}
	}

	resp := &records.MutateResponse{Success: true}
	for _, rec := range recs {
		row, err := clone(rec)
		if err != nil {
			return nil, err
		}
		t.seq++
		row[records.IDField] = float64(t.seq)
		t.rows[t.seq] = row

		data, err := clone(row)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, records.Result{Success: true, Data: data})
	}

	if idempotencyKey != "" {
		t.keys[idempotencyKey] = resp
		return cloneResponse(resp)
	}
	return resp, nil
}

func (db *DB) Update(ctx context.Context, tbl string, recs []records.Record) (*records.MutateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := db.table(tbl)
	if err != nil {
		return nil, err
	}

	t.Lock()
	defer t.Unlock()

	resp := &records.MutateResponse{Success: true}
	for _, rec := range recs {
		id := rec.ID()
		row, ok := t.rows[id]
		if !ok {
			resp.Results = append(resp.Results, records.Result{Message: records.NotFoundMessage})
			continue
		}
		fields, err := clone(rec)
		if err != nil {
			return nil, err
		}
		for k, v := range fields {
			row[k] = v
		}
		row[records.IDField] = float64(id)

		data, err := clone(row)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, records.Result{Success: true, Data: data})
	}
	return resp, nil
}

func (db *DB) Delete(ctx context.Context, tbl string, ids []int) (*records.MutateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := db.table(tbl)
	if err != nil {
		return nil, err
	}

	t.Lock()
	defer t.Unlock()

	resp := &records.MutateResponse{Success: true}
	for _, id := range ids {
		if _, ok := t.rows[id]; !ok {
			resp.Results = append(resp.Results, records.Result{Message: records.NotFoundMessage})
			continue
		}
		delete(t.rows, id)
		resp.Results = append(resp.Results, records.Result{Success: true})
	}
	return resp, nil
}

func project(row records.Record, fields []string) records.Record {
	if len(fields) == 0 {
		return row
	}
	out := records.Record{records.IDField: row[records.IDField]}
	for _, f := range fields {
		if v, ok := row[f]; ok {
			out[f] = v
		}
	}
	return out
}

// scalar normalizes a stored value for comparisons: numbers to float64, lookups to their Id.
func scalar(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return scalar(val[records.IDField])
	case records.Record:
		return scalar(val[records.IDField])
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	}
	return v
}

// compare orders two scalars; ok is false when they are not comparable.
func compare(a, b interface{}) (cmp int, ok bool) {
	a, b = scalar(a), scalar(b)
	if fa, isNum := a.(float64); isNum {
		if fb, isNum := b.(float64); isNum {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			}
			return 0, true
		}
	}
	if a == nil || b == nil {
		if a == b {
			return 0, true
		}
		return 0, false
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), true
}

func matches(row records.Record, cond records.Condition) bool {
	v := row[cond.Field]
	if len(cond.Values) == 0 {
		return true
	}
	switch cond.Operator {
	case records.OpEqualTo, records.OpIn:
		for _, want := range cond.Values {
			if cmp, ok := compare(v, want); ok && cmp == 0 {
				return true
			}
		}
		return false
	case records.OpNotEqualTo:
		cmp, ok := compare(v, cond.Values[0])
		return !ok || cmp != 0
	case records.OpContains:
		if v == nil {
			return false
		}
		return strings.Contains(strings.ToLower(fmt.Sprint(scalar(v))), strings.ToLower(fmt.Sprint(cond.Values[0])))
	case records.OpGreaterThan:
		cmp, ok := compare(v, cond.Values[0])
		return ok && cmp > 0
	case records.OpLessThan:
		cmp, ok := compare(v, cond.Values[0])
		return ok && cmp < 0
	}
	return false
}

func matchesAll(row records.Record, where []records.Condition) bool {
	for _, cond := range where {
		if !matches(row, cond) {
			return false
		}
	}
	return true
}

// sortRecords orders by q.OrderBy then by Id.
func sortRecords(rows []records.Record, q records.Query) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range q.OrderBy {
			cmp, ok := compare(rows[i][ord.Field], rows[j][ord.Field])
			if !ok || cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return rows[i].ID() < rows[j].ID()
	})
}
