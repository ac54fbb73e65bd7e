package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/storage/records"
)

// RecordStore is a records.Store over the `records` jsonb table.
type RecordStore struct {
	db *sqlx.DB
}

type recordRow struct {
	ID   int            `db:"id"`
	Data types.JSONText `db:"data"`
}

var _ records.Store = (*RecordStore)(nil) // interface compliance check

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: sqlx.NewDb(db, "postgres")}
}

// connErr turns a lost connection into a shutdown error.
func connErr(err error, msg string) error {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}

func (row recordRow) record() (records.Record, error) {
	rec := make(records.Record)
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &rec); err != nil {
			return nil, errors.Wrapf(err, "decoding record %d", row.ID)
		}
	}
	rec[records.IDField] = float64(row.ID)
	return rec, nil
}

// queryBuilder accumulates positional args for a single statement.
type queryBuilder struct {
	args []interface{}
}

func (qb *queryBuilder) arg(v interface{}) string {
	qb.args = append(qb.args, v)
	return "$" + strconv.Itoa(len(qb.args))
}

// column returns the SQL expression of a record field. Lookup objects compare by their Id.
func (qb *queryBuilder) column(field string) string {
	if field == records.IDField {
		return "id::text"
	}
	p := qb.arg(field)
	return fmt.Sprintf("COALESCE(data->%s->>'%s', data->>%s)", p, records.IDField, p)
}

func textValue(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case map[string]interface{}:
		return textValue(val[records.IDField])
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func isNumeric(v interface{}) bool {
	switch v.(type) {
	case int, int64, float64, float32:
		return true
	}
	return false
}

func (qb *queryBuilder) condition(cond records.Condition) (string, error) {
	if len(cond.Values) == 0 {
		return "TRUE", nil
	}
	col := qb.column(cond.Field)
	first := cond.Values[0]

	switch cond.Operator {
	case records.OpEqualTo, records.OpIn:
		vals := make([]string, 0, len(cond.Values))
		for _, v := range cond.Values {
			vals = append(vals, textValue(v))
		}
		return fmt.Sprintf("%s = ANY(%s)", col, qb.arg(pq.Array(vals))), nil
	case records.OpNotEqualTo:
		return fmt.Sprintf("%s IS DISTINCT FROM %s", col, qb.arg(textValue(first))), nil
	case records.OpContains:
		return fmt.Sprintf("%s ILIKE '%%' || %s || '%%'", col, qb.arg(textValue(first))), nil
	case records.OpGreaterThan, records.OpLessThan:
		op := ">"
		if cond.Operator == records.OpLessThan {
			op = "<"
		}
		if isNumeric(first) {
			return fmt.Sprintf("(%s)::numeric %s %s", col, op, qb.arg(textValue(first))), nil
		}
		return fmt.Sprintf("%s %s %s", col, op, qb.arg(textValue(first))), nil
	}
	return "", errors.Errorf("unsupported operator %q", cond.Operator)
}

func (qb *queryBuilder) where(table string, conds []records.Condition) (string, error) {
	clauses := []string{"table_name = " + qb.arg(table)}
	for _, cond := range conds {
		c, err := qb.condition(cond)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, c)
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}

func (qb *queryBuilder) orderBy(ordering []core.DBOrdering) string {
	terms := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		col := "id"
		if ord.Field != records.IDField {
			col = "data->>" + qb.arg(ord.Field)
		}
		terms = append(terms, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	terms = append(terms, "id ASC")
	return " ORDER BY " + strings.Join(terms, ", ")
}

func project(rec records.Record, fields []string) records.Record {
	if len(fields) == 0 {
		return rec
	}
	out := records.Record{records.IDField: rec[records.IDField]}
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

func (s *RecordStore) FetchMany(ctx context.Context, table string, q records.Query) (*records.ManyResponse, error) {
	qb := new(queryBuilder)
	where, err := qb.where(table, q.Where)
	if err != nil {
		return &records.ManyResponse{Message: err.Error()}, nil
	}

	var total int
	if err = s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM records"+where, qb.args...); err != nil {
		return nil, connErr(err, "counting records")
	}

	stmt := "SELECT id, data FROM records" + where + qb.orderBy(q.OrderBy)
	if q.Limit > 0 {
		stmt += " LIMIT " + qb.arg(q.Limit)
	}
	if q.Offset > 0 {
		stmt += " OFFSET " + qb.arg(q.Offset)
	}

	var rows []recordRow
	if err = s.db.SelectContext(ctx, &rows, stmt, qb.args...); err != nil {
		return nil, connErr(err, "selecting records")
	}
	resp := &records.ManyResponse{Success: true, Data: make([]records.Record, 0, len(rows)), Total: total}
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		resp.Data = append(resp.Data, project(rec, q.Fields))
	}
	return resp, nil
}

func (s *RecordStore) FetchOne(ctx context.Context, table string, id int) (*records.OneResponse, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, "SELECT id, data FROM records WHERE table_name = $1 AND id = $2", table, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &records.OneResponse{Success: true}, nil
		}
		return nil, connErr(err, "selecting record")
	}
	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	return &records.OneResponse{Success: true, Data: rec}, nil
}

func payload(rec records.Record) (types.JSONText, error) {
	data := make(records.Record, len(rec))
	for k, v := range rec {
		if k != records.IDField {
			data[k] = v
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	return b, nil
}

func (s *RecordStore) replay(ctx context.Context, q sqlx.QueryerContext, table, key string) (*records.MutateResponse, error) {
	var stored types.JSONText
	err := sqlx.GetContext(ctx, q, &stored, "SELECT response FROM idempotency_keys WHERE table_name = $1 AND key = $2", table, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading idempotency key")
	}
	resp := new(records.MutateResponse)
	if err = stored.Unmarshal(resp); err != nil {
		return nil, errors.Wrap(err, "decoding stored response")
	}
	return resp, nil
}

func (s *RecordStore) Create(ctx context.Context, table string, recs []records.Record, idempotencyKey string) (resp *records.MutateResponse, err error) {
	if idempotencyKey != "" {
		if resp, err = s.replay(ctx, s.db, table, idempotencyKey); resp != nil || err != nil {
			return resp, err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	resp = &records.MutateResponse{Success: true}
	for _, rec := range recs {
		data, err := payload(rec)
		if err != nil {
			return nil, err
		}
		var row recordRow
		err = tx.GetContext(ctx, &row,
			"INSERT INTO records (table_name, data) VALUES ($1, $2) RETURNING id, data", table, data)
		if err != nil {
			return nil, errors.Wrap(err, "inserting record")
		}
		created, err := row.record()
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, records.Result{Success: true, Data: created})
	}

	if idempotencyKey != "" {
		stored, err := json.Marshal(resp)
		if err != nil {
			return nil, errors.Wrap(err, "encoding response")
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO idempotency_keys (key, table_name, response) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
			idempotencyKey, table, types.JSONText(stored))
		if err != nil {
			return nil, errors.Wrap(err, "storing idempotency key")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// a concurrent request with the same key committed first
			_ = tx.Rollback()
			prev, err := s.replay(ctx, s.db, table, idempotencyKey)
			if err == nil && prev == nil {
				err = errors.Errorf("idempotency key %q vanished", idempotencyKey)
			}
			return prev, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing transaction")
	}
	return resp, nil
}

func (s *RecordStore) Update(ctx context.Context, table string, recs []records.Record) (resp *records.MutateResponse, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	resp = &records.MutateResponse{Success: true}
	for _, rec := range recs {
		data, err := payload(rec)
		if err != nil {
			return nil, err
		}
		var row recordRow
		err = tx.GetContext(ctx, &row,
			"UPDATE records SET data = data || $3::jsonb, updated_at = NOW() WHERE table_name = $1 AND id = $2 RETURNING id, data",
			table, rec.ID(), data)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				resp.Results = append(resp.Results, records.Result{Message: records.NotFoundMessage})
				continue
			}
			return nil, errors.Wrap(err, "updating record")
		}
		updated, err := row.record()
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, records.Result{Success: true, Data: updated})
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing transaction")
	}
	return resp, nil
}

func (s *RecordStore) Delete(ctx context.Context, table string, ids []int) (*records.MutateResponse, error) {
	keys := make([]int64, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, int64(id))
	}
	var deleted []int
	err := s.db.SelectContext(ctx, &deleted,
		"DELETE FROM records WHERE table_name = $1 AND id = ANY($2) RETURNING id", table, pq.Array(keys))
	if err != nil {
		return nil, errors.Wrap(err, "deleting records")
	}

	done := make(map[int]bool, len(deleted))
	for _, id := range deleted {
		done[id] = true
	}
	resp := &records.MutateResponse{Success: true}
	for _, id := range ids {
		if done[id] {
			resp.Results = append(resp.Results, records.Result{Success: true})
		} else {
			resp.Results = append(resp.Results, records.Result{Message: records.NotFoundMessage})
		}
	}
	return resp, nil
}
