package records

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core"
)

// NotFoundMessage is the result message of a mutation targeting a missing record.
const NotFoundMessage = "record not found"

// pageSize bounds each FetchMany request; fetchAll pages through the whole table.
var pageSize = 100

var errRecordNotFound = errors.New(NotFoundMessage)

// fetchAll pages through every record matching `q`. Records whose Id was seen on an earlier
// page are skipped, and a page bringing no new Id ends the scan.
func fetchAll(ctx context.Context, store Store, table string, q Query) ([]Record, error) {
	var all []Record
	seen := make(map[int]bool)
	q.Limit = pageSize
	for q.Offset = 0; ; q.Offset += pageSize {
		resp, err := store.FetchMany(ctx, table, q)
		if err != nil {
			return nil, errors.Wrapf(err, "fetching %s", table)
		}
		if !resp.Success {
			return nil, &BackendError{Op: "fetch", Table: table, Message: resp.Message}
		}

		added := 0
		for _, rec := range resp.Data {
			if id := rec.ID(); id > 0 {
				if seen[id] {
					continue
				}
				seen[id] = true
				added++
			}
			all = append(all, rec)
		}
		if added == 0 || len(resp.Data) < pageSize || (resp.Total > 0 && len(all) >= resp.Total) {
			return all, nil
		}
	}
}

func fetchOne(ctx context.Context, store Store, table string, id int) (Record, error) {
	resp, err := store.FetchOne(ctx, table, id)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s %d", table, id)
	}
	if !resp.Success {
		if resp.Message == NotFoundMessage {
			return nil, errRecordNotFound
		}
		return nil, &BackendError{Op: "fetch", Table: table, Message: resp.Message}
	}
	if resp.Data == nil {
		return nil, errRecordNotFound
	}
	return resp.Data, nil
}

// firstResult interprets a single-record mutation response. Per-record field errors become a
// core.ValidationError named after the entity fields.
func firstResult(op, table string, resp *MutateResponse, err error, names map[string]string) (Record, error) {
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", op, table)
	}
	if !resp.Success && len(resp.Results) == 0 {
		return nil, &BackendError{Op: op, Table: table, Message: resp.Message}
	}
	if len(resp.Results) == 0 {
		return nil, &BackendError{Op: op, Table: table, Message: "empty response"}
	}

	res := resp.Results[0]
	if res.Success {
		return res.Data, nil
	}
	if res.Message == NotFoundMessage {
		return nil, errRecordNotFound
	}
	if len(res.Errors) > 0 {
		fields := make([]core.FieldError, 0, len(res.Errors))
		for _, fe := range res.Errors {
			name, ok := names[fe.FieldLabel]
			if !ok {
				name = fe.FieldLabel
			}
			fields = append(fields, core.FieldError{Field: name, Error: fe.Message})
		}
		return nil, core.NewValidationError(nil, fields...)
	}
	return nil, &BackendError{Op: op, Table: table, Message: res.Message}
}

// checkAll fails unless every record of a mutation succeeded. Missing records count as done.
func checkAll(op, table string, resp *MutateResponse, err error) error {
	if err != nil {
		return errors.Wrapf(err, "%s %s", op, table)
	}
	if !resp.Success && len(resp.Results) == 0 {
		return &BackendError{Op: op, Table: table, Message: resp.Message}
	}
	for _, res := range resp.Results {
		if !res.Success && res.Message != NotFoundMessage {
			return &BackendError{Op: op, Table: table, Message: res.Message}
		}
	}
	return nil
}
