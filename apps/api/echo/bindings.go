package echoapi

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/studyflow/core"
)

const (
	orderingParam     = "ordering"
	idempotencyHeader = "Idempotency-Key"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// First returns the primary ordering, if any.
func (ord *Ordering) First() (core.DBOrdering, bool) {
	if len(ord.Orderings) == 0 {
		return core.DBOrdering{}, false
	}
	return ord.Orderings[0], true
}

type DestroyMultipleRequest struct {
	IDs []int `query:"id"`
}

// idempotencyKey returns the request's Idempotency-Key, or a fresh one.
// Keyless clients retrying a create may therefore duplicate it.
func idempotencyKey(ctx echo.Context) string {
	if key := strings.TrimSpace(ctx.Request().Header.Get(idempotencyHeader)); key != "" {
		return key
	}
	return uuid.NewString()
}
