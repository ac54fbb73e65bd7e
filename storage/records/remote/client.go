// Package remote is a records.Store backed by the hosted record-storage service over HTTPS/JSON.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/storage/records"
)

const idempotencyHeader = "Idempotency-Key"

var sendFunc = rest.SendWithContext // mockable

type (
	Client struct {
		baseURL string
		apiKey  string
		timeout time.Duration
		logger  core.Logger
	}

	orderBy struct {
		FieldName string `json:"fieldName"`
		SortType  string `json:"sorttype"`
	}

	paging struct {
		Limit  int `json:"limit,omitempty"`
		Offset int `json:"offset,omitempty"`
	}

	fetchRequest struct {
		Fields  []string            `json:"fields,omitempty"`
		Where   []records.Condition `json:"where,omitempty"`
		OrderBy []orderBy           `json:"orderBy,omitempty"`
		Paging  *paging             `json:"pagingInfo,omitempty"`
	}

	mutateRequest struct {
		Records []records.Record `json:"records"`
	}

	deleteRequest struct {
		RecordIDs []int `json:"RecordIds"`
	}
)

var _ records.Store = (*Client)(nil) // interface compliance check

func NewClient(conf core.RemoteConfig, logger core.Logger) *Client {
	return &Client{
		baseURL: conf.BaseURL,
		apiKey:  conf.APIKey,
		timeout: conf.Timeout,
		logger:  logger,
	}
}

func (c *Client) endpoint(table string, parts ...string) string {
	u := c.baseURL + "/tables/" + url.PathEscape(table) + "/records"
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *Client) request(method rest.Method, endpoint string, body interface{}) (rest.Request, error) {
	req := rest.Request{
		Method:  method,
		BaseURL: endpoint,
		Headers: map[string]string{
			"Accept":        "application/json",
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + c.apiKey,
		},
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return rest.Request{}, errors.Wrap(err, "encoding request body")
		}
		req.Body = b
	}
	return req, nil
}

// do sends `req` and decodes the JSON response into `out`.
// Transport failures & non-2xx responses are reported as *records.BackendError.
func (c *Client) do(ctx context.Context, op, table string, req rest.Request, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := sendFunc(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &records.BackendError{Op: op, Table: table, Message: err.Error()}
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn(fmt.Sprintf("record backend - status: %d - Body: %s", res.StatusCode, res.Body))
		return &records.BackendError{Op: op, Table: table, Message: fmt.Sprintf("unexpected status %d", res.StatusCode)}
	}

	if err = json.Unmarshal([]byte(res.Body), out); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	return nil
}

func (c *Client) FetchMany(ctx context.Context, table string, q records.Query) (*records.ManyResponse, error) {
	body := fetchRequest{Fields: q.Fields, Where: q.Where}
	for _, ord := range q.OrderBy {
		sortType := "DESC"
		if ord.Ascending {
			sortType = "ASC"
		}
		body.OrderBy = append(body.OrderBy, orderBy{FieldName: ord.Field, SortType: sortType})
	}
	if q.Limit > 0 || q.Offset > 0 {
		body.Paging = &paging{Limit: q.Limit, Offset: q.Offset}
	}

	req, err := c.request(rest.Post, c.endpoint(table, "query"), body)
	if err != nil {
		return nil, err
	}
	resp := new(records.ManyResponse)
	if err = c.do(ctx, "fetch", table, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) FetchOne(ctx context.Context, table string, id int) (*records.OneResponse, error) {
	req, err := c.request(rest.Get, c.endpoint(table, strconv.Itoa(id)), nil)
	if err != nil {
		return nil, err
	}
	resp := new(records.OneResponse)
	if err = c.do(ctx, "fetch", table, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Create(ctx context.Context, table string, recs []records.Record, idempotencyKey string) (*records.MutateResponse, error) {
	req, err := c.request(rest.Post, c.endpoint(table), mutateRequest{Records: recs})
	if err != nil {
		return nil, err
	}
	if idempotencyKey != "" {
		req.Headers[idempotencyHeader] = idempotencyKey
	}
	resp := new(records.MutateResponse)
	if err = c.do(ctx, "create", table, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Update(ctx context.Context, table string, recs []records.Record) (*records.MutateResponse, error) {
	req, err := c.request(rest.Put, c.endpoint(table), mutateRequest{Records: recs})
	if err != nil {
		return nil, err
	}
	resp := new(records.MutateResponse)
	if err = c.do(ctx, "update", table, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Delete(ctx context.Context, table string, ids []int) (*records.MutateResponse, error) {
	req, err := c.request(rest.Delete, c.endpoint(table), deleteRequest{RecordIDs: ids})
	if err != nil {
		return nil, err
	}
	resp := new(records.MutateResponse)
	if err = c.do(ctx, "delete", table, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
