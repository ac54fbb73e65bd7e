package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/studyflow/apps/api/echo"
	"github.com/trezcool/studyflow/tests"
)

// now is the server clock in every API test: a Monday noon.
var now = time.Date(2024, 10, 14, 12, 0, 0, 0, time.UTC)

var errNotFound = httpErr{Error: "not found"}

func setup(t *testing.T) (Server, *testutil.Stack) {
	s := testutil.NewStack(t)
	app := NewServer(ServerDeps{
		Conf:          s.Conf,
		Logger:        s.Logger,
		CourseSvc:     s.CourseSvc,
		AssignmentSvc: s.AssignmentSvc,
		Validate:      s.Validate,
		Translator:    s.Translator,
		Now:           func() time.Time { return now },
	})
	return app, s
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	headers  map[string]string
	wantCode int
	wantData []byte
	anyOrder bool // lists may come in any order
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func serve(app Server, tt httpTest) *httptest.ResponseRecorder {
	req, rec := newRequest(tt.method, tt.path, tt.body)
	for k, v := range tt.headers {
		req.Header.Set(k, v)
	}
	app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

// jsonBytesEqual compares two JSON documents. With `anyOrder`, two lists match when they hold the same elements.
func jsonBytesEqual(t *testing.T, b1, b2 []byte, anyOrder bool) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	l1, isList1 := j1.([]interface{})
	l2, isList2 := j2.([]interface{})
	if !anyOrder || !isList1 || !isList2 {
		return false, nil
	}
	return assert.ElementsMatch(t, l1, l2), nil
}

func checkCode(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	checkCode(t, tt, rec)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData, tt.anyOrder)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
