package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func newTestServer(t *testing.T) (*httptest.Server, uuid.UUID) {
	t.Helper()
	srv := httptest.NewServer(New(nil).Handler())
	t.Cleanup(srv.Close)

	resp := doPost(t, srv, "/session", nil)
	var sr newSessionResponse
	decodeBody(t, resp, &sr)
	return srv, sr.Session
}

func doPost(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	resp, err := http.Post(srv.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode body %s: %v", data, err)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	resp := doPost(t, srv, "/ping", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
}

func TestExecThenItemsGetAll(t *testing.T) {
	srv, session := newTestServer(t)

	resp := doPost(t, srv, "/exec", execRequest{
		sessionRequest: sessionRequest{Session: session},
		Script:         "x = 1\ny = 2\nz = x + y",
	})
	var execResp execResponse
	decodeBody(t, resp, &execResp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("exec failed: %#v", execResp)
	}

	resp = doPost(t, srv, "/items/get_all", sessionRequest{Session: session})
	var getAllResp itemsGetAllResponse
	decodeBody(t, resp, &getAllResp)
	if getAllResp.Items["z"].AsInt() != 3 {
		t.Fatalf("got %#v", getAllResp.Items)
	}
}

func TestSetPropagates(t *testing.T) {
	srv, session := newTestServer(t)

	doPost(t, srv, "/exec", execRequest{
		sessionRequest: sessionRequest{Session: session},
		Script:         "x = 1\ny = x + 1",
	}).Body.Close()

	resp := doPost(t, srv, "/set", setRequest{
		sessionRequest: sessionRequest{Session: session},
		Name:           "x",
		Expr:           "10",
	})
	resp.Body.Close()

	resp = doPost(t, srv, "/items/get", itemsGetRequest{
		sessionRequest: sessionRequest{Session: session},
		Name:           "y",
	})
	var getResp itemsGetResponse
	decodeBody(t, resp, &getResp)
	if getResp.Value.AsInt() != 11 {
		t.Fatalf("got %s, want 11", getResp.Value)
	}
}

func TestUnknownSessionReturnsError(t *testing.T) {
	srv := httptest.NewServer(New(nil).Handler())
	defer srv.Close()

	resp := doPost(t, srv, "/clear", sessionRequest{Session: uuid.New()})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var errResp errResponse
	decodeBody(t, resp, &errResp)
	if errResp.Msg == "" {
		t.Fatalf("expected a non-empty error message")
	}
}

func TestSVGAndJSONDump(t *testing.T) {
	srv, session := newTestServer(t)

	doPost(t, srv, "/exec", execRequest{
		sessionRequest: sessionRequest{Session: session},
		Script:         "a = pt 0.0 0.0\nb = pt 1.0 1.0\nl = line a b",
	}).Body.Close()

	resp := doPost(t, srv, "/svg/dump", sessionRequest{Session: session})
	var svgResp svgDumpResponse
	decodeBody(t, resp, &svgResp)
	if svgResp.SVG == "" {
		t.Fatalf("expected a non-empty svg document")
	}

	resp = doPost(t, srv, "/json/dump", sessionRequest{Session: session})
	var dumpResp jsonDumpResponse
	decodeBody(t, resp, &dumpResp)
	if dumpResp.JSON == "" {
		t.Fatalf("expected a non-empty json dump")
	}

	resp = doPost(t, srv, "/json/load", jsonLoadRequest{
		sessionRequest: sessionRequest{Session: session},
		JSON:           dumpResp.JSON,
	})
	resp.Body.Close()

	resp = doPost(t, srv, "/items/get", itemsGetRequest{
		sessionRequest: sessionRequest{Session: session},
		Name:           "a",
	})
	var getResp itemsGetResponse
	decodeBody(t, resp, &getResp)
	if getResp.Value.AsPt().X != 0 {
		t.Fatalf("got %#v", getResp.Value)
	}
}
