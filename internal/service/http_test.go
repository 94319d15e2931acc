package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mason.gg/internal/api"
	"mason.gg/internal/ops"
	"mason.gg/internal/persistence/builddb"
)

func newTestServer(t *testing.T, d Deps) (*testEnv, *httptest.Server) {
	t.Helper()
	env := newTestService(t, d, nil)
	mux := http.NewServeMux()
	env.svc.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return env, srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var envelope api.ErrorResponse
	decodeBody(t, resp, &envelope)
	return envelope.Error.Code
}

func TestHTTPCompile(t *testing.T) {
	_, srv := newTestServer(t, Deps{})

	resp := postJSON(t, srv.URL+"/v1/compile", `{"blueprint": `+wallBlueprint+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out api.CompileResponse
	decodeBody(t, resp, &out)
	if out.Count != 1 || out.Operations[0] != wallFill {
		t.Fatalf("compiled = %+v", out)
	}
}

func TestHTTPValidate(t *testing.T) {
	_, srv := newTestServer(t, Deps{})

	resp := postJSON(t, srv.URL+"/v1/validate", `{"commands": ["/fill 0 0 0 1 1 1 floating_sponge"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out api.ValidateResponse
	decodeBody(t, resp, &out)
	if out.Checked != 1 || len(out.Violations) != 1 || out.Violations[0].Code != ops.ViolationBlock {
		t.Fatalf("validated = %+v", out)
	}

	resp = postJSON(t, srv.URL+"/v1/validate", `{"template": "cottage"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("compile-validate status = %d", resp.StatusCode)
	}
	var compiled api.ValidateResponse
	decodeBody(t, resp, &compiled)
	if compiled.Checked == 0 || len(compiled.Violations) != 0 {
		t.Fatalf("compile-validate = %+v", compiled)
	}
}

func TestHTTPBuildAndHistory(t *testing.T) {
	fake := &fakeConsole{}
	env, srv := newTestServer(t, Deps{Exec: fake})

	resp := postJSON(t, srv.URL+"/v1/build", `{"blueprint": `+wallBlueprint+`}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var acc api.BuildAccepted
	decodeBody(t, resp, &acc)
	if acc.Status != "queued" || acc.BuildID == "" {
		t.Fatalf("accepted = %+v", acc)
	}
	env.waitStatus(t, acc.BuildID, builddb.StatusDone)

	list := getURL(t, srv.URL+"/v1/builds?limit=5")
	if list.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", list.StatusCode)
	}
	var builds api.BuildsResponse
	decodeBody(t, list, &builds)
	if len(builds.Builds) != 1 || builds.Builds[0].ID != acc.BuildID {
		t.Fatalf("builds = %+v", builds)
	}

	detail := getURL(t, srv.URL+"/v1/builds/"+acc.BuildID)
	if detail.StatusCode != http.StatusOK {
		t.Fatalf("detail status = %d", detail.StatusCode)
	}
	var out api.BuildDetail
	decodeBody(t, detail, &out)
	if out.Status != builddb.StatusDone || len(out.Operations) != 1 || out.Operations[0] != wallFill {
		t.Fatalf("detail = %+v", out)
	}
}

func TestHTTPBuildDryRun(t *testing.T) {
	_, srv := newTestServer(t, Deps{})

	resp := postJSON(t, srv.URL+"/v1/build", `{"template": "cottage", "dry_run": true}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var acc api.BuildAccepted
	decodeBody(t, resp, &acc)
	if acc.Status != "dry_run" || acc.Ops == 0 {
		t.Fatalf("accepted = %+v", acc)
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	_, srv := newTestServer(t, Deps{})

	resp := getURL(t, srv.URL+"/v1/builds/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing build status = %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != api.ErrNotFound {
		t.Fatalf("missing build code = %q", code)
	}

	resp = postJSON(t, srv.URL+"/v1/build", `{"template": "cottage"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("no console status = %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != api.ErrRconUnavailable {
		t.Fatalf("no console code = %q", code)
	}

	resp = postJSON(t, srv.URL+"/v1/compile", `{"template": "castle"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown template status = %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != api.ErrUnknownTemplate {
		t.Fatalf("unknown template code = %q", code)
	}

	resp = postJSON(t, srv.URL+"/v1/compile", `{`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad body status = %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != api.ErrBadRequest {
		t.Fatalf("bad body code = %q", code)
	}

	resp = getURL(t, srv.URL+"/v1/builds?limit=ten")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = getURL(t, srv.URL+"/v1/build")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}
