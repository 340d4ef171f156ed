package httpware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	agentwarden "github.com/agentwarden/agentwarden-go"
)

// policyServer is a minimal AgentWarden stand-in that records evaluate
// bodies and replies with one configurable verdict.
type policyServer struct {
	srv *httptest.Server

	mu        sync.Mutex
	evaluates []map[string]any
	verdict   map[string]any
}

func newPolicyServer(t *testing.T) *policyServer {
	t.Helper()
	ps := &policyServer{verdict: map[string]any{"verdict": "allow"}}
	ps.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/events/evaluate" {
			raw, _ := io.ReadAll(r.Body)
			var body map[string]any
			json.Unmarshal(raw, &body)
			ps.mu.Lock()
			ps.evaluates = append(ps.evaluates, body)
			verdict := ps.verdict
			ps.mu.Unlock()
			json.NewEncoder(w).Encode(verdict)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(ps.srv.Close)
	return ps
}

func (ps *policyServer) deny(policy string) {
	ps.mu.Lock()
	ps.verdict = map[string]any{"verdict": "deny", "policy_name": policy}
	ps.mu.Unlock()
}

func newSession(t *testing.T, ps *policyServer) *agentwarden.Session {
	t.Helper()
	client, err := agentwarden.New(agentwarden.WithBaseURL(ps.srv.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	s := client.NewSession("httpware-test")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	return s
}

func TestAllowedRequestReachesOrigin(t *testing.T) {
	ps := newPolicyServer(t)
	s := newSession(t, ps)

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("origin reply"))
	}))
	defer origin.Close()

	client := &http.Client{Transport: NewTransport(s, nil)}
	resp, err := client.Get(origin.URL + "/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "origin reply" {
		t.Errorf("body = %q", body)
	}
}

func TestDeniedRequestNeverSent(t *testing.T) {
	ps := newPolicyServer(t)
	ps.deny("no-external-calls")
	s := newSession(t, ps)

	originHit := false
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		originHit = true
	}))
	defer origin.Close()

	client := &http.Client{Transport: NewTransport(s, nil)}
	_, err := client.Get(origin.URL)
	if err == nil {
		t.Fatal("expected a denial")
	}

	var denied *agentwarden.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *DeniedError in the chain, got %v", err)
	}
	if denied.PolicyName != "no-external-calls" {
		t.Errorf("policy name = %q", denied.PolicyName)
	}
	if originHit {
		t.Error("denied request must never reach the origin")
	}
}

func TestEvaluationShape(t *testing.T) {
	ps := newPolicyServer(t)
	s := newSession(t, ps)

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer origin.Close()

	client := &http.Client{Transport: NewTransport(s, nil)}
	if _, err := client.Get(origin.URL + "/users"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if len(ps.evaluates) != 1 {
		t.Fatalf("expected 1 evaluation, got %d", len(ps.evaluates))
	}
	action, ok := ps.evaluates[0]["action"].(map[string]any)
	if !ok {
		t.Fatalf("missing action: %v", ps.evaluates[0])
	}
	if action["type"] != "api.request" {
		t.Errorf("action type = %v", action["type"])
	}
	// Name is "METHOD host" and target is the bare host, port stripped.
	target, _ := action["target"].(string)
	if target == "" {
		t.Error("target should carry the host")
	}
	name, _ := action["name"].(string)
	if name != "GET "+target {
		t.Errorf("name = %q, want GET %s", name, target)
	}
}

func TestHostOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com:8443/v1", nil)
	if got := hostOnly(req); got != "api.example.com" {
		t.Errorf("hostOnly = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "http://api.example.com/v1", nil)
	if got := hostOnly(req); got != "api.example.com" {
		t.Errorf("hostOnly without port = %q", got)
	}
}
