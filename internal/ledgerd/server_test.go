package ledgerd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/electrowallet/electrowallet/config"
	"github.com/electrowallet/electrowallet/internal/ledger"
	"github.com/electrowallet/electrowallet/internal/storage"
)

func newTestServer(t *testing.T, cfg ...config.ServerConfig) (*Server, *httptest.Server) {
	t.Helper()
	store, err := NewDBStore(storage.NewMemory())
	if err != nil {
		t.Fatalf("NewDBStore() error: %v", err)
	}
	s := New("127.0.0.1:0", store, cfg...)
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postTx(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/tx", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func getLedger(t *testing.T, url string) []ledger.Entry {
	t.Helper()
	resp, err := http.Get(url + "/ledger")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /ledger status = %d", resp.StatusCode)
	}
	var entries []ledger.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	return entries
}

func TestLedger_EmptyIsArray(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/ledger")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty ledger body = %s, want []", got)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestTx_AppendAndDefaults(t *testing.T) {
	_, ts := newTestServer(t)

	resp, out := postTx(t, ts.URL, `{"id":"a1","from":"faucet","to":"ew1","amount":100000,"fee":0,"confirmed":true,"timestamp":1699999999.5}`)
	if resp.StatusCode != http.StatusOK || out["ok"] != true {
		t.Fatalf("POST /tx = %d %v", resp.StatusCode, out)
	}
	resp, _ = postTx(t, ts.URL, `{"id":"a2","from":"ew1","to":"ew2","amount":30000,"fee":100}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /tx status = %d", resp.StatusCode)
	}

	entries := getLedger(t, ts.URL)
	if len(entries) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(entries))
	}
	if entries[0].ID != "a1" || !entries[0].Confirmed || entries[0].Timestamp != 1699999999.5 {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Confirmed {
		t.Error("confirmed should default to false")
	}
	if entries[1].Timestamp != 1_700_000_000 {
		t.Errorf("timestamp default = %f, want server time", entries[1].Timestamp)
	}
}

func TestTx_InvalidPayload(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `nope`},
		{"missing id", `{"from":"a","to":"b","amount":1,"fee":0}`},
		{"empty from", `{"id":"x","from":"","to":"b","amount":1,"fee":0}`},
		{"missing to", `{"id":"x","from":"a","amount":1,"fee":0}`},
		{"string amount", `{"id":"x","from":"a","to":"b","amount":"1","fee":0}`},
		{"missing fee", `{"id":"x","from":"a","to":"b","amount":1}`},
		{"null amount", `{"id":"x","from":"a","to":"b","amount":null,"fee":0}`},
		{"bad timestamp", `{"id":"x","from":"a","to":"b","amount":1,"fee":0,"timestamp":"now"}`},
		{"array", `[]`},
		{"amount overflows int64", `{"id":"x","from":"a","to":"b","amount":9223372036854775808,"fee":0}`},
		{"fee overflows int64", `{"id":"x","from":"a","to":"b","amount":1,"fee":1e19}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := postTx(t, ts.URL, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if out["error"] != "invalid tx payload" {
				t.Errorf("error = %v, want \"invalid tx payload\"", out["error"])
			}
		})
	}
	if n := len(getLedger(t, ts.URL)); n != 0 {
		t.Errorf("rejected payloads were stored: %d entries", n)
	}
}

func TestTx_ConfirmedCoercion(t *testing.T) {
	_, ts := newTestServer(t)
	for i, c := range []string{`1`, `"yes"`, `0`, `""`, `null`} {
		body := fmt.Sprintf(`{"id":"c%d","from":"a","to":"b","amount":1,"fee":0,"confirmed":%s}`, i, c)
		if resp, _ := postTx(t, ts.URL, body); resp.StatusCode != http.StatusOK {
			t.Fatalf("POST %s status = %d", body, resp.StatusCode)
		}
	}
	want := []bool{true, true, false, false, false}
	for i, e := range getLedger(t, ts.URL) {
		if e.Confirmed != want[i] {
			t.Errorf("entry %d confirmed = %v, want %v", i, e.Confirmed, want[i])
		}
	}
}

func TestTx_BodyTooLarge(t *testing.T) {
	_, ts := newTestServer(t)
	big := `{"id":"` + strings.Repeat("x", maxBodySize) + `"}`
	resp, _ := postTx(t, ts.URL, big)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestReset(t *testing.T) {
	_, ts := newTestServer(t)
	postTx(t, ts.URL, `{"id":"a","from":"f","to":"t","amount":1,"fee":0}`)

	resp, err := http.Post(ts.URL+"/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /reset status = %d", resp.StatusCode)
	}
	if n := len(getLedger(t, ts.URL)); n != 0 {
		t.Errorf("ledger has %d entries after reset", n)
	}
}

func TestRouting(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/ledger", http.StatusMethodNotAllowed},
		{http.MethodGet, "/tx", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/reset", http.StatusMethodNotAllowed},
		{http.MethodGet, "/wallets", http.StatusNotFound},
		{http.MethodGet, "/", http.StatusNotFound},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, ts.URL+tt.path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
		}
	}
}

// The remote backend against the real server.
func TestRemoteBackendRoundtrip(t *testing.T) {
	_, ts := newTestServer(t)
	ctx := context.Background()
	r := ledger.NewRemote(ts.URL, time.Second, -1)

	if _, err := r.CreditFunds(ctx, "ew1", 100_000); err != nil {
		t.Fatalf("CreditFunds() error: %v", err)
	}
	if _, err := r.SendTransaction(ctx, "ew1", "ew2", 30_000, nil); err != nil {
		t.Fatalf("SendTransaction() error: %v", err)
	}
	if bal, _ := r.GetBalance(ctx, "ew1"); bal != 69_900 {
		t.Errorf("balance(ew1) = %d, want 69900", bal)
	}
	if bal, _ := r.GetBalance(ctx, "ew2"); bal != 30_000 {
		t.Errorf("balance(ew2) = %d, want 30000", bal)
	}
	if err := r.Reset(ctx); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if bal, _ := r.GetBalance(ctx, "ew1"); bal != 0 {
		t.Errorf("balance after reset = %d, want 0", bal)
	}
}

// --- IP Filtering ---

func startServer(t *testing.T, cfg config.ServerConfig) string {
	t.Helper()
	store, _ := NewDBStore(storage.NewMemory())
	s := New("127.0.0.1:0", store, cfg)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return "http://" + s.Addr()
}

func TestIPFilter(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		want    int
	}{
		{"loopback allowed", []string{"127.0.0.1"}, http.StatusOK},
		{"cidr blocks", []string{"10.0.0.0/8"}, http.StatusForbidden},
		{"empty allows all", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := startServer(t, config.ServerConfig{AllowedIPs: tt.allowed})
			resp, err := http.Get(url + "/ledger")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

// --- CORS ---

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"wildcard", []string{"*"}, "http://example.com", "*"},
		{"specific match", []string{"http://myapp.com"}, "http://myapp.com", "http://myapp.com"},
		{"specific mismatch", []string{"http://myapp.com"}, "http://evil.com", ""},
		{"disabled", nil, "http://example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t, config.ServerConfig{CORSOrigins: tt.origins})
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/ledger", nil)
			req.Header.Set("Origin", tt.origin)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			resp.Body.Close()
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("CORS origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	_, ts := newTestServer(t, config.ServerConfig{CORSOrigins: []string{"*"}})
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/tx", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight should have Allow-Methods header")
	}
}
