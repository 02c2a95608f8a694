package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// counterReader yields distinct deterministic bytes on every read.
type counterReader struct {
	mu sync.Mutex
	n  uint64
}

func (c *counterReader) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf bytes.Buffer
	for buf.Len() < len(p) {
		c.n++
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], c.n)
		h := sha256.Sum256(b[:])
		buf.Write(h[:])
	}
	return io.ReadFull(&buf, p)
}

// fixedClock returns the same instant on every call.
func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// fakeLedgerServer is a minimal in-test ledger service.
type fakeLedgerServer struct {
	mu      sync.Mutex
	entries []Entry
	status  int    // forced status for every request when non-zero
	body    string // forced GET /ledger body when non-empty
	posts   int
}

func (f *fakeLedgerServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/ledger":
		if f.body != "" {
			w.Write([]byte(f.body))
			return
		}
		json.NewEncoder(w).Encode(f.entries)
	case r.Method == http.MethodPost && r.URL.Path == "/tx":
		var e Entry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.posts++
		f.entries = append(f.entries, e)
		w.Write([]byte(`{"ok":true}`))
	case r.Method == http.MethodPost && r.URL.Path == "/reset":
		f.entries = nil
		w.Write([]byte(`{"ok":true}`))
	default:
		http.NotFound(w, r)
	}
}

func newFakeLedger() (*fakeLedgerServer, *httptest.Server) {
	f := &fakeLedgerServer{}
	return f, httptest.NewServer(f)
}
