// Package ledgerd implements the shared ledger HTTP service used by the
// remote ledger backend.
package ledgerd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/electrowallet/electrowallet/config"
	"github.com/electrowallet/electrowallet/internal/log"
	"github.com/rs/zerolog"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// Server serves GET /ledger, POST /tx and POST /reset.
type Server struct {
	addr        string
	store       Store
	now         func() time.Time
	server      *http.Server
	logger      zerolog.Logger
	ln          net.Listener
	allowedNets []*net.IPNet // Empty = allow all.
	corsOrigins []string     // Empty = no CORS headers.
}

// New creates a ledger server. A zero-value ServerConfig allows all IPs
// and disables CORS.
func New(addr string, store Store, srvCfg ...config.ServerConfig) *Server {
	s := &Server{
		addr:   addr,
		store:  store,
		now:    time.Now,
		logger: log.Server,
	}

	if len(srvCfg) > 0 {
		s.allowedNets = parseAllowedIPs(srvCfg[0].AllowedIPs)
		s.corsOrigins = srvCfg[0].CORSOrigins
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler with IP filtering and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ledger", s.route(http.MethodGet, s.handleLedger))
	mux.HandleFunc("/tx", s.route(http.MethodPost, s.handleTx))
	mux.HandleFunc("/reset", s.route(http.MethodPost, s.handleReset))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return s.filter(mux)
}

// parseAllowedIPs converts string IP/CIDR entries into net.IPNet.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err == nil {
			nets = append(nets, ipNet)
			continue
		}
		// Try as a single IP (add /32 or /128).
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("ledgerd listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Ledger server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Ledger server listening")
	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// filter applies the IP allow-list and CORS headers.
func (s *Server) filter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.allowedNets) > 0 {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			ip := net.ParseIP(host)
			if ip == nil || !s.isIPAllowed(ip) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
		}

		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions && len(s.corsOrigins) > 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// route rejects methods other than method with 405.
func (s *Server) route(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	}
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.All()
	if err != nil {
		s.logger.Error().Err(err).Msg("Read ledger failed")
		writeError(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleTx(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxBodySize {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	entry, err := parseEntry(body, s.now())
	if err != nil {
		s.logger.Debug().Err(err).Msg("Rejected tx")
		writeError(w, http.StatusBadRequest, "invalid tx payload")
		return
	}
	if err := s.store.Append(entry); err != nil {
		s.logger.Error().Err(err).Msg("Append tx failed")
		writeError(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}

	s.logger.Info().Str("id", entry.ID).Str("from", entry.From).Str("to", entry.To).
		Int64("amount", entry.Amount).Bool("confirmed", entry.Confirmed).Msg("Tx recorded")
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(); err != nil {
		s.logger.Error().Err(err).Msg("Reset failed")
		writeError(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}
	s.logger.Info().Msg("Ledger reset")
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// isIPAllowed checks if the IP is in the allowed networks list.
func (s *Server) isIPAllowed(ip net.IP) bool {
	for _, n := range s.allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// setCORSHeaders adds CORS headers based on the configured origins.
func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsOrigins) == 0 {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	allowed := false
	for _, o := range s.corsOrigins {
		if o == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			allowed = true
			break
		}
		if o == origin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			allowed = true
			break
		}
	}

	if allowed {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	}
}
