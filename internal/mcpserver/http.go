package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Info is the body of GET /.
type Info struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Transport string            `json:"transport"`
	Endpoints map[string]string `json:"endpoints"`
}

// Handler returns the HTTP transport:
//
//	GET  /                      server info
//	GET  /sse                   open an SSE session
//	POST /message/{sessionId}   deliver a JSON-RPC message to a session
//	POST /mcp                   streamable HTTP transport
//	GET  /healthz               liveness
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /sse", s.handleSSE)
	mux.HandleFunc("POST /message/{sessionId}", s.handleMessage)
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil))
	return mux
}

// ListenAndServe serves Handler on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening", "transport", "http", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Info{
		Name:      s.cfg.Name,
		Version:   s.cfg.Version,
		Transport: "http",
		Endpoints: map[string]string{
			"sse":        "/sse",
			"message":    "/message/{sessionId}",
			"streamable": "/mcp",
			"health":     "/healthz",
		},
	})
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	transport := &mcp.SSEServerTransport{Endpoint: "/message/" + id, Response: w}
	s.mu.Lock()
	s.sessions[id] = transport
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}()

	ss, err := s.mcp.Connect(r.Context(), transport, nil)
	if err != nil {
		s.logger.Error("sse session connect failed", "session", id, "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}
	s.logger.Info("sse session opened", "session", id, "remote", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		_ = ss.Wait()
		close(done)
	}()

	select {
	case <-r.Context().Done():
		_ = ss.Close()
	case <-done:
	}
	s.logger.Info("sse session closed", "session", id)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("sessionId")

	s.mu.Lock()
	transport, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	transport.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
