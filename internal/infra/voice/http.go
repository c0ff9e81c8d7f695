package voice

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"homematic-voice/internal/domain"
)

const maxCommandBytes = 64 * 1024

type CommandHandler interface {
	Handle(ctx context.Context, cmd domain.VoiceCommand) (domain.Outcome, error)
}

// HTTPSource accepts parsed voice commands from the host platform and answers
// each with the rendered outcome.
type HTTPSource struct {
	addr             string
	handler          CommandHandler
	launchAppMessage string
	authToken        string
	logger           *slog.Logger

	mu          sync.Mutex
	server      *http.Server
	running     bool
	mux         *http.ServeMux
	rateLimiter *RateLimiter
}

type Options struct {
	Addr             string
	AuthToken        string
	LaunchAppMessage string

	// TrustProxyHeaders keys rate limiting on X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool
}

func NewHTTPSource(opts Options, handler CommandHandler, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:             opts.Addr,
		handler:          handler,
		launchAppMessage: opts.LaunchAppMessage,
		authToken:        opts.AuthToken,
		logger:           logger,
		mux:              http.NewServeMux(),
		rateLimiter:      NewRateLimiter(30, time.Minute, opts.TrustProxyHeaders),
	}
	h.mux.HandleFunc("POST /command", h.rateLimiter.Middleware(h.handleCommand))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *HTTPSource) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("voice command server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.running = false
	return nil
}

func (h *HTTPSource) Handler() http.Handler {
	return h.mux
}

type commandRequest struct {
	Name  string              `json:"name"`
	Slots map[string][]string `json:"slots"`
}

func (h *HTTPSource) handleCommand(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.logger.Warn("unauthorized command request", "remote_addr", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	defer r.Body.Close()

	var req commandRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCommandBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid command body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "missing command name", http.StatusBadRequest)
		return
	}

	outcome, err := h.handler.Handle(r.Context(), domain.VoiceCommand{
		Name:  req.Name,
		Slots: req.Slots,
	})
	if err != nil {
		// The caller went away; there is nobody left to answer.
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(outcome.Render(h.launchAppMessage)); err != nil {
		h.logger.Error("writing response", "error", err)
	}
}

func (h *HTTPSource) authorized(r *http.Request) bool {
	if h.authToken == "" {
		return true
	}

	token := r.Header.Get("X-Auth-Token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(h.authToken)) == 1
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t}`, status, running)
}
