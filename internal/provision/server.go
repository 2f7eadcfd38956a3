// Package provision is the device setup surface: a small local HTTP portal
// for entering the API credential, a status endpoint, and a live strip
// preview over websocket. It replaces a captive-portal flow; the daemon
// serves it at all times and re-enters forced setup on a double reset.
package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
	"github.com/witnessmenow/bridge-traffic-display/internal/monitor"
	"github.com/witnessmenow/bridge-traffic-display/internal/repositories"
)

const recentHistoryLimit = 12

// StatusSource exposes the monitor's published snapshot.
type StatusSource interface {
	Status() monitor.Status
}

// Server hosts the provisioning portal.
type Server struct {
	logger  *slog.Logger
	store   *models.DeviceConfigStore
	status  StatusSource
	history repositories.SampleRepository
	hub     *Hub

	// onSave runs after a credential has been persisted, letting the daemon
	// resume polling immediately.
	onSave func()
}

func NewServer(logger *slog.Logger, store *models.DeviceConfigStore, status StatusSource, history repositories.SampleRepository, hub *Hub, onSave func()) *Server {
	return &Server{
		logger:  logger,
		store:   store,
		status:  status,
		history: history,
		hub:     hub,
		onSave:  onSave,
	}
}

func (s *Server) Routes() http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/", s.setupPageHandler)
	router.HandlerFunc(http.MethodPost, "/api/config", s.saveConfigHandler)
	router.HandlerFunc(http.MethodGet, "/api/status", s.statusHandler)
	if s.hub != nil {
		router.HandlerFunc(http.MethodGet, "/ws", s.hub.serveWS)
	}

	return router
}

// ListenAndServe runs the portal until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("provisioning portal listening", "addr", srv.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) setupPageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	provisioned := s.store.APIKey() != ""
	fmt.Fprintf(w, setupPage, checkedAttr(provisioned))
}

func checkedAttr(provisioned bool) string {
	if provisioned {
		return "A credential is saved. Submitting replaces it."
	}
	return "No credential saved yet."
}

type configRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) saveConfigHandler(w http.ResponseWriter, r *http.Request) {
	var req configRequest

	switch {
	case strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.badRequestResponse(w, "invalid request body")
			return
		}
	default:
		if err := r.ParseForm(); err != nil {
			s.badRequestResponse(w, "invalid form body")
			return
		}
		req.APIKey = r.PostFormValue("api_key")
	}

	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.APIKey == "" {
		s.badRequestResponse(w, "api_key must not be empty")
		return
	}

	if err := s.store.Save(models.DeviceConfig{APIKey: req.APIKey}); err != nil {
		s.serverErrorResponse(w, err)
		return
	}

	s.logger.Info("api credential provisioned")
	if s.onSave != nil {
		s.onSave()
	}
	s.sendOK(w, nil)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"provisioned": s.store.APIKey() != "",
	}
	if s.status != nil {
		data["monitor"] = s.status.Status()
	}
	if s.history != nil {
		records, err := s.history.Recent(r.Context(), recentHistoryLimit)
		if err != nil {
			s.logger.Warn("recent history lookup failed", "error", err)
		} else {
			data["recent"] = records
		}
	}

	s.sendOK(w, data)
}

const setupPage = `<!DOCTYPE html>
<html>
<head><title>Bridge Traffic Display</title></head>
<body>
<h1>Bridge Traffic Display setup</h1>
<p>%s</p>
<form method="POST" action="/api/config">
  <label for="api_key">Routing API key</label>
  <input type="text" id="api_key" name="api_key" size="48">
  <button type="submit">Save</button>
</form>
<p><a href="/api/status">Status</a></p>
</body>
</html>
`
