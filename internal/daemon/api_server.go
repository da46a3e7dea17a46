package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"mindscribe/internal/api"
	"mindscribe/internal/ingest"
	"mindscribe/internal/logging"
	"mindscribe/internal/records"
	"mindscribe/internal/services"
)

const (
	maxUploadBytes    = 512 << 20
	maxJSONBodyBytes  = 1 << 20
	uploadMemoryBytes = 32 << 20
)

type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	practice *api.PracticeService
	handler  http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind, token string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:     strings.TrimSpace(bind),
		logger:   logging.NewComponentLogger(logger, "api-server"),
		daemon:   d,
		practice: d.practice,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/clients", srv.handleListClients)
	protected.HandleFunc("POST /api/clients", srv.handleCreateClient)
	protected.HandleFunc("GET /api/clients/{id}", srv.handleGetClient)
	protected.HandleFunc("DELETE /api/clients/{id}", srv.handleDeleteClient)
	protected.HandleFunc("GET /api/clients/{id}/sessions", srv.handleClientSessions)
	protected.HandleFunc("POST /api/clients/{id}/recordings", srv.handleUploadRecording)
	protected.HandleFunc("GET /api/sessions", srv.handleListSessions)
	protected.HandleFunc("GET /api/sessions/{id}", srv.handleGetSession)
	protected.HandleFunc("PATCH /api/sessions/{id}", srv.handleUpdateSession)
	protected.HandleFunc("DELETE /api/sessions/{id}", srv.handleDeleteSession)
	protected.HandleFunc("GET /api/sessions/{id}/notes/intake", srv.handleIntakeNote)
	protected.HandleFunc("GET /api/sessions/{id}/notes/summary", srv.handleSummary)
	protected.HandleFunc("PUT /api/sessions/{id}/private-note", srv.handlePrivateNote)
	mux.Handle("/api/", authMiddleware(token, protected))

	srv.handler = requestContext(srv.logger, recoverPanics(srv.logger, mux))
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.server = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:              status.Running,
		PID:                  status.PID,
		LockFilePath:         status.LockFilePath,
		StoreBackend:         status.StoreBackend,
		TranscriptionOffline: status.TranscriptionOffline,
		LLMProvider:          status.LLMProvider,
		Clients:              status.Clients,
		Sessions:             status.Sessions,
		CachedViews:          status.CachedViews,
	})
}

func (s *apiServer) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.practice.Clients(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ClientListResponse{Clients: clients})
}

func (s *apiServer) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var draft records.ClientDraft
	if !s.decodeJSON(w, r, &draft) {
		return
	}
	client, err := s.practice.CreateClient(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, client)
}

func (s *apiServer) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, err := s.practice.Client(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, client)
}

func (s *apiServer) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.practice.DeleteClient(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleClientSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.practice.Sessions(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: sessions})
}

func (s *apiServer) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.practice.Sessions(r.Context(), strings.TrimSpace(r.URL.Query().Get("client")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: sessions})
}

func (s *apiServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.practice.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *apiServer) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var patch records.SessionPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	session, err := s.practice.UpdateSession(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *apiServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.practice.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleUploadRecording(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(uploadMemoryBytes); err != nil {
		s.writeError(w, r, records.NewValidationError("file", "multipart upload could not be read"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, records.NewValidationError("file", "is required"))
		return
	}
	defer file.Close()

	media, err := records.ReadMediaFile(header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.practice.IngestRecording(r.Context(), r.PathValue("id"), media)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *apiServer) handleIntakeNote(w http.ResponseWriter, r *http.Request) {
	resp, err := s.practice.IntakeNote(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.practice.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handlePrivateNote(w http.ResponseWriter, r *http.Request) {
	var req api.PrivateNoteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	session, err := s.practice.SavePrivateNote(r.Context(), r.PathValue("id"), req.PrivateNote)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, session)
}

func (s *apiServer) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, r, records.NewValidationError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.Error(err),
			logging.Int("status", status),
			logging.String(logging.FieldEventType, "request_failed"),
		)
	} else {
		logger.Debug("request rejected", logging.Error(err), logging.Int("status", status))
	}
	s.writeJSON(w, status, api.NewErrorResponse(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ingest.ErrInvalidTransition), errors.Is(err, ingest.ErrFlowClosed):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return services.StatusCode(err)
	}
}
