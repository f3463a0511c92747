// Package gateway is the HTTP bridge into the chat core: status and
// history polling, message injection for web users, and the admin removal
// endpoint. Web users are treated as virtual participants for display and
// statistics purposes only.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"chatline/auth"
	"chatline/contract"
	"chatline/domain"
	chaterrors "chatline/errors"
	"chatline/services"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shirou/gopsutil/process"
)

// Server exposes the REST bridge. It implements contract.Worker.
type Server struct {
	log        *slog.Logger
	addr       string
	secretHash string
	svc        services.IChatService
	moderator  contract.IModerator
	wsHandler  http.Handler
	validate   *validator.Validate

	mu          sync.Mutex
	webSessions map[string]*VirtualSession // lowercase name -> session
}

func NewServer(log *slog.Logger, addr, secretHash string, svc services.IChatService,
	moderator contract.IModerator, wsHandler http.Handler) *Server {
	return &Server{
		log:         log,
		addr:        addr,
		secretHash:  secretHash,
		svc:         svc,
		moderator:   moderator,
		wsHandler:   wsHandler,
		validate:    validator.New(),
		webSessions: make(map[string]*VirtualSession),
	}
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Gateway listening", "address", s.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errChan:
		return fmt.Errorf("gateway server: %w", err)
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/webchat/messages", s.handleGetMessages)
	mux.HandleFunc("POST /api/webchat/messages", s.handlePostMessage)
	mux.HandleFunc("POST /api/webchat/login", s.handleLogin)
	mux.HandleFunc("POST /api/webchat/logout", s.handleLogout)
	mux.HandleFunc("GET /api/webchat/webusers", s.handleWebUsers)
	mux.HandleFunc("POST /api/admin/remove", s.handleRemove)
	if s.wsHandler != nil {
		mux.Handle("GET /ws", s.wsHandler)
	}
	return mux
}

type statusResponse struct {
	TotalClients int     `json:"totalClients"`
	ClientNames  string  `json:"clientNames"`
	GameStatus   string  `json:"gameStatus"`
	RAMBytes     uint64  `json:"ramBytes"`
	CPUPercent   float64 `json:"cpuPercent"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		TotalClients: s.svc.SessionCount(),
		ClientNames:  strings.Join(s.svc.SessionNames(), ","),
		GameStatus:   s.svc.GameStatus(),
	}
	if rss, cpu, err := selfStats(); err == nil {
		resp.RAMBytes = rss
		resp.CPUPercent = cpu
	}
	writeJSON(w, http.StatusOK, resp)
}

// selfStats reports the chat process's own memory and CPU usage.
func selfStats() (uint64, float64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0, err
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}

func (s *Server) handleGetMessages(w http.ResponseWriter, _ *http.Request) {
	texts := lo.Map(s.svc.History(), func(e domain.HistoryEntry, _ int) string {
		return e.Text
	})
	writeJSON(w, http.StatusOK, texts)
}

type postMessageRequest struct {
	User    string `json:"user" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req postMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.svc.Inject(req.User, req.Message)
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}

	ok, err := auth.VerifySecret(req.Password, s.secretHash)
	if err != nil || !ok {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}

	sess := NewVirtualSession(strings.TrimSpace(req.Username))
	if err := s.svc.Join(sess); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	s.mu.Lock()
	s.webSessions[strings.ToLower(sess.Name())] = sess
	s.mu.Unlock()

	s.log.Info("Web user logged in", "name", sess.Name())
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

type logoutRequest struct {
	Username string `json:"username" validate:"required"`
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	sess, ok := s.webSessions[strings.ToLower(req.Username)]
	delete(s.webSessions, strings.ToLower(req.Username))
	s.mu.Unlock()

	if ok {
		_ = sess.Close()
		s.svc.Leave(sess.ID())
		s.log.Info("Web user logged out", "name", sess.Name())
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": ok})
}

func (s *Server) handleWebUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	names := make([]string, 0, len(s.webSessions))
	for key, sess := range s.webSessions {
		if !sess.Alive() {
			// Removed by moderation since login.
			delete(s.webSessions, key)
			continue
		}
		names = append(names, sess.Name())
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, names)
}

type removeRequest struct {
	Username string `json:"username" validate:"required"`
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.moderator.Remove(r.Context(), req.Username)
	switch {
	case errors.Is(err, chaterrors.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
	}
}

// decode unmarshals and validates a JSON body, replying 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
