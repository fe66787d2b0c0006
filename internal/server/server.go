// Package server exposes one hot-seat engine over HTTP and WebSocket so a
// browser can render and drive it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/hailam/rankwar/internal/engine"
)

const maxJSONBodyBytes int64 = 1 << 16

// Server wires the HTTP layer to the engine.
type Server struct {
	engineMu sync.Mutex
	engine   *engine.Engine

	hub      *Hub
	log      *zap.SugaredLogger
	origins  []string
	upgrader websocket.Upgrader

	srvMu sync.Mutex
	srv   *http.Server
}

// New builds a Server around eng. Every engine transition is broadcast to
// connected WebSocket clients, so all engine calls must go through the
// Server once it exists.
func New(eng *engine.Engine, log *zap.SugaredLogger, allowedOrigins []string) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		engine:  eng,
		hub:     NewHub(log),
		log:     log,
		origins: allowedOrigins,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	eng.Subscribe(s.broadcastEvent)
	return s
}

// Hub returns the WebSocket hub. It must be running for broadcasts to be
// delivered.
func (s *Server) Hub() *Hub { return s.hub }

// Listen runs the hub and serves HTTP on addr until Close is called.
func (s *Server) Listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	s.log.Infow("http listening", "addr", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Handler returns the routed handler wrapped with CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.withJSON(s.handleState)).Methods(http.MethodGet)
	api.HandleFunc("/click", s.withJSON(s.handleClick)).Methods(http.MethodPost)
	api.HandleFunc("/mode", s.withJSON(s.handleMode)).Methods(http.MethodPost)
	api.HandleFunc("/end-turn", s.withJSON(s.handleEndTurn)).Methods(http.MethodPost)
	api.HandleFunc("/reset", s.withJSON(s.handleReset)).Methods(http.MethodPost)
	api.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	s.log.Warnw("websocket origin rejected", "origin", origin)
	return false
}

// apply runs fn under the engine lock and returns the resulting snapshot.
func (s *Server) apply(fn func(*engine.Engine) error) (engine.Snapshot, error) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	err := fn(s.engine)
	return s.engine.Snapshot(), err
}

// ---- JSON helpers ----

type stateResponse struct {
	State engine.Snapshot `json:"state"`
	Error string          `json:"error,omitempty"`
}

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func badBody(w http.ResponseWriter, err error) {
	if isBodyTooLarge(err) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid JSON body")
}

// reply writes the snapshot, with the player-facing message and 422 when the
// action was rejected.
func (s *Server) reply(w http.ResponseWriter, snap engine.Snapshot, err error) {
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, stateResponse{State: snap, Error: engine.Describe(err)})
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: snap})
}

// ---- API ----

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.apply(func(*engine.Engine) error { return nil })
	writeJSON(w, http.StatusOK, stateResponse{State: snap})
}

type clickRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeBody(r, &req); err != nil {
		badBody(w, err)
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}
	snap, err := s.apply(func(e *engine.Engine) error { return e.OnCellClicked(*req.X, *req.Y) })
	s.reply(w, snap, err)
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeBody(r, &req); err != nil {
		badBody(w, err)
		return
	}
	m, err := engine.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.apply(func(e *engine.Engine) error { return e.OnModeSelected(m) })
	s.reply(w, snap, err)
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.apply(func(e *engine.Engine) error {
		e.OnEndTurn()
		return nil
	})
	s.reply(w, snap, nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.apply(func(e *engine.Engine) error {
		e.Reset()
		return nil
	})
	s.log.Infow("game reset over http", "remote", r.RemoteAddr)
	s.reply(w, snap, nil)
}
