package host

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/spellbench/internal/spell/dist"
	"github.com/cory-johannsen/spellbench/internal/spell/eval"
)

// Stores bundles the persistence surfaces a Server needs.
type Stores struct {
	Drafts  DraftStore
	Presets PresetStore
	Pins    PinStore
	Seen    SeenStore
	Params  ParamStore
}

// Server accepts WebSocket clients and serves the analysis protocol.
type Server struct {
	logger *zap.Logger
	limits eval.Limits
	source dist.Source

	drafts  DraftStore
	presets PresetStore
	pins    PinStore
	seen    SeenStore
	params  ParamStore
	bundles BundleLibrary

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewServer wires a Server from its collaborators.
//
// Precondition: logger, all stores, and bundles must be non-nil.
// Postcondition: Returns a Server whose Handler is ready to serve.
func NewServer(limits eval.Limits, stores Stores, bundles BundleLibrary, logger *zap.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		logger: logger,
		limits: limits,
		source: dist.NewCryptoSource(),

		drafts:  stores.Drafts,
		presets: stores.Presets,
		pins:    stores.Pins,
		seen:    stores.Seen,
		params:  stores.Params,
		bundles: bundles,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Handler returns the HTTP handler serving the WebSocket endpoint at /ws
// and a liveness probe at /healthz. Listener wiring belongs to the caller.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// Shutdown closes every open session and waits for them to drain. http
// shutdown does not reach hijacked WebSocket connections, so sessions are
// closed here.
func (s *Server) Shutdown() {
	s.cancel()
	s.mu.Lock()
	for _, sess := range s.sessions {
		_ = sess.conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	sess := newSession(id, s, c)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	s.logger.Info("session opened", zap.String("session", id), zap.String("remote", r.RemoteAddr))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, id)
			s.mu.Unlock()
			_ = c.Close()
			s.logger.Info("session closed", zap.String("session", id))
		}()
		sess.run(s.ctx)
	}()
}
