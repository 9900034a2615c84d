package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/spellbench/internal/spell/analyzer"
)

// conn abstracts the WebSocket connection for tests.
type conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// session serves one connected client.
//
// The read loop handles storage and bundle requests inline; analyze and roll
// requests are handed to a single worker goroutine through a one-slot
// mailbox, so a newer request replaces an older one that has not started yet
// (last request wins) and the engine never runs on the read path.
type session struct {
	id     string
	srv    *Server
	conn   conn
	logger *zap.Logger

	writeMu sync.Mutex
	mailbox chan Request
	done    chan struct{}
}

func newSession(id string, srv *Server, c conn) *session {
	return &session{
		id:      id,
		srv:     srv,
		conn:    c,
		logger:  srv.logger.With(zap.String("session", id)),
		mailbox: make(chan Request, 1),
		done:    make(chan struct{}),
	}
}

// run drives the session until the client disconnects.
func (s *session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.work(ctx)
	}()

	s.readLoop(ctx)
	close(s.done)
	cancel()
	wg.Wait()
}

func (s *session) readLoop(ctx context.Context) {
	for {
		var req Request
		if err := s.conn.ReadJSON(&req); err != nil {
			if !errors.Is(err, context.Canceled) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read loop ended", zap.Error(err))
			}
			return
		}
		s.dispatch(ctx, req)
	}
}

// dispatch handles one request. The request set is closed; unknown types get
// an error response rather than silent drops.
func (s *session) dispatch(ctx context.Context, req Request) {
	switch req.Type {
	case ReqAnalyze, ReqRoll:
		s.submit(req)

	case ReqListBundles:
		s.sendBundles(ctx)
	case ReqLoadBundle:
		s.loadBundle(ctx, req.Name)

	case ReqSaveDraft:
		s.do(req, func() error { return s.srv.drafts.Save(ctx, req.Name, req.Source) })
	case ReqListDrafts:
		s.listDrafts(ctx)
	case ReqLoadDraft:
		s.loadDraft(ctx, req.Name)
	case ReqDeleteDraft:
		s.do(req, func() error { return s.srv.drafts.Delete(ctx, req.Name) })

	case ReqSavePreset:
		s.do(req, func() error { return s.srv.presets.Save(ctx, req.Name, req.Params) })
	case ReqListPresets:
		s.listPresets(ctx)
	case ReqLoadPreset:
		s.loadPreset(ctx, req.Name)

	case ReqPin:
		s.do(req, func() error { return s.srv.pins.Pin(ctx, req.Spell) })
	case ReqUnpin:
		s.do(req, func() error { return s.srv.pins.Unpin(ctx, req.Spell) })
	case ReqListPins:
		s.listPins(ctx)

	default:
		s.sendError(fmt.Sprintf("unknown request type %q", req.Type))
	}
}

// submit places req in the mailbox, displacing any request that has not been
// picked up yet.
func (s *session) submit(req Request) {
	for {
		select {
		case s.mailbox <- req:
			return
		default:
		}
		select {
		case stale := <-s.mailbox:
			s.logger.Debug("superseded stale request",
				zap.String("type", stale.Type),
				zap.Int64("seq", stale.Seq),
			)
		default:
		}
	}
}

// work is the analysis worker: one request at a time, engine calls run to
// completion, results delivered in submission order of the surviving
// requests.
func (s *session) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case <-s.done:
			s.drain()
			return
		case req := <-s.mailbox:
			s.serve(req)
		}
	}
}

// drain serves a request left in the mailbox when the session winds down, so
// a reply submitted just before disconnect is not silently dropped.
func (s *session) drain() {
	select {
	case req := <-s.mailbox:
		s.serve(req)
	default:
	}
}

func (s *session) serve(req Request) {
	switch req.Type {
	case ReqAnalyze:
		s.analyze(req)
	case ReqRoll:
		s.roll(req)
	}
}

// effectiveParams resolves the assignment an engine pass runs under. A
// request without one falls back to the last-used assignment; a request
// carrying one becomes the new last-used assignment. Both analyze and roll
// resolve through here so a roll samples the same distribution the client's
// current analysis shows.
func (s *session) effectiveParams(ctx context.Context, req Request) map[string]int {
	if req.Params == nil {
		last, err := s.srv.params.LoadLast(ctx)
		if err != nil {
			s.logger.Warn("loading last-used params", zap.Error(err))
			return nil
		}
		return last
	}
	if len(req.Params) > 0 {
		if err := s.srv.params.SaveLast(ctx, req.Params); err != nil {
			s.logger.Warn("saving last-used params", zap.Error(err))
		}
	}
	return req.Params
}

// analyze runs one engine pass under the request's effective assignment.
func (s *session) analyze(req Request) {
	params := s.effectiveParams(context.Background(), req)
	res := analyzer.AnalyzeWithLimits(req.Source, params, s.srv.limits)
	s.send(Response{Type: RespAnalysis, Seq: req.Seq, Analysis: toPayload(res)})
}

// roll re-analyzes and samples one concrete result from the named spell's
// exact distribution.
func (s *session) roll(req Request) {
	params := s.effectiveParams(context.Background(), req)
	res := analyzer.AnalyzeWithLimits(req.Source, params, s.srv.limits)
	sa, ok := res.Find(req.Spell)
	if !ok {
		s.sendError(fmt.Sprintf("cannot roll %q: no analysis for it", req.Spell))
		return
	}
	s.send(Response{
		Type:  RespRolled,
		Seq:   req.Seq,
		Spell: sa.Name,
		Total: sa.Dist.Sample(s.srv.source),
	})
}

func (s *session) sendBundles(ctx context.Context) {
	seen, err := s.srv.seen.List(ctx)
	if err != nil {
		s.sendError(fmt.Sprintf("listing seen bundles: %v", err))
		return
	}
	s.send(Response{Type: RespBundles, Names: s.srv.bundles.Names(), Seen: seen})
}

func (s *session) loadBundle(ctx context.Context, name string) {
	src, ok := s.srv.bundles.Source(name)
	if !ok {
		s.sendError(fmt.Sprintf("no bundle named %q", name))
		return
	}
	if err := s.srv.seen.MarkSeen(ctx, name); err != nil {
		s.logger.Warn("marking bundle seen", zap.String("bundle", name), zap.Error(err))
	}
	s.send(Response{Type: RespBundle, Name: name, Source: src})
}

func (s *session) listDrafts(ctx context.Context) {
	drafts, err := s.srv.drafts.List(ctx)
	if err != nil {
		s.sendError(fmt.Sprintf("listing drafts: %v", err))
		return
	}
	names := make([]string, len(drafts))
	for i, d := range drafts {
		names[i] = d.Name
	}
	s.send(Response{Type: RespDrafts, Names: names})
}

func (s *session) loadDraft(ctx context.Context, name string) {
	d, err := s.srv.drafts.Get(ctx, name)
	if err != nil {
		s.sendError(fmt.Sprintf("loading draft %q: %v", name, err))
		return
	}
	s.send(Response{Type: RespDraft, Name: d.Name, Source: d.Source})
}

func (s *session) listPresets(ctx context.Context) {
	presets, err := s.srv.presets.List(ctx)
	if err != nil {
		s.sendError(fmt.Sprintf("listing presets: %v", err))
		return
	}
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	s.send(Response{Type: RespPresets, Names: names})
}

func (s *session) loadPreset(ctx context.Context, name string) {
	p, err := s.srv.presets.Get(ctx, name)
	if err != nil {
		s.sendError(fmt.Sprintf("loading preset %q: %v", name, err))
		return
	}
	s.send(Response{Type: RespPreset, Name: p.Name, Params: p.Params})
}

func (s *session) listPins(ctx context.Context) {
	pins, err := s.srv.pins.List(ctx)
	if err != nil {
		s.sendError(fmt.Sprintf("listing pins: %v", err))
		return
	}
	s.send(Response{Type: RespPins, Names: pins})
}

// do runs a storage mutation and acknowledges it by echoing the refreshed
// listing for the affected collection.
func (s *session) do(req Request, fn func() error) {
	if err := fn(); err != nil {
		s.sendError(fmt.Sprintf("%s: %v", req.Type, err))
		return
	}
	ctx := context.Background()
	switch req.Type {
	case ReqSaveDraft, ReqDeleteDraft:
		s.listDrafts(ctx)
	case ReqSavePreset:
		s.listPresets(ctx)
	case ReqPin, ReqUnpin:
		s.listPins(ctx)
	}
}

func (s *session) send(resp Response) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(resp); err != nil {
		s.logger.Debug("write failed", zap.String("type", resp.Type), zap.Error(err))
	}
}

func (s *session) sendError(msg string) {
	s.send(Response{Type: RespError, Error: msg})
}
