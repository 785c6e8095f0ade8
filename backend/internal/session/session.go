package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"graph-explorer/backend/internal/graph"
	"graph-explorer/backend/internal/metrics"
	"graph-explorer/backend/internal/source"
	"graph-explorer/backend/internal/state"
	"graph-explorer/backend/internal/styling"
	apperrors "graph-explorer/backend/pkg/errors"
	"graph-explorer/backend/pkg/logger"
)

// Outcome describes what an expansion request did.
type Outcome string

const (
	OutcomeExpanded        Outcome = metrics.OutcomeExpanded
	OutcomeInvalidTrigger  Outcome = metrics.OutcomeInvalidTrigger
	OutcomeAlreadyExpanded Outcome = metrics.OutcomeAlreadyExpanded
	OutcomeBusy            Outcome = metrics.OutcomeBusy
	OutcomeFailed          Outcome = metrics.OutcomeFailed
)

const defaultSettleDelay = 50 * time.Millisecond

// ErrLabelViewUnsupported is returned by LabelView when the graph source
// cannot list nodes by label.
var ErrLabelViewUnsupported = errors.New("label view is not supported by this graph source")

// Renderer is the rendering surface the session drives.
type Renderer interface {
	Render(nodes []graph.Node, relationships []graph.Relationship)
	NodePositions() []graph.Position
	SetNodePositions(positions []graph.Position, animate bool)
	SetZoom(zoom float64)
	SetPan(x, y float64)
	ResetZoom()
	FitNodes(ids []string)
	ShowError(message string)
}

// LabelViewer lists the neighborhood of every node carrying a label.
type LabelViewer interface {
	LabelView(ctx context.Context, label string, limit int) (*graph.Fragment, error)
}

// Recorder receives session metrics.
type Recorder interface {
	RecordExpansion(outcome string)
	RecordFetch(source, result string, duration time.Duration)
	SetGraphSize(nodes, relationships int)
}

type nopRecorder struct{}

func (nopRecorder) RecordExpansion(string)                     {}
func (nopRecorder) RecordFetch(string, string, time.Duration) {}
func (nopRecorder) SetGraphSize(int, int)                      {}

// Option configures a Session.
type Option func(*Session)

// WithSettleDelay sets how long new positions wait before reaching the
// renderer.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.settleDelay = d
		}
	}
}

// WithRecorder reports metrics to r.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithSourceName labels fetch metrics.
func WithSourceName(name string) Option {
	return func(s *Session) {
		s.sourceName = name
	}
}

// WithLabelViewer enables LabelView, returning at most limit relationships.
func WithLabelViewer(lv LabelViewer, limit int) Option {
	return func(s *Session) {
		s.labels = lv
		s.labelLimit = limit
	}
}

// Session owns the running graph of one exploration and merges fetched
// fragments into it. At most one fetch-and-merge runs at a time; requests
// arriving meanwhile are rejected, not queued.
type Session struct {
	fetcher    source.Fetcher
	strategy   styling.Strategy
	renderer   Renderer
	labels     LabelViewer
	labelLimit int

	sourceName  string
	settleDelay time.Duration
	recorder    Recorder
	logger      *zap.Logger

	mu      sync.RWMutex
	graph   *state.Graph
	busy    atomic.Bool
	pending sync.WaitGroup
}

// NewSession creates a session with an empty running graph.
func NewSession(fetcher source.Fetcher, strategy styling.Strategy, renderer Renderer, opts ...Option) *Session {
	s := &Session{
		fetcher:     fetcher,
		strategy:    strategy,
		renderer:    renderer,
		sourceName:  "graph",
		settleDelay: defaultSettleDelay,
		recorder:    nopRecorder{},
		logger:      logger.With("session"),
		graph:       state.NewGraph(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Expand fetches the neighborhood of trigger and merges it into the running
// graph. Unparseable, already expanded and concurrent triggers are no-ops
// reported through the Outcome with a nil error. A failed fetch leaves the
// running graph untouched.
func (s *Session) Expand(ctx context.Context, trigger string) (Outcome, error) {
	if !graph.IsExpandable(trigger) {
		s.logger.Debug("Ignoring expansion", zap.Error(apperrors.NewInvalidTrigger(trigger)))
		return s.outcome(OutcomeInvalidTrigger), nil
	}
	if s.IsExpanded(trigger) {
		return s.outcome(OutcomeAlreadyExpanded), nil
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Debug("Ignoring expansion",
			zap.String("node_id", trigger),
			zap.Error(apperrors.ErrConcurrencyRejected),
		)
		return s.outcome(OutcomeBusy), nil
	}
	defer s.busy.Store(false)

	// A concurrent expansion of the same trigger may have finished between
	// the check above and claiming the flag.
	if s.IsExpanded(trigger) {
		return s.outcome(OutcomeAlreadyExpanded), nil
	}

	nodeType, localID := graph.ParseNodeID(trigger)
	fragment, err := s.fetch(ctx, source.NeighborhoodRequest(nodeType, localID))
	if err != nil {
		s.logger.Error("Expansion failed",
			zap.String("node_id", trigger),
			zap.Error(err),
		)
		s.outcome(OutcomeFailed)
		return OutcomeFailed, fmt.Errorf("failed to expand %s: %w", trigger, err)
	}

	styled := s.strategy.Style(*fragment, s.anchorFor(trigger))
	result := s.apply(styled, trigger)

	s.logger.Info("Expanded node",
		zap.String("node_id", trigger),
		zap.Int("new_nodes", len(result.Nodes)),
		zap.Int("new_relationships", len(result.Relationships)),
		zap.Int("dangling_relationships", result.Dangling),
	)
	return s.outcome(OutcomeExpanded), nil
}

// Load performs an initial fetch and merges it with organic placement. An
// empty nodeType sends query without a node_type parameter.
func (s *Session) Load(ctx context.Context, query, nodeType string) error {
	if !s.busy.CompareAndSwap(false, true) {
		return apperrors.ErrConcurrencyRejected
	}
	defer s.busy.Store(false)

	req := source.Request{Query: query, Parameters: map[string]any{}}
	if nodeType != "" {
		req = source.NeighborhoodRequest(nodeType, query)
	}

	fragment, err := s.fetch(ctx, req)
	if err != nil {
		s.logger.Error("Initial load failed",
			zap.String("query", query),
			zap.String("node_type", nodeType),
			zap.Error(err),
		)
		return fmt.Errorf("failed to load graph: %w", err)
	}

	result := s.apply(s.strategy.Style(*fragment, nil), "")

	s.logger.Info("Loaded graph",
		zap.String("query", query),
		zap.String("node_type", nodeType),
		zap.Int("new_nodes", len(result.Nodes)),
		zap.Int("new_relationships", len(result.Relationships)),
	)
	return nil
}

// LabelView styles every relationship around nodes carrying label with
// organic placement. The result is not merged into the running graph.
func (s *Session) LabelView(ctx context.Context, label string) (graph.StyledFragment, error) {
	if s.labels == nil {
		return graph.StyledFragment{}, ErrLabelViewUnsupported
	}

	start := time.Now()
	fragment, err := s.labels.LabelView(ctx, label, s.labelLimit)
	if err == nil && fragment == nil {
		err = apperrors.NewMalformedResponse("empty result", nil)
	}
	s.recorder.RecordFetch(s.sourceName, fetchResult(err), time.Since(start))
	if err != nil {
		return graph.StyledFragment{}, fmt.Errorf("failed to load label %s: %w", label, err)
	}
	return s.strategy.Style(*fragment, nil), nil
}

// IsExpanded reports whether id was already used as an expansion trigger.
func (s *Session) IsExpanded(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.IsExpanded(id)
}

// Busy reports whether a fetch-and-merge is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Snapshot copies the running graph.
func (s *Session) Snapshot() state.Snapshot {
	s.mu.RLock()
	snapshot := s.graph.Snapshot()
	s.mu.RUnlock()

	snapshot.Busy = s.Busy()
	return snapshot
}

// Settle blocks until every scheduled position hand-off has reached the
// renderer.
func (s *Session) Settle() {
	s.pending.Wait()
}

func (s *Session) fetch(ctx context.Context, req source.Request) (*graph.Fragment, error) {
	start := time.Now()
	fragment, err := s.fetcher.Fetch(ctx, req)
	if err == nil && fragment == nil {
		err = apperrors.NewMalformedResponse("empty result", nil)
	}
	s.recorder.RecordFetch(s.sourceName, fetchResult(err), time.Since(start))
	return fragment, err
}

// anchorFor places an expansion around the trigger's live position. A
// trigger the renderer has not placed yet falls back to organic placement.
func (s *Session) anchorFor(trigger string) *styling.Anchor {
	positions := s.renderer.NodePositions()
	center, ok := graph.FindPosition(positions, trigger)
	if !ok {
		s.logger.Debug("Trigger has no position, placing organically", zap.String("node_id", trigger))
		return nil
	}
	return &styling.Anchor{Center: center, Existing: positions}
}

// apply merges a styled fragment, re-renders, and schedules the new
// positions once the renderer has settled.
func (s *Session) apply(styled graph.StyledFragment, trigger string) state.MergeResult {
	s.mu.Lock()
	result := s.graph.Merge(styled, trigger)
	nodes, relationships := s.graph.Nodes(), s.graph.Relationships()
	s.mu.Unlock()

	s.recorder.SetGraphSize(len(nodes), len(relationships))
	s.renderer.Render(nodes, relationships)
	s.schedulePositions(result.Positions)
	return result
}

func (s *Session) schedulePositions(positions []graph.Position) {
	if len(positions) == 0 {
		return
	}
	s.pending.Add(1)
	time.AfterFunc(s.settleDelay, func() {
		defer s.pending.Done()
		s.renderer.SetNodePositions(positions, true)
	})
}

func (s *Session) outcome(o Outcome) Outcome {
	s.recorder.RecordExpansion(string(o))
	return o
}

func fetchResult(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := apperrors.TypeOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
