package session

import (
	"context"
	"math/rand"
	"sync"

	"graph-explorer/backend/internal/graph"
	"graph-explorer/backend/internal/layout"
	"graph-explorer/backend/internal/palette"
	"graph-explorer/backend/internal/render"
	"graph-explorer/backend/internal/source"
	"graph-explorer/backend/internal/styling"
)

// fakeFetcher answers fetches from a table keyed by "<node_type>/<query>".
// When gate is set, every fetch signals entered and then waits on gate.
type fakeFetcher struct {
	mu        sync.Mutex
	fragments map[string]*graph.Fragment
	err       error
	requests  []source.Request
	entered   chan struct{}
	gate      chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{fragments: make(map[string]*graph.Fragment)}
}

func (f *fakeFetcher) on(nodeType, query string, fragment *graph.Fragment) *fakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fragments[nodeType+"/"+query] = fragment
	return f
}

func (f *fakeFetcher) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) Fetch(ctx context.Context, req source.Request) (*graph.Fragment, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	entered, gate := f.entered, f.gate
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if fragment, ok := f.fragments[req.NodeType()+"/"+req.Query]; ok {
		return fragment, nil
	}
	return &graph.Fragment{Nodes: []graph.RawNode{}, Relationships: []graph.RawRelationship{}}, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// commandLog records every command a canvas broadcasts.
type commandLog struct {
	mu   sync.Mutex
	cmds []render.Command
}

func (l *commandLog) Broadcast(cmd render.Command) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cmds = append(l.cmds, cmd)
	return nil
}

func (l *commandLog) ByAction(action string) []render.Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []render.Command
	for _, c := range l.cmds {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

type labelFetcher struct {
	fragment *graph.Fragment
	err      error
	label    string
	limit    int
}

func (l *labelFetcher) LabelView(ctx context.Context, label string, limit int) (*graph.Fragment, error) {
	l.label, l.limit = label, limit
	return l.fragment, l.err
}

func newTestStyler() *styling.Styler {
	return styling.NewStyler(
		palette.NewRegistry(),
		palette.NewSizeTable(nil, 0),
		layout.NewSynthesizer(layout.WithRandom(rand.New(rand.NewSource(7)))),
		styling.DefaultRelationshipStyle(),
	)
}

type testEnv struct {
	session *Session
	fetcher *fakeFetcher
	canvas  *render.Canvas
	log     *commandLog
}

func newTestEnv(opts ...Option) *testEnv {
	log := &commandLog{}
	canvas := render.NewCanvas(log)
	fetcher := newFakeFetcher()
	opts = append([]Option{WithSettleDelay(0)}, opts...)
	return &testEnv{
		session: NewSession(fetcher, newTestStyler(), canvas, opts...),
		fetcher: fetcher,
		canvas:  canvas,
		log:     log,
	}
}

const (
	pubID    = "Publication#___#9693"
	authorID = "Author#___#17"
	yearID   = "Year#___#1999"
)

// publicationNeighborhood is the three-node, two-relationship answer for
// expanding the publication.
func publicationNeighborhood() *graph.Fragment {
	return &graph.Fragment{
		Nodes: []graph.RawNode{
			{ID: pubID, Caption: "Graph Drawing"},
			{ID: authorID, Caption: "Ada"},
			{ID: yearID},
		},
		Relationships: []graph.RawRelationship{
			{ID: "r1", From: authorID, To: pubID, Type: "WROTE"},
			{ID: "r2", From: pubID, To: yearID},
		},
	}
}

func singlePublication() *graph.Fragment {
	return &graph.Fragment{
		Nodes:         []graph.RawNode{{ID: pubID, Caption: "Graph Drawing"}},
		Relationships: []graph.RawRelationship{},
	}
}
