package main

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"graph-explorer/backend/internal/constants"
	"graph-explorer/backend/internal/layout"
	"graph-explorer/backend/internal/metrics"
	"graph-explorer/backend/internal/palette"
	"graph-explorer/backend/internal/render"
	"graph-explorer/backend/internal/session"
	"graph-explorer/backend/internal/source"
	"graph-explorer/backend/internal/styling"
	"graph-explorer/backend/pkg/config"
)

// app holds the wired components of the server.
type app struct {
	cfg        *config.Config
	metrics    *metrics.Collector
	registry   *palette.Registry
	hub        *render.Hub
	canvas     *render.Canvas
	session    *session.Session
	controller *session.Controller
	closers    []func() error
}

// newApp wires every component from cfg.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	theme, err := config.LoadTheme(cfg.ThemeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}

	a := &app{
		cfg:     cfg,
		metrics: metrics.NewCollector(constants.MetricsNamespace),
	}

	fetcher, labels, sourceName, err := a.buildSource(ctx, log)
	if err != nil {
		return nil, err
	}

	colorOpts := []palette.Option{
		palette.WithPalette(theme.Palette),
		palette.WithSeeds(theme.TypeColors),
	}
	if theme.FallbackStart != nil {
		colorOpts = append(colorOpts, palette.WithFallbackStart(*theme.FallbackStart))
	}
	a.registry = palette.NewRegistry(colorOpts...)

	synthesizer := layout.NewSynthesizer(
		layout.WithMaxAttempts(cfg.PlacementMaxAttempts),
		layout.WithFallbackHook(func(mode layout.Mode) {
			a.metrics.RecordPlacementFallback()
		}),
	)

	var strategy styling.Strategy
	switch cfg.StyleStrategy {
	case config.StrategyPassthrough:
		strategy = styling.NewPassthrough(synthesizer)
	default:
		strategy = styling.NewStyler(
			a.registry,
			palette.NewSizeTable(theme.Sizes, theme.DefaultSize),
			synthesizer,
			styling.RelationshipStyle{
				Width:          theme.Relationship.Width,
				Color:          theme.Relationship.Color,
				DefaultCaption: theme.Relationship.Caption,
			},
		)
	}

	// The hub replays the canvas to new clients, and the canvas broadcasts
	// through the hub; the greeter closes over a, so order does not matter.
	a.hub = render.NewHub(
		render.WithClientObserver(a.metrics),
		render.WithGreeter(func() []render.Command { return a.canvas.Replay() }),
	)
	a.canvas = render.NewCanvas(a.hub)

	opts := []session.Option{
		session.WithSettleDelay(cfg.SettleDelay),
		session.WithRecorder(a.metrics),
		session.WithSourceName(sourceName),
	}
	if labels != nil {
		opts = append(opts, session.WithLabelViewer(labels, cfg.LabelViewLimit))
	}
	a.session = session.NewSession(fetcher, strategy, a.canvas, opts...)
	a.controller = session.NewController(a.session, a.canvas)
	a.hub.SetHandler(a.controller)

	log.Info("Components initialized",
		zap.String("source", sourceName),
		zap.String("style_strategy", cfg.StyleStrategy),
	)
	return a, nil
}

// buildSource selects the graph backend named by GRAPH_SOURCE.
func (a *app) buildSource(ctx context.Context, log *zap.Logger) (source.Fetcher, session.LabelViewer, string, error) {
	cfg := a.cfg
	switch cfg.GraphSource {
	case config.SourceNeo4j:
		driver, err := neo4j.NewDriverWithContext(
			cfg.Neo4jURI,
			neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
		)
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to create Neo4j driver: %w", err)
		}
		src := source.NewNeo4jSource(driver, cfg.Neo4jURI, cfg.FetchTimeout)
		if err := src.VerifyConnectivity(ctx); err != nil {
			_ = src.Close()
			return nil, nil, "", fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
		}
		a.closers = append(a.closers, src.Close)
		log.Info("Connected to Neo4j", zap.String("uri", cfg.Neo4jURI))
		return src, src, config.SourceNeo4j, nil

	default:
		client := source.NewAPIClient(cfg.APIURL, cfg.APIKey, cfg.APIToken, cfg.FetchTimeout)
		settings := source.DefaultBreakerSettings("graph-api")
		settings.FailureThreshold = cfg.BreakerFailureThreshold
		if cfg.BreakerMinRequests > 0 {
			settings.MinRequests = uint32(cfg.BreakerMinRequests)
		}
		if cfg.BreakerOpenTimeout > 0 {
			settings.OpenTimeout = cfg.BreakerOpenTimeout
		}
		log.Info("Using graph API", zap.String("url", cfg.APIURL))
		return source.NewBreakerFetcher(client, settings), nil, config.SourceAPI, nil
	}
}

// close releases the hub and the graph backend.
func (a *app) close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.controller != nil {
		a.controller.Wait()
	}
	for _, c := range a.closers {
		_ = c()
	}
}
