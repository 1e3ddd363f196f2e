package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/kv"
	"github.com/starford/quire/internal/metrics"
)

// Result reports the outcome of a save-like operation. Failures never
// surface as Go errors from the gateway.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Err converts a failed result back into an error.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}

// LoadResult reports the outcome of a load. Data is nil on success when
// nothing was stored.
type LoadResult struct {
	Success bool      `json:"success"`
	Data    *Snapshot `json:"data"`
	Error   string    `json:"error,omitempty"`
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// WithMetrics records every operation on c.
func WithMetrics(c *metrics.Collector) GatewayOption {
	return func(g *Gateway) { g.metrics = c }
}

// Gateway selects a backend and turns every failure, including panics, into
// a logged Result.
type Gateway struct {
	backend Backend
	bridge  HostBridge
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewGateway uses the file backend when bridge is non-nil and the key-value
// store otherwise.
func NewGateway(bridge HostBridge, store kv.Store, opts ...GatewayOption) (*Gateway, error) {
	g := &Gateway{bridge: bridge, logger: slog.Default()}
	for _, o := range opts {
		o(g)
	}
	switch {
	case bridge != nil:
		g.backend = NewFileBackend(bridge, g.logger)
	case store != nil:
		g.backend = NewKVBackend(store, g.logger)
	default:
		return nil, fmt.Errorf("persistence: no bridge or kv store: %w", apperr.ErrInvalidInput)
	}
	g.logger.Info("persistence backend selected", slog.String("backend", g.backend.Name()))
	return g, nil
}

// Backend returns the active backend name.
func (g *Gateway) Backend() string { return g.backend.Name() }

// HasBridge reports whether export and import are available.
func (g *Gateway) HasBridge() bool { return g.bridge != nil }

// Save stamps and stores s.
func (g *Gateway) Save(ctx context.Context, s *Snapshot) Result {
	err := g.guard(ctx, "save", func(ctx context.Context) error {
		s.Version = CurrentVersion
		s.LastSaved = time.Now().UTC()
		return g.backend.Save(ctx, s)
	})
	return result(err)
}

// Load reads the stored snapshot.
func (g *Gateway) Load(ctx context.Context) LoadResult {
	var snap *Snapshot
	err := g.guard(ctx, "load", func(ctx context.Context) error {
		var err error
		snap, err = g.backend.Load(ctx)
		return err
	})
	if err != nil {
		return LoadResult{Error: err.Error()}
	}
	return LoadResult{Success: true, Data: snap}
}

// Export writes s, stamped with exportedAt, to path through the bridge.
func (g *Gateway) Export(ctx context.Context, path string, s *Snapshot) Result {
	if g.bridge == nil {
		return result(apperr.ErrBridgeUnavailable)
	}
	err := g.guard(ctx, "export", func(ctx context.Context) error {
		now := time.Now().UTC()
		s.Version = CurrentVersion
		s.LastSaved = now
		s.ExportedAt = &now
		data, err := Encode(s, true)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		return g.bridge.ExportNotes(ctx, path, data)
	})
	return result(err)
}

// Import reads and decodes the snapshot at path through the bridge.
func (g *Gateway) Import(ctx context.Context, path string) LoadResult {
	if g.bridge == nil {
		return LoadResult{Error: apperr.ErrBridgeUnavailable.Error()}
	}
	var snap *Snapshot
	err := g.guard(ctx, "import", func(ctx context.Context) error {
		data, err := g.bridge.ImportNotes(ctx, path)
		if err != nil {
			return err
		}
		snap, err = Decode(data)
		return err
	})
	if err != nil {
		return LoadResult{Error: err.Error()}
	}
	return LoadResult{Success: true, Data: snap}
}

func (g *Gateway) guard(ctx context.Context, op string, fn func(context.Context) error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", op, r)
		}
		g.metrics.ObservePersist(g.backend.Name(), op, start, err)
		if err != nil {
			g.logger.Error("persistence failed",
				slog.String("backend", g.backend.Name()),
				slog.String("op", op),
				slog.String("error", err.Error()),
			)
		}
	}()
	return fn(ctx)
}

func result(err error) Result {
	if err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}
