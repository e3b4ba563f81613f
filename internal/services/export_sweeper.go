package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ExportSweeperConfig holds configuration for the export sweeper
type ExportSweeperConfig struct {
	// Interval is how often every active project is re-exported (default: 5m)
	Interval time.Duration
}

// DefaultExportSweeperConfig returns sensible defaults
func DefaultExportSweeperConfig() ExportSweeperConfig {
	return ExportSweeperConfig{Interval: 5 * time.Minute}
}

// ExportSweeper periodically re-exports every non-completed project so
// that sheets converge even when change events are lost.
type ExportSweeper struct {
	exports *ExportService
	config  ExportSweeperConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportSweeper(exports *ExportService, config ExportSweeperConfig) *ExportSweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultExportSweeperConfig().Interval
	}
	return &ExportSweeper{exports: exports, config: config}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *ExportSweeper) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export sweeper is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Export sweeper started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the sweeper and waits for completion.
func (p *ExportSweeper) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Export sweeper stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export sweeper stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the sweeper is currently running
func (p *ExportSweeper) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ExportSweeper) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup
	p.sweep(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *ExportSweeper) sweep(ctx context.Context) {
	n, err := p.exports.ExportActive(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Export sweep finished with errors", "exported", n, "error", err)
		return
	}
	slog.DebugContext(ctx, "Export sweep finished", "exported", n)
}
