// Package emitter uploads encoded report families to their destination.
package emitter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yairfalse/ocitally/internal/config"
	"github.com/yairfalse/ocitally/pkg/report"
)

// Emitter uploads one report family of a run.
type Emitter interface {
	// Emit encodes c and stores it under run.Destination(c.Family.Name).
	Emit(ctx context.Context, run report.Run, c *report.Collection) error

	// Sink names the backend for logs and metrics.
	Sink() string

	// Close cleans up resources.
	Close() error
}

// New builds the emitter for the configured sink, wrapped with the
// configured retry policy.
func New(ctx context.Context, cfg config.OutputConfig, client *http.Client) (Emitter, error) {
	var (
		e   Emitter
		err error
	)

	switch cfg.Sink {
	case config.SinkPAR, "":
		e = NewPAREmitter(client)
	case config.SinkS3:
		e, err = NewS3Emitter(ctx, cfg.S3)
	case config.SinkDir:
		e, err = NewDirEmitter(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
	if err != nil {
		return nil, err
	}

	return WithRetry(e, PolicyFromConfig(cfg.Retry)), nil
}
