package emitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/ocitally/pkg/report"
)

// DirEmitter writes each family to a file in a local directory.
type DirEmitter struct {
	dir string
}

// NewDirEmitter creates the directory if needed.
func NewDirEmitter(dir string) (*DirEmitter, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &DirEmitter{dir: dir}, nil
}

// Sink returns "dir".
func (e *DirEmitter) Sink() string { return "dir" }

// Emit writes dir/<family>_<run id>.csv.
func (e *DirEmitter) Emit(ctx context.Context, run report.Run, c *report.Collection) error {
	path := filepath.Join(e.dir, run.FileName(c.Family.Name))
	if err := os.WriteFile(path, report.Encode(c, run.ID), 0o644); err != nil {
		return backoff.Permanent(fmt.Errorf("write %s: %w", path, err))
	}
	log.Debug().Ctx(ctx).Str("family", c.Family.Name).Str("path", path).Msg("family written")
	return nil
}

// Close is a no-op.
func (e *DirEmitter) Close() error { return nil }
