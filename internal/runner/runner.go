// Package runner drives one collection run: index the tenancy, run every
// collector, then upload each report family in order.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yairfalse/ocitally/internal/emitter"
	"github.com/yairfalse/ocitally/internal/ledger"
	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/telemetry"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// ErrNotCollected marks a family a collector declared but did not return.
var ErrNotCollected = errors.New("family declared but not collected")

// Indexer builds the tenancy index a run sweeps.
type Indexer interface {
	BuildIndex(ctx context.Context, tenancyID string) (*tenancy.Index, error)
}

// Config wires a runner. Ledger and Telemetry may be nil.
type Config struct {
	Indexer    Indexer
	Collectors *plugin.Registry
	Emitter    emitter.Emitter
	Ledger     *ledger.Ledger
	Telemetry  *telemetry.Provider

	// Pushgateway and Job select where metrics are pushed after the run.
	Pushgateway string
	Job         string
}

// Runner executes collection runs.
type Runner struct {
	cfg Config
	now func() time.Time
}

// New creates a runner.
func New(cfg Config) *Runner {
	return &Runner{cfg: cfg, now: time.Now}
}

// Run sweeps the tenancy and uploads every family. A provider error aborts
// before anything is uploaded. Upload failures are recorded in the summary
// and the remaining families are still attempted; the returned error is then
// emitter.ErrPartialUpload.
func (r *Runner) Run(ctx context.Context, tenancyID string, regions []string, run report.Run) (*emitter.Summary, error) {
	ctx, span := r.cfg.Telemetry.StartSpan(ctx, "run",
		attribute.String("run_id", run.ID),
		attribute.String("correlation_id", run.CorrelationID),
	)
	defer span.End()

	log.Info().Ctx(ctx).
		Str("run_id", run.ID).
		Str("correlation_id", run.CorrelationID).
		Str("sink", r.cfg.Emitter.Sink()).
		Msg("run started")

	collections, declared, err := r.collect(ctx, tenancyID, regions, run)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	summary := r.emit(ctx, run, collections, declared)
	summary.FinishedAt = r.now()

	r.record(ctx, summary)
	r.push(ctx)

	ev := log.Info()
	if len(summary.Failed()) > 0 {
		ev = log.Error()
	}
	ev.Ctx(ctx).
		Str("run_id", run.ID).
		Int("families", len(summary.Outcomes)).
		Int("failed", len(summary.Failed())).
		Int("records", summary.Records()).
		Dur("duration", summary.FinishedAt.Sub(run.StartedAt)).
		Msg("run finished")

	if err := summary.Err(); err != nil {
		span.RecordError(err)
		return summary, err
	}
	return summary, nil
}

// collect runs every collector. It returns the collections by family and,
// for every family a collector declares, the name of that collector.
func (r *Runner) collect(ctx context.Context, tenancyID string, regionNames []string, run report.Run) (map[string]*report.Collection, map[string]string, error) {
	idx, err := r.cfg.Indexer.BuildIndex(ctx, tenancyID)
	if err != nil {
		return nil, nil, fmt.Errorf("build tenancy index: %w", err)
	}

	regions, err := idx.SelectRegions(regionNames)
	if err != nil {
		return nil, nil, err
	}

	scope := plugin.Scope{Run: run, Index: idx, Regions: regions}
	out := make(map[string]*report.Collection)
	declared := make(map[string]string)
	for _, c := range r.cfg.Collectors.All() {
		for _, f := range c.Families() {
			declared[f] = c.Name()
		}
		cols, err := c.Collect(ctx, scope)
		if err != nil {
			return nil, nil, err
		}
		for _, col := range cols {
			out[col.Family.Name] = col
		}
	}
	return out, declared, nil
}

// emit uploads the collected families in report order. A declared family
// that was not collected is recorded as failed; families no collector
// declares are skipped.
func (r *Runner) emit(ctx context.Context, run report.Run, collections map[string]*report.Collection, declared map[string]string) *emitter.Summary {
	summary := &emitter.Summary{
		RunID:         run.ID,
		CorrelationID: run.CorrelationID,
		Sink:          r.cfg.Emitter.Sink(),
		StartedAt:     run.StartedAt,
	}

	for _, f := range report.Families() {
		col, ok := collections[f.Name]
		if !ok {
			collector, isDeclared := declared[f.Name]
			if !isDeclared {
				log.Debug().Ctx(ctx).Str("family", f.Name).Msg("family not collected, skipping")
				continue
			}
			log.Warn().Ctx(ctx).
				Str("family", f.Name).
				Str("collector", collector).
				Msg("declared family missing from collector output")
			summary.Add(emitter.Outcome{
				Family:      f.Name,
				Destination: run.Destination(f.Name),
				Err:         fmt.Errorf("%w: collector %s", ErrNotCollected, collector),
			})
			continue
		}

		outcome := emitter.Outcome{
			Family:      f.Name,
			Records:     col.Len(),
			Destination: run.Destination(f.Name),
		}
		if err := r.cfg.Emitter.Emit(ctx, run, col); err != nil {
			outcome.Err = err
			r.cfg.Telemetry.RecordUploadFailure(ctx, f.Name, r.cfg.Emitter.Sink())
			log.Error().Ctx(ctx).Err(err).
				Str("family", f.Name).
				Str("destination", outcome.Destination).
				Msg("upload failed")
		}
		summary.Add(outcome)
	}
	return summary
}

func (r *Runner) record(ctx context.Context, summary *emitter.Summary) {
	if r.cfg.Ledger == nil {
		return
	}
	rev, err := r.cfg.Ledger.Record(*summary)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("failed to record run in ledger")
		return
	}

	entry := ledger.Entry{Revision: rev, Summary: *summary}
	if prev, ok := r.cfg.Ledger.Previous(rev); ok {
		for _, d := range ledger.Compare(prev, entry) {
			log.Info().Ctx(ctx).
				Str("family", d.Family).
				Str("change", string(d.Type)).
				Int("previous", d.Previous).
				Int("current", d.Current).
				Msg("family changed since last run")
		}
	}
	log.Debug().Ctx(ctx).Int64("revision", rev).Msg("run recorded")
}

func (r *Runner) push(ctx context.Context) {
	if err := r.cfg.Telemetry.Push(ctx, r.cfg.Pushgateway, r.cfg.Job); err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("failed to push metrics")
	}
}
