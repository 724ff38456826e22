// Package oci implements the Oracle Cloud Infrastructure collectors for ocitally.
package oci

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/ocitally/internal/pacer"
	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/telemetry"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// Sweeper owns the shared machinery of every collector: the client factory,
// the call pacer and telemetry.
type Sweeper struct {
	clients   Clients
	pacer     *pacer.Pacer
	telemetry *telemetry.Provider
}

// NewSweeper creates a sweeper. pacer and tp may be nil.
func NewSweeper(clients Clients, p *pacer.Pacer, tp *telemetry.Provider) *Sweeper {
	return &Sweeper{clients: clients, pacer: p, telemetry: tp}
}

// call waits for the pacer and counts one provider call.
func (s *Sweeper) call(ctx context.Context, service, operation, region string) error {
	if err := s.pacer.Wait(ctx); err != nil {
		return err
	}
	s.telemetry.RecordAPICall(ctx, service, operation, region)
	return nil
}

// paginate calls fetch until the provider stops returning a next-page token.
func (s *Sweeper) paginate(ctx context.Context, service, operation, region string, fetch func(page *string) (next *string, err error)) error {
	var page *string
	for {
		if err := s.call(ctx, service, operation, region); err != nil {
			return err
		}
		next, err := fetch(page)
		if err != nil {
			return err
		}
		if next == nil || *next == "" {
			return nil
		}
		page = next
	}
}

// apiError wraps a provider failure with where it happened.
func apiError(operation, region, compartmentID string, err error) error {
	if compartmentID == "" {
		return fmt.Errorf("%s (region %s): %w", operation, region, err)
	}
	return fmt.Errorf("%s (region %s, compartment %s): %w", operation, region, compartmentID, err)
}

// collect runs one collector body inside a span, records its duration and
// per-family totals.
func (s *Sweeper) collect(ctx context.Context, name string, fn func(ctx context.Context) ([]*report.Collection, error)) ([]*report.Collection, error) {
	ctx, span := s.telemetry.StartSpan(ctx, "collector."+name, attribute.String("collector", name))
	defer span.End()

	start := time.Now()
	log.Debug().Ctx(ctx).Str("collector", name).Msg("collector started")

	cols, err := fn(ctx)
	elapsed := time.Since(start)
	s.telemetry.RecordCollectorDuration(ctx, name, elapsed)
	if err != nil {
		failSpan(span, err)
		return nil, fmt.Errorf("collector %s: %w", name, err)
	}

	for _, c := range cols {
		s.telemetry.RecordRecords(ctx, c.Family.Name, c.Len())
		log.Info().Ctx(ctx).
			Str("collector", name).
			Str("family", c.Family.Name).
			Int("records", c.Len()).
			Msg("family collected")
	}
	log.Debug().Ctx(ctx).Str("collector", name).Dur("duration", elapsed).Msg("collector finished")
	return cols, nil
}

// eachRegion runs fn for every region in scope inside a region span.
func (s *Sweeper) eachRegion(ctx context.Context, scope plugin.Scope, collector string, fn func(ctx context.Context, region tenancy.Region) error) error {
	for _, region := range scope.Regions {
		rctx, span := s.telemetry.StartSpan(ctx, "region",
			attribute.String("collector", collector),
			attribute.String("region", region.Name),
		)
		log.Debug().Ctx(rctx).
			Str("collector", collector).
			Str("region", region.Name).
			Int("compartments", len(scope.Index.ActiveCompartments())).
			Int("ads", len(scope.Index.AvailabilityDomains(region.Name))).
			Msg("sweeping region")

		err := fn(rctx, region)
		if err != nil {
			failSpan(span, err)
		}
		span.End()
		if err != nil {
			return err
		}
	}
	return nil
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
