package oci

import (
	"context"
	"fmt"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// BuildIndex resolves the tenancy identity, its region subscriptions, the
// accessible compartment subtree and the ADs of every subscribed region.
// Any identity error aborts.
func (s *Sweeper) BuildIndex(ctx context.Context, tenancyID string) (*tenancy.Index, error) {
	ctx, span := s.telemetry.StartSpan(ctx, "session")
	defer span.End()

	idx, err := s.buildIndex(ctx, tenancyID)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}

	log.Info().Ctx(ctx).
		Str("tenancy", idx.Tenancy().Name).
		Int("regions", len(idx.Regions())).
		Int("compartments", len(idx.Compartments())).
		Int("active_compartments", len(idx.ActiveCompartments())).
		Int("ads", len(idx.AllAvailabilityDomains())).
		Msg("tenancy indexed")
	return idx, nil
}

func (s *Sweeper) buildIndex(ctx context.Context, tenancyID string) (*tenancy.Index, error) {
	client, err := s.clients.Identity("")
	if err != nil {
		return nil, err
	}

	if err := s.call(ctx, "identity", "GetTenancy", ""); err != nil {
		return nil, err
	}
	tr, err := client.GetTenancy(ctx, identity.GetTenancyRequest{TenancyId: common.String(tenancyID)})
	if err != nil {
		return nil, fmt.Errorf("get tenancy %s: %w", tenancyID, err)
	}
	t := tenancy.Tenancy{
		ID:            tenancyID,
		Name:          deref(tr.Name),
		Description:   report.Str(tr.Description),
		HomeRegionKey: deref(tr.HomeRegionKey),
	}

	if err := s.call(ctx, "identity", "ListRegionSubscriptions", ""); err != nil {
		return nil, err
	}
	rr, err := client.ListRegionSubscriptions(ctx, identity.ListRegionSubscriptionsRequest{TenancyId: common.String(tenancyID)})
	if err != nil {
		return nil, fmt.Errorf("list region subscriptions: %w", err)
	}
	regions := make([]tenancy.Region, 0, len(rr.Items))
	for _, r := range rr.Items {
		regions = append(regions, tenancy.Region{
			Key:    deref(r.RegionKey),
			Name:   deref(r.RegionName),
			IsHome: r.IsHomeRegion != nil && *r.IsHomeRegion,
		})
	}

	idx := tenancy.NewIndex(t, regions)

	err = s.paginate(ctx, "identity", "ListCompartments", "", func(page *string) (*string, error) {
		resp, err := client.ListCompartments(ctx, identity.ListCompartmentsRequest{
			CompartmentId:          common.String(tenancyID),
			CompartmentIdInSubtree: common.Bool(true),
			AccessLevel:            identity.ListCompartmentsAccessLevelAccessible,
			Page:                   page,
		})
		if err != nil {
			return nil, fmt.Errorf("list compartments: %w", err)
		}
		for _, c := range resp.Items {
			idx.AddCompartments(tenancy.Compartment{
				ID:          deref(c.Id),
				Name:        deref(c.Name),
				Description: report.Str(c.Description),
				ParentID:    deref(c.CompartmentId),
				State:       string(c.LifecycleState),
			})
		}
		return resp.OpcNextPage, nil
	})
	if err != nil {
		return nil, err
	}

	for _, region := range regions {
		rc, err := s.clients.Identity(region.Name)
		if err != nil {
			return nil, err
		}
		if err := s.call(ctx, "identity", "ListAvailabilityDomains", region.Name); err != nil {
			return nil, err
		}
		resp, err := rc.ListAvailabilityDomains(ctx, identity.ListAvailabilityDomainsRequest{
			CompartmentId: common.String(tenancyID),
		})
		if err != nil {
			return nil, apiError("list availability domains", region.Name, "", err)
		}
		for _, ad := range resp.Items {
			idx.AddAvailabilityDomains(tenancy.AvailabilityDomain{
				ID:            deref(ad.Id),
				Name:          deref(ad.Name),
				CompartmentID: deref(ad.CompartmentId),
			})
		}
	}

	return idx, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
