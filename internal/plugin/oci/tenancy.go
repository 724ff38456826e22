package oci

import (
	"context"

	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// TenancyCollector projects the tenancy index itself: the tenancy, every
// region subscription, every compartment and every AD.
type TenancyCollector struct {
	sweeper *Sweeper
}

// NewTenancyCollector creates the tenancy collector.
func NewTenancyCollector(s *Sweeper) *TenancyCollector {
	return &TenancyCollector{sweeper: s}
}

// Name returns the collector identifier.
func (c *TenancyCollector) Name() string { return "tenancy" }

// Families lists the families this collector fills.
func (c *TenancyCollector) Families() []string {
	return []string{
		report.FamilyTenancy,
		report.FamilyRegion,
		report.FamilyCompartment,
		report.FamilyAvailabilityDomain,
	}
}

// Collect builds the four tenancy families from the index.
func (c *TenancyCollector) Collect(ctx context.Context, scope plugin.Scope) ([]*report.Collection, error) {
	return c.sweeper.collect(ctx, c.Name(), func(context.Context) ([]*report.Collection, error) {
		return tenancyCollections(scope.Index), nil
	})
}

func tenancyCollections(idx *tenancy.Index) []*report.Collection {
	t := idx.Tenancy()

	tc := report.NewCollection(report.MustLookup(report.FamilyTenancy))
	tc.Add(report.Record{
		"tenancy_id":   t.ID,
		"tenancy_name": t.Name,
		"description":  t.Description,
		"home_region":  t.HomeRegionKey,
	})

	rc := report.NewCollection(report.MustLookup(report.FamilyRegion))
	for _, r := range idx.Regions() {
		rc.Add(report.Record{
			"tenancy_id":     t.ID,
			"region_key":     r.Key,
			"region_name":    r.Name,
			"is_home_region": report.FormatBool(r.IsHome),
		})
	}

	cc := report.NewCollection(report.MustLookup(report.FamilyCompartment))
	for _, comp := range idx.Compartments() {
		cc.Add(report.Record{
			"compartment_id": comp.ID,
			"name":           comp.Name,
			"description":    comp.Description,
			"tenancy_id":     comp.ParentID,
		})
	}

	ac := report.NewCollection(report.MustLookup(report.FamilyAvailabilityDomain))
	for _, ad := range idx.AllAvailabilityDomains() {
		ac.Add(report.Record{
			"ad_id":       ad.ID,
			"ad_name":     ad.Name,
			"tenancy_id":  ad.CompartmentID,
			"region_name": tenancy.NormalizeADName(ad.Name),
		})
	}

	return []*report.Collection{tc, rc, cc, ac}
}
