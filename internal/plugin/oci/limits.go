package oci

import (
	"context"
	"strconv"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/limits"

	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// LimitCollector reports every nonzero service limit per region with its
// current usage.
type LimitCollector struct {
	sweeper *Sweeper
}

// NewLimitCollector creates the limit collector.
func NewLimitCollector(s *Sweeper) *LimitCollector {
	return &LimitCollector{sweeper: s}
}

// Name returns the collector identifier.
func (c *LimitCollector) Name() string { return "limit" }

// Families lists the families this collector fills.
func (c *LimitCollector) Families() []string {
	return []string{report.FamilyLimit}
}

// Collect walks region → service → limit value. Limits whose value is zero
// are skipped; for the rest resource availability is requested, scoped to the
// limit's AD when the limit is AD-scoped.
func (c *LimitCollector) Collect(ctx context.Context, scope plugin.Scope) ([]*report.Collection, error) {
	return c.sweeper.collect(ctx, c.Name(), func(ctx context.Context) ([]*report.Collection, error) {
		col := report.NewCollection(report.MustLookup(report.FamilyLimit))
		tenancyID := scope.Index.Tenancy().ID

		err := c.sweeper.eachRegion(ctx, scope, c.Name(), func(ctx context.Context, region tenancy.Region) error {
			client, err := c.sweeper.clients.Limits(region.Name)
			if err != nil {
				return err
			}

			services, err := c.listServices(ctx, client, region.Name, tenancyID)
			if err != nil {
				return err
			}

			for _, svc := range services {
				values, err := c.listLimitValues(ctx, client, region.Name, tenancyID, svc)
				if err != nil {
					return err
				}
				for _, lv := range values {
					if lv.Value != nil && *lv.Value == 0 {
						continue
					}
					rec, err := c.limitRecord(ctx, client, region.Name, tenancyID, svc, lv)
					if err != nil {
						return err
					}
					col.Add(rec)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return []*report.Collection{col}, nil
	})
}

func (c *LimitCollector) listServices(ctx context.Context, client LimitsAPI, region, tenancyID string) ([]limits.ServiceSummary, error) {
	var out []limits.ServiceSummary
	err := c.sweeper.paginate(ctx, "limits", "ListServices", region, func(page *string) (*string, error) {
		resp, err := client.ListServices(ctx, limits.ListServicesRequest{
			CompartmentId: common.String(tenancyID),
			SortBy:        limits.ListServicesSortByName,
			Page:          page,
		})
		if err != nil {
			return nil, apiError("list services", region, tenancyID, err)
		}
		out = append(out, resp.Items...)
		return resp.OpcNextPage, nil
	})
	return out, err
}

func (c *LimitCollector) listLimitValues(ctx context.Context, client LimitsAPI, region, tenancyID string, svc limits.ServiceSummary) ([]limits.LimitValueSummary, error) {
	var out []limits.LimitValueSummary
	err := c.sweeper.paginate(ctx, "limits", "ListLimitValues", region, func(page *string) (*string, error) {
		resp, err := client.ListLimitValues(ctx, limits.ListLimitValuesRequest{
			CompartmentId: common.String(tenancyID),
			ServiceName:   svc.Name,
			SortBy:        limits.ListLimitValuesSortByName,
			Page:          page,
		})
		if err != nil {
			return nil, apiError("list limit values "+deref(svc.Name), region, tenancyID, err)
		}
		out = append(out, resp.Items...)
		return resp.OpcNextPage, nil
	})
	return out, err
}

func (c *LimitCollector) limitRecord(ctx context.Context, client LimitsAPI, region, tenancyID string, svc limits.ServiceSummary, lv limits.LimitValueSummary) (report.Record, error) {
	req := limits.GetResourceAvailabilityRequest{
		ServiceName:   svc.Name,
		LimitName:     lv.Name,
		CompartmentId: common.String(tenancyID),
	}
	if lv.ScopeType == limits.LimitValueSummaryScopeTypeAd {
		req.AvailabilityDomain = lv.AvailabilityDomain
	}

	if err := c.sweeper.call(ctx, "limits", "GetResourceAvailability", region); err != nil {
		return nil, err
	}
	resp, err := client.GetResourceAvailability(ctx, req)
	if err != nil {
		return nil, apiError("get resource availability "+deref(svc.Name)+"/"+deref(lv.Name), region, tenancyID, err)
	}

	return report.Record{
		"region_name":         region,
		"service_name":        report.Str(svc.Name),
		"service_description": report.Str(svc.Description),
		"limit_name":          report.Str(lv.Name),
		"availability_domain": deref(lv.AvailabilityDomain),
		"scope_type":          report.Enum(lv.ScopeType),
		"value":               report.Int64(lv.Value),
		"used":                nonzero(resp.Used),
		"available":           nonzero(resp.Available),
	}, nil
}

// nonzero renders v, leaving the column empty when v is unset or zero.
func nonzero(v *int64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
