package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/announcementsservice"
	"github.com/oracle/oci-go-sdk/v65/common"

	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/pkg/report"
)

// announcementSummaryType is the model discriminator reported in the type column.
const announcementSummaryType = "AnnouncementSummary"

// AnnouncementCollector lists the tenancy's active console announcements.
// Announcements are global, so a single region (the home region) is queried.
type AnnouncementCollector struct {
	sweeper *Sweeper
}

// NewAnnouncementCollector creates the announcement collector.
func NewAnnouncementCollector(s *Sweeper) *AnnouncementCollector {
	return &AnnouncementCollector{sweeper: s}
}

// Name returns the collector identifier.
func (c *AnnouncementCollector) Name() string { return "announcement" }

// Families lists the families this collector fills.
func (c *AnnouncementCollector) Families() []string {
	return []string{report.FamilyAnnouncement}
}

// Collect lists active announcements, oldest first.
func (c *AnnouncementCollector) Collect(ctx context.Context, scope plugin.Scope) ([]*report.Collection, error) {
	return c.sweeper.collect(ctx, c.Name(), func(ctx context.Context) ([]*report.Collection, error) {
		col := report.NewCollection(report.MustLookup(report.FamilyAnnouncement))

		region := ""
		if home, ok := scope.Index.HomeRegion(); ok {
			region = home.Name
		}
		client, err := c.sweeper.clients.Announcements(region)
		if err != nil {
			return nil, err
		}

		tenancyID := scope.Index.Tenancy().ID
		err = c.sweeper.paginate(ctx, "announcements", "ListAnnouncements", region, func(page *string) (*string, error) {
			resp, err := client.ListAnnouncements(ctx, announcementsservice.ListAnnouncementsRequest{
				CompartmentId:  common.String(tenancyID),
				LifecycleState: announcementsservice.ListAnnouncementsLifecycleStateActive,
				SortBy:         announcementsservice.ListAnnouncementsSortByTimecreated,
				Page:           page,
			})
			if err != nil {
				return nil, apiError("list announcements", region, tenancyID, err)
			}
			for _, a := range resp.Items {
				col.Add(announcementRecord(a))
			}
			return resp.OpcNextPage, nil
		})
		if err != nil {
			return nil, err
		}
		return []*report.Collection{col}, nil
	})
}

func announcementRecord(a announcementsservice.AnnouncementSummary) report.Record {
	return report.Record{
		"affected_regions":        report.List(a.AffectedRegions),
		"announcement_type":       report.Enum(a.AnnouncementType),
		"announcement id":         report.Str(a.Id),
		"reference_ticket_number": report.Str(a.ReferenceTicketNumber),
		"services":                report.List(a.Services),
		"summary":                 report.Str(a.Summary),
		"time_updated":            sdkTime(a.TimeUpdated),
		"type":                    announcementSummaryType,
	}
}
