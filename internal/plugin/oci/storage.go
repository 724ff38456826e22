package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"

	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// StorageCollector reports boot volumes (listed per AD) and block volumes
// (listed per compartment).
type StorageCollector struct {
	sweeper *Sweeper
}

// NewStorageCollector creates the block storage collector.
func NewStorageCollector(s *Sweeper) *StorageCollector {
	return &StorageCollector{sweeper: s}
}

// Name returns the collector identifier.
func (c *StorageCollector) Name() string { return "storage" }

// Families lists the families this collector fills.
func (c *StorageCollector) Families() []string {
	return []string{report.FamilyBootVolume, report.FamilyBlockVolume}
}

// Collect sweeps region → compartment → AD for boot volumes and
// region → compartment for block volumes.
func (c *StorageCollector) Collect(ctx context.Context, scope plugin.Scope) ([]*report.Collection, error) {
	return c.sweeper.collect(ctx, c.Name(), func(ctx context.Context) ([]*report.Collection, error) {
		boot := report.NewCollection(report.MustLookup(report.FamilyBootVolume))
		block := report.NewCollection(report.MustLookup(report.FamilyBlockVolume))
		s := c.sweeper

		err := s.eachRegion(ctx, scope, c.Name(), func(ctx context.Context, region tenancy.Region) error {
			client, err := s.clients.Blockstorage(region.Name)
			if err != nil {
				return err
			}
			ads := scope.Index.AvailabilityDomains(region.Name)

			for _, comp := range scope.Index.ActiveCompartments() {
				for _, ad := range ads {
					err := s.paginate(ctx, "core", "ListBootVolumes", region.Name, func(page *string) (*string, error) {
						resp, err := client.ListBootVolumes(ctx, core.ListBootVolumesRequest{
							AvailabilityDomain: common.String(ad.Name),
							CompartmentId:      common.String(comp.ID),
							Page:               page,
						})
						if err != nil {
							return nil, apiError("list boot volumes in "+ad.Name, region.Name, comp.ID, err)
						}
						for _, bv := range resp.Items {
							boot.Add(bootVolumeRecord(bv))
						}
						return resp.OpcNextPage, nil
					})
					if err != nil {
						return err
					}
				}

				err := s.paginate(ctx, "core", "ListVolumes", region.Name, func(page *string) (*string, error) {
					resp, err := client.ListVolumes(ctx, core.ListVolumesRequest{
						CompartmentId: common.String(comp.ID),
						Page:          page,
					})
					if err != nil {
						return nil, apiError("list volumes", region.Name, comp.ID, err)
					}
					for _, v := range resp.Items {
						block.Add(blockVolumeRecord(v))
					}
					return resp.OpcNextPage, nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return []*report.Collection{boot, block}, nil
	})
}

func bootVolumeRecord(bv core.BootVolume) report.Record {
	return report.Record{
		"id":                  report.Str(bv.Id),
		"availability_domain": report.Str(bv.AvailabilityDomain),
		"compartment_id":      report.Str(bv.CompartmentId),
		"display_name":        report.Str(bv.DisplayName),
		"image_id":            report.Str(bv.ImageId),
		"is_hydrated":         report.Bool(bv.IsHydrated),
		"kms_key_id":          report.Str(bv.KmsKeyId),
		"lifecycle_state":     report.Enum(bv.LifecycleState),
		"size_in_gbs":         report.Int64(bv.SizeInGBs),
		"size_in_mbs":         report.Int64(bv.SizeInMBs),
		"volume_group_id":     report.Str(bv.VolumeGroupId),
		"vpus_per_gb":         report.Int64(bv.VpusPerGB),
	}
}

func blockVolumeRecord(v core.Volume) report.Record {
	return report.Record{
		"id":                  report.Str(v.Id),
		"availability_domain": report.Str(v.AvailabilityDomain),
		"compartment_id":      report.Str(v.CompartmentId),
		"display_name":        report.Str(v.DisplayName),
		"is_hydrated":         report.Bool(v.IsHydrated),
		"kms_key_id":          report.Str(v.KmsKeyId),
		"lifecycle_state":     report.Enum(v.LifecycleState),
		"size_in_gbs":         report.Int64(v.SizeInGBs),
		"size_in_mbs":         report.Int64(v.SizeInMBs),
		"volume_group_id":     report.Str(v.VolumeGroupId),
		"vpus_per_gb":         report.Int64(v.VpusPerGB),
	}
}
