package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"

	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// ComputeCollector reports dedicated VM hosts, instances and their boot and
// block volume attachments.
type ComputeCollector struct {
	sweeper *Sweeper
}

// NewComputeCollector creates the compute collector.
func NewComputeCollector(s *Sweeper) *ComputeCollector {
	return &ComputeCollector{sweeper: s}
}

// Name returns the collector identifier.
func (c *ComputeCollector) Name() string { return "compute" }

// Families lists the families this collector fills.
func (c *ComputeCollector) Families() []string {
	return []string{
		report.FamilyDedicatedVMHost,
		report.FamilyInstance,
		report.FamilyBootVolumeAttach,
		report.FamilyVolumeAttach,
	}
}

type computeCollections struct {
	hosts, instances, bootAttach, volAttach *report.Collection
}

// Collect sweeps region → compartment, and region → compartment → AD for
// boot volume attachments.
func (c *ComputeCollector) Collect(ctx context.Context, scope plugin.Scope) ([]*report.Collection, error) {
	return c.sweeper.collect(ctx, c.Name(), func(ctx context.Context) ([]*report.Collection, error) {
		cols := computeCollections{
			hosts:      report.NewCollection(report.MustLookup(report.FamilyDedicatedVMHost)),
			instances:  report.NewCollection(report.MustLookup(report.FamilyInstance)),
			bootAttach: report.NewCollection(report.MustLookup(report.FamilyBootVolumeAttach)),
			volAttach:  report.NewCollection(report.MustLookup(report.FamilyVolumeAttach)),
		}
		tenancyID := scope.Index.Tenancy().ID

		err := c.sweeper.eachRegion(ctx, scope, c.Name(), func(ctx context.Context, region tenancy.Region) error {
			client, err := c.sweeper.clients.Compute(region.Name)
			if err != nil {
				return err
			}
			ads := scope.Index.AvailabilityDomains(region.Name)

			for _, comp := range scope.Index.ActiveCompartments() {
				if err := c.sweepCompartment(ctx, client, region.Name, tenancyID, comp.ID, ads, &cols); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return []*report.Collection{cols.hosts, cols.instances, cols.bootAttach, cols.volAttach}, nil
	})
}

func (c *ComputeCollector) sweepCompartment(ctx context.Context, client ComputeAPI, region, tenancyID, compartmentID string, ads []tenancy.AvailabilityDomain, cols *computeCollections) error {
	s := c.sweeper

	err := s.paginate(ctx, "core", "ListDedicatedVmHosts", region, func(page *string) (*string, error) {
		resp, err := client.ListDedicatedVmHosts(ctx, core.ListDedicatedVmHostsRequest{
			CompartmentId: common.String(compartmentID),
			Page:          page,
		})
		if err != nil {
			return nil, apiError("list dedicated vm hosts", region, compartmentID, err)
		}
		for _, h := range resp.Items {
			cols.hosts.Add(dedicatedVMHostRecord(h))
		}
		return resp.OpcNextPage, nil
	})
	if err != nil {
		return err
	}

	err = s.paginate(ctx, "core", "ListInstances", region, func(page *string) (*string, error) {
		resp, err := client.ListInstances(ctx, core.ListInstancesRequest{
			CompartmentId: common.String(compartmentID),
			Page:          page,
		})
		if err != nil {
			return nil, apiError("list instances", region, compartmentID, err)
		}
		for _, in := range resp.Items {
			cols.instances.Add(instanceRecord(in, tenancyID))
		}
		return resp.OpcNextPage, nil
	})
	if err != nil {
		return err
	}

	err = s.paginate(ctx, "core", "ListVolumeAttachments", region, func(page *string) (*string, error) {
		resp, err := client.ListVolumeAttachments(ctx, core.ListVolumeAttachmentsRequest{
			CompartmentId: common.String(compartmentID),
			Page:          page,
		})
		if err != nil {
			return nil, apiError("list volume attachments", region, compartmentID, err)
		}
		for _, va := range resp.Items {
			cols.volAttach.Add(volumeAttachmentRecord(va))
		}
		return resp.OpcNextPage, nil
	})
	if err != nil {
		return err
	}

	for _, ad := range ads {
		err = s.paginate(ctx, "core", "ListBootVolumeAttachments", region, func(page *string) (*string, error) {
			resp, err := client.ListBootVolumeAttachments(ctx, core.ListBootVolumeAttachmentsRequest{
				AvailabilityDomain: common.String(ad.Name),
				CompartmentId:      common.String(compartmentID),
				Page:               page,
			})
			if err != nil {
				return nil, apiError("list boot volume attachments in "+ad.Name, region, compartmentID, err)
			}
			for _, ba := range resp.Items {
				cols.bootAttach.Add(bootVolumeAttachmentRecord(ba))
			}
			return resp.OpcNextPage, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func dedicatedVMHostRecord(h core.DedicatedVmHostSummary) report.Record {
	return report.Record{
		"id":                      report.Str(h.Id),
		"availability_domain":     report.Str(h.AvailabilityDomain),
		"compartment_id":          report.Str(h.CompartmentId),
		"dedicated_vm_host_shape": report.Str(h.DedicatedVmHostShape),
		"display_name":            report.Str(h.DisplayName),
		"fault_domain":            report.Str(h.FaultDomain),
		"lifecycle_state":         report.Enum(h.LifecycleState),
		"remaining_ocpus":         report.Float32(h.RemainingOcpus),
		"total_ocpus":             report.Float32(h.TotalOcpus),
	}
}

func instanceRecord(in core.Instance, tenancyID string) report.Record {
	return report.Record{
		"instance_id":          report.Str(in.Id),
		"availability_domain":  report.Str(in.AvailabilityDomain),
		"compartment_id":       report.Str(in.CompartmentId),
		"dedicated_vm_host_id": report.Str(in.DedicatedVmHostId),
		"display_name":         report.Str(in.DisplayName),
		"fault_domain":         report.Str(in.FaultDomain),
		"lifecycle_state":      report.Enum(in.LifecycleState),
		"region":               report.Str(in.Region),
		"shape":                report.Str(in.Shape),
		"tenancy_id":           tenancyID,
	}
}

func bootVolumeAttachmentRecord(ba core.BootVolumeAttachment) report.Record {
	return report.Record{
		"id":                                  report.Str(ba.Id),
		"availability_domain":                 report.Str(ba.AvailabilityDomain),
		"boot_volume_id":                      report.Str(ba.BootVolumeId),
		"compartment_id":                      report.Str(ba.CompartmentId),
		"display_name":                        report.Str(ba.DisplayName),
		"instance_id":                         report.Str(ba.InstanceId),
		"is_pv_encryption_in_transit_enabled": report.Bool(ba.IsPvEncryptionInTransitEnabled),
		"lifecycle_state":                     report.Enum(ba.LifecycleState),
	}
}

func volumeAttachmentRecord(va core.VolumeAttachment) report.Record {
	return report.Record{
		"id":                                  report.Str(va.GetId()),
		"attachment_type":                     attachmentType(va),
		"availability_domain":                 report.Str(va.GetAvailabilityDomain()),
		"compartment_id":                      report.Str(va.GetCompartmentId()),
		"device":                              report.Str(va.GetDevice()),
		"display_name":                        report.Str(va.GetDisplayName()),
		"instance_id":                         report.Str(va.GetInstanceId()),
		"is_pv_encryption_in_transit_enabled": report.Bool(va.GetIsPvEncryptionInTransitEnabled()),
		"is_read_only":                        report.Bool(va.GetIsReadOnly()),
		"is_shareable":                        report.Bool(va.GetIsShareable()),
		"lifecycle_state":                     report.Enum(va.GetLifecycleState()),
		"volume_id":                           report.Str(va.GetVolumeId()),
	}
}
