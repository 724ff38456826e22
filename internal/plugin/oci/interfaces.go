package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/announcementsservice"
	"github.com/oracle/oci-go-sdk/v65/core"
	"github.com/oracle/oci-go-sdk/v65/database"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/oracle/oci-go-sdk/v65/limits"
)

// IdentityAPI defines the identity operations used to build the tenancy index.
type IdentityAPI interface {
	GetTenancy(ctx context.Context, request identity.GetTenancyRequest) (identity.GetTenancyResponse, error)
	ListRegionSubscriptions(ctx context.Context, request identity.ListRegionSubscriptionsRequest) (identity.ListRegionSubscriptionsResponse, error)
	ListCompartments(ctx context.Context, request identity.ListCompartmentsRequest) (identity.ListCompartmentsResponse, error)
	ListAvailabilityDomains(ctx context.Context, request identity.ListAvailabilityDomainsRequest) (identity.ListAvailabilityDomainsResponse, error)
}

// ComputeAPI defines the compute operations used by the compute collector.
type ComputeAPI interface {
	ListDedicatedVmHosts(ctx context.Context, request core.ListDedicatedVmHostsRequest) (core.ListDedicatedVmHostsResponse, error)
	ListInstances(ctx context.Context, request core.ListInstancesRequest) (core.ListInstancesResponse, error)
	ListVolumeAttachments(ctx context.Context, request core.ListVolumeAttachmentsRequest) (core.ListVolumeAttachmentsResponse, error)
	ListBootVolumeAttachments(ctx context.Context, request core.ListBootVolumeAttachmentsRequest) (core.ListBootVolumeAttachmentsResponse, error)
}

// BlockstorageAPI defines the block storage operations used by the storage collector.
type BlockstorageAPI interface {
	ListBootVolumes(ctx context.Context, request core.ListBootVolumesRequest) (core.ListBootVolumesResponse, error)
	ListVolumes(ctx context.Context, request core.ListVolumesRequest) (core.ListVolumesResponse, error)
}

// DatabaseAPI defines the database operations used by the database collector.
type DatabaseAPI interface {
	ListDbSystems(ctx context.Context, request database.ListDbSystemsRequest) (database.ListDbSystemsResponse, error)
	ListDbHomes(ctx context.Context, request database.ListDbHomesRequest) (database.ListDbHomesResponse, error)
	ListDatabases(ctx context.Context, request database.ListDatabasesRequest) (database.ListDatabasesResponse, error)
	ListAutonomousExadataInfrastructures(ctx context.Context, request database.ListAutonomousExadataInfrastructuresRequest) (database.ListAutonomousExadataInfrastructuresResponse, error)
	ListAutonomousContainerDatabases(ctx context.Context, request database.ListAutonomousContainerDatabasesRequest) (database.ListAutonomousContainerDatabasesResponse, error)
	ListAutonomousDatabases(ctx context.Context, request database.ListAutonomousDatabasesRequest) (database.ListAutonomousDatabasesResponse, error)
}

// LimitsAPI defines the service limit operations used by the limit collector.
type LimitsAPI interface {
	ListServices(ctx context.Context, request limits.ListServicesRequest) (limits.ListServicesResponse, error)
	ListLimitValues(ctx context.Context, request limits.ListLimitValuesRequest) (limits.ListLimitValuesResponse, error)
	GetResourceAvailability(ctx context.Context, request limits.GetResourceAvailabilityRequest) (limits.GetResourceAvailabilityResponse, error)
}

// AnnouncementAPI defines the announcement operations used by the announcement collector.
type AnnouncementAPI interface {
	ListAnnouncements(ctx context.Context, request announcementsservice.ListAnnouncementsRequest) (announcementsservice.ListAnnouncementsResponse, error)
}

// Clients hands out region-bound API clients. An empty region means the
// region of the configuration provider.
type Clients interface {
	Identity(region string) (IdentityAPI, error)
	Compute(region string) (ComputeAPI, error)
	Blockstorage(region string) (BlockstorageAPI, error)
	Database(region string) (DatabaseAPI, error)
	Limits(region string) (LimitsAPI, error)
	Announcements(region string) (AnnouncementAPI, error)
}
