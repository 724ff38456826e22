package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/announcementsservice"
	"github.com/oracle/oci-go-sdk/v65/core"
	"github.com/oracle/oci-go-sdk/v65/database"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/oracle/oci-go-sdk/v65/limits"

	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// mockIdentity implements IdentityAPI for testing.
type mockIdentity struct {
	GetTenancyFunc              func(ctx context.Context, req identity.GetTenancyRequest) (identity.GetTenancyResponse, error)
	ListRegionSubscriptionsFunc func(ctx context.Context, req identity.ListRegionSubscriptionsRequest) (identity.ListRegionSubscriptionsResponse, error)
	ListCompartmentsFunc        func(ctx context.Context, req identity.ListCompartmentsRequest) (identity.ListCompartmentsResponse, error)
	ListAvailabilityDomainsFunc func(ctx context.Context, req identity.ListAvailabilityDomainsRequest) (identity.ListAvailabilityDomainsResponse, error)
}

func (m *mockIdentity) GetTenancy(ctx context.Context, req identity.GetTenancyRequest) (identity.GetTenancyResponse, error) {
	if m.GetTenancyFunc != nil {
		return m.GetTenancyFunc(ctx, req)
	}
	return identity.GetTenancyResponse{}, nil
}

func (m *mockIdentity) ListRegionSubscriptions(ctx context.Context, req identity.ListRegionSubscriptionsRequest) (identity.ListRegionSubscriptionsResponse, error) {
	if m.ListRegionSubscriptionsFunc != nil {
		return m.ListRegionSubscriptionsFunc(ctx, req)
	}
	return identity.ListRegionSubscriptionsResponse{}, nil
}

func (m *mockIdentity) ListCompartments(ctx context.Context, req identity.ListCompartmentsRequest) (identity.ListCompartmentsResponse, error) {
	if m.ListCompartmentsFunc != nil {
		return m.ListCompartmentsFunc(ctx, req)
	}
	return identity.ListCompartmentsResponse{}, nil
}

func (m *mockIdentity) ListAvailabilityDomains(ctx context.Context, req identity.ListAvailabilityDomainsRequest) (identity.ListAvailabilityDomainsResponse, error) {
	if m.ListAvailabilityDomainsFunc != nil {
		return m.ListAvailabilityDomainsFunc(ctx, req)
	}
	return identity.ListAvailabilityDomainsResponse{}, nil
}

// mockCompute implements ComputeAPI for testing.
type mockCompute struct {
	ListDedicatedVmHostsFunc      func(ctx context.Context, req core.ListDedicatedVmHostsRequest) (core.ListDedicatedVmHostsResponse, error)
	ListInstancesFunc             func(ctx context.Context, req core.ListInstancesRequest) (core.ListInstancesResponse, error)
	ListVolumeAttachmentsFunc     func(ctx context.Context, req core.ListVolumeAttachmentsRequest) (core.ListVolumeAttachmentsResponse, error)
	ListBootVolumeAttachmentsFunc func(ctx context.Context, req core.ListBootVolumeAttachmentsRequest) (core.ListBootVolumeAttachmentsResponse, error)
}

func (m *mockCompute) ListDedicatedVmHosts(ctx context.Context, req core.ListDedicatedVmHostsRequest) (core.ListDedicatedVmHostsResponse, error) {
	if m.ListDedicatedVmHostsFunc != nil {
		return m.ListDedicatedVmHostsFunc(ctx, req)
	}
	return core.ListDedicatedVmHostsResponse{}, nil
}

func (m *mockCompute) ListInstances(ctx context.Context, req core.ListInstancesRequest) (core.ListInstancesResponse, error) {
	if m.ListInstancesFunc != nil {
		return m.ListInstancesFunc(ctx, req)
	}
	return core.ListInstancesResponse{}, nil
}

func (m *mockCompute) ListVolumeAttachments(ctx context.Context, req core.ListVolumeAttachmentsRequest) (core.ListVolumeAttachmentsResponse, error) {
	if m.ListVolumeAttachmentsFunc != nil {
		return m.ListVolumeAttachmentsFunc(ctx, req)
	}
	return core.ListVolumeAttachmentsResponse{}, nil
}

func (m *mockCompute) ListBootVolumeAttachments(ctx context.Context, req core.ListBootVolumeAttachmentsRequest) (core.ListBootVolumeAttachmentsResponse, error) {
	if m.ListBootVolumeAttachmentsFunc != nil {
		return m.ListBootVolumeAttachmentsFunc(ctx, req)
	}
	return core.ListBootVolumeAttachmentsResponse{}, nil
}

// mockBlockstorage implements BlockstorageAPI for testing.
type mockBlockstorage struct {
	ListBootVolumesFunc func(ctx context.Context, req core.ListBootVolumesRequest) (core.ListBootVolumesResponse, error)
	ListVolumesFunc     func(ctx context.Context, req core.ListVolumesRequest) (core.ListVolumesResponse, error)
}

func (m *mockBlockstorage) ListBootVolumes(ctx context.Context, req core.ListBootVolumesRequest) (core.ListBootVolumesResponse, error) {
	if m.ListBootVolumesFunc != nil {
		return m.ListBootVolumesFunc(ctx, req)
	}
	return core.ListBootVolumesResponse{}, nil
}

func (m *mockBlockstorage) ListVolumes(ctx context.Context, req core.ListVolumesRequest) (core.ListVolumesResponse, error) {
	if m.ListVolumesFunc != nil {
		return m.ListVolumesFunc(ctx, req)
	}
	return core.ListVolumesResponse{}, nil
}

// mockDatabase implements DatabaseAPI for testing.
type mockDatabase struct {
	ListDbSystemsFunc                        func(ctx context.Context, req database.ListDbSystemsRequest) (database.ListDbSystemsResponse, error)
	ListDbHomesFunc                          func(ctx context.Context, req database.ListDbHomesRequest) (database.ListDbHomesResponse, error)
	ListDatabasesFunc                        func(ctx context.Context, req database.ListDatabasesRequest) (database.ListDatabasesResponse, error)
	ListAutonomousExadataInfrastructuresFunc func(ctx context.Context, req database.ListAutonomousExadataInfrastructuresRequest) (database.ListAutonomousExadataInfrastructuresResponse, error)
	ListAutonomousContainerDatabasesFunc     func(ctx context.Context, req database.ListAutonomousContainerDatabasesRequest) (database.ListAutonomousContainerDatabasesResponse, error)
	ListAutonomousDatabasesFunc              func(ctx context.Context, req database.ListAutonomousDatabasesRequest) (database.ListAutonomousDatabasesResponse, error)
}

func (m *mockDatabase) ListDbSystems(ctx context.Context, req database.ListDbSystemsRequest) (database.ListDbSystemsResponse, error) {
	if m.ListDbSystemsFunc != nil {
		return m.ListDbSystemsFunc(ctx, req)
	}
	return database.ListDbSystemsResponse{}, nil
}

func (m *mockDatabase) ListDbHomes(ctx context.Context, req database.ListDbHomesRequest) (database.ListDbHomesResponse, error) {
	if m.ListDbHomesFunc != nil {
		return m.ListDbHomesFunc(ctx, req)
	}
	return database.ListDbHomesResponse{}, nil
}

func (m *mockDatabase) ListDatabases(ctx context.Context, req database.ListDatabasesRequest) (database.ListDatabasesResponse, error) {
	if m.ListDatabasesFunc != nil {
		return m.ListDatabasesFunc(ctx, req)
	}
	return database.ListDatabasesResponse{}, nil
}

func (m *mockDatabase) ListAutonomousExadataInfrastructures(ctx context.Context, req database.ListAutonomousExadataInfrastructuresRequest) (database.ListAutonomousExadataInfrastructuresResponse, error) {
	if m.ListAutonomousExadataInfrastructuresFunc != nil {
		return m.ListAutonomousExadataInfrastructuresFunc(ctx, req)
	}
	return database.ListAutonomousExadataInfrastructuresResponse{}, nil
}

func (m *mockDatabase) ListAutonomousContainerDatabases(ctx context.Context, req database.ListAutonomousContainerDatabasesRequest) (database.ListAutonomousContainerDatabasesResponse, error) {
	if m.ListAutonomousContainerDatabasesFunc != nil {
		return m.ListAutonomousContainerDatabasesFunc(ctx, req)
	}
	return database.ListAutonomousContainerDatabasesResponse{}, nil
}

func (m *mockDatabase) ListAutonomousDatabases(ctx context.Context, req database.ListAutonomousDatabasesRequest) (database.ListAutonomousDatabasesResponse, error) {
	if m.ListAutonomousDatabasesFunc != nil {
		return m.ListAutonomousDatabasesFunc(ctx, req)
	}
	return database.ListAutonomousDatabasesResponse{}, nil
}

// mockLimits implements LimitsAPI for testing.
type mockLimits struct {
	ListServicesFunc            func(ctx context.Context, req limits.ListServicesRequest) (limits.ListServicesResponse, error)
	ListLimitValuesFunc         func(ctx context.Context, req limits.ListLimitValuesRequest) (limits.ListLimitValuesResponse, error)
	GetResourceAvailabilityFunc func(ctx context.Context, req limits.GetResourceAvailabilityRequest) (limits.GetResourceAvailabilityResponse, error)
}

func (m *mockLimits) ListServices(ctx context.Context, req limits.ListServicesRequest) (limits.ListServicesResponse, error) {
	if m.ListServicesFunc != nil {
		return m.ListServicesFunc(ctx, req)
	}
	return limits.ListServicesResponse{}, nil
}

func (m *mockLimits) ListLimitValues(ctx context.Context, req limits.ListLimitValuesRequest) (limits.ListLimitValuesResponse, error) {
	if m.ListLimitValuesFunc != nil {
		return m.ListLimitValuesFunc(ctx, req)
	}
	return limits.ListLimitValuesResponse{}, nil
}

func (m *mockLimits) GetResourceAvailability(ctx context.Context, req limits.GetResourceAvailabilityRequest) (limits.GetResourceAvailabilityResponse, error) {
	if m.GetResourceAvailabilityFunc != nil {
		return m.GetResourceAvailabilityFunc(ctx, req)
	}
	return limits.GetResourceAvailabilityResponse{}, nil
}

// mockAnnouncements implements AnnouncementAPI for testing.
type mockAnnouncements struct {
	ListAnnouncementsFunc func(ctx context.Context, req announcementsservice.ListAnnouncementsRequest) (announcementsservice.ListAnnouncementsResponse, error)
}

func (m *mockAnnouncements) ListAnnouncements(ctx context.Context, req announcementsservice.ListAnnouncementsRequest) (announcementsservice.ListAnnouncementsResponse, error) {
	if m.ListAnnouncementsFunc != nil {
		return m.ListAnnouncementsFunc(ctx, req)
	}
	return announcementsservice.ListAnnouncementsResponse{}, nil
}

// mockClients hands out the same mock for every region and records which
// regions were asked for.
type mockClients struct {
	identity      *mockIdentity
	compute       *mockCompute
	blockstorage  *mockBlockstorage
	database      *mockDatabase
	limits        *mockLimits
	announcements *mockAnnouncements

	identityByRegion map[string]*mockIdentity
	requested        []string
}

func newMockClients() *mockClients {
	return &mockClients{
		identity:      &mockIdentity{},
		compute:       &mockCompute{},
		blockstorage:  &mockBlockstorage{},
		database:      &mockDatabase{},
		limits:        &mockLimits{},
		announcements: &mockAnnouncements{},
	}
}

func (m *mockClients) Identity(region string) (IdentityAPI, error) {
	m.requested = append(m.requested, "identity:"+region)
	if c, ok := m.identityByRegion[region]; ok {
		return c, nil
	}
	return m.identity, nil
}

func (m *mockClients) Compute(region string) (ComputeAPI, error) {
	m.requested = append(m.requested, "compute:"+region)
	return m.compute, nil
}

func (m *mockClients) Blockstorage(region string) (BlockstorageAPI, error) {
	m.requested = append(m.requested, "blockstorage:"+region)
	return m.blockstorage, nil
}

func (m *mockClients) Database(region string) (DatabaseAPI, error) {
	m.requested = append(m.requested, "database:"+region)
	return m.database, nil
}

func (m *mockClients) Limits(region string) (LimitsAPI, error) {
	m.requested = append(m.requested, "limits:"+region)
	return m.limits, nil
}

func (m *mockClients) Announcements(region string) (AnnouncementAPI, error) {
	m.requested = append(m.requested, "announcements:"+region)
	return m.announcements, nil
}

const testTenancyID = "ocid1.tenancy.oc1..aaaa"

// testScope builds a scope with the root compartment, one extra active
// compartment and one AD per region.
func testScope(regions ...string) plugin.Scope {
	var rs []tenancy.Region
	for i, name := range regions {
		rs = append(rs, tenancy.Region{Key: name[:3], Name: name, IsHome: i == 0})
	}
	idx := tenancy.NewIndex(tenancy.Tenancy{ID: testTenancyID, Name: "acme", HomeRegionKey: rs[0].Key}, rs)
	idx.AddCompartments(tenancy.Compartment{
		ID:       "ocid1.compartment.oc1..prod",
		Name:     "prod",
		ParentID: testTenancyID,
		State:    tenancy.StateActive,
	})
	for _, name := range regions {
		idx.AddAvailabilityDomains(tenancy.AvailabilityDomain{
			ID:            "ocid1.ad." + name,
			Name:          "Uocm:" + name + "-AD-1",
			CompartmentID: testTenancyID,
		})
	}
	return plugin.Scope{Run: report.NewRun(fixedNow, ""), Index: idx, Regions: rs}
}

func collectionByName(cols []*report.Collection, family string) *report.Collection {
	for _, c := range cols {
		if c.Family.Name == family {
			return c
		}
	}
	return nil
}
