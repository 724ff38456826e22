package oci

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oracle/oci-go-sdk/v65/announcementsservice"
	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"
	"github.com/oracle/oci-go-sdk/v65/database"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/oracle/oci-go-sdk/v65/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/ocitally/internal/config"
	"github.com/yairfalse/ocitally/internal/pacer"
	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/telemetry"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestSweeper(clients Clients) *Sweeper {
	return NewSweeper(clients, pacer.Unlimited(), nil)
}

func TestDefaultCollectors_Order(t *testing.T) {
	reg := plugin.NewRegistry().MustRegister(DefaultCollectors(newTestSweeper(newMockClients()))...)

	assert.Equal(t, []string{"tenancy", "announcement", "limit", "compute", "storage", "database"}, reg.Names())
}

func TestDefaultCollectors_CoverEveryFamily(t *testing.T) {
	covered := make(map[string]bool)
	for _, c := range DefaultCollectors(newTestSweeper(newMockClients())) {
		for _, f := range c.Families() {
			assert.False(t, covered[f], "family %s filled twice", f)
			covered[f] = true
		}
	}
	for _, f := range report.Families() {
		assert.True(t, covered[f.Name], "family %s has no collector", f.Name)
	}
}

func TestBuildIndex(t *testing.T) {
	mc := newMockClients()
	var compartmentReqs []identity.ListCompartmentsRequest

	mc.identity.GetTenancyFunc = func(_ context.Context, req identity.GetTenancyRequest) (identity.GetTenancyResponse, error) {
		assert.Equal(t, testTenancyID, *req.TenancyId)
		return identity.GetTenancyResponse{Tenancy: identity.Tenancy{
			Id:            common.String(testTenancyID),
			Name:          common.String("acme"),
			HomeRegionKey: common.String("FRA"),
		}}, nil
	}
	mc.identity.ListRegionSubscriptionsFunc = func(context.Context, identity.ListRegionSubscriptionsRequest) (identity.ListRegionSubscriptionsResponse, error) {
		return identity.ListRegionSubscriptionsResponse{Items: []identity.RegionSubscription{
			{RegionKey: common.String("FRA"), RegionName: common.String("eu-frankfurt-1"), IsHomeRegion: common.Bool(true)},
			{RegionKey: common.String("IAD"), RegionName: common.String("us-ashburn-1"), IsHomeRegion: common.Bool(false)},
		}}, nil
	}
	mc.identity.ListCompartmentsFunc = func(_ context.Context, req identity.ListCompartmentsRequest) (identity.ListCompartmentsResponse, error) {
		compartmentReqs = append(compartmentReqs, req)
		prod := identity.Compartment{
			Id:             common.String("ocid1.compartment.oc1..prod"),
			CompartmentId:  common.String(testTenancyID),
			Name:           common.String("prod"),
			LifecycleState: identity.CompartmentLifecycleStateActive,
		}
		if req.Page == nil {
			return identity.ListCompartmentsResponse{Items: []identity.Compartment{prod}, OpcNextPage: common.String("p2")}, nil
		}
		return identity.ListCompartmentsResponse{Items: []identity.Compartment{
			prod,
			{
				Id:             common.String("ocid1.compartment.oc1..paas"),
				CompartmentId:  common.String(testTenancyID),
				Name:           common.String("ManagedCompartmentForPaaS"),
				Description:    common.String("platform managed"),
				LifecycleState: identity.CompartmentLifecycleStateActive,
			},
		}}, nil
	}
	adFor := func(name string) *mockIdentity {
		return &mockIdentity{
			ListAvailabilityDomainsFunc: func(context.Context, identity.ListAvailabilityDomainsRequest) (identity.ListAvailabilityDomainsResponse, error) {
				return identity.ListAvailabilityDomainsResponse{Items: []identity.AvailabilityDomain{{
					Id:            common.String("ocid1.ad." + name),
					Name:          common.String("Uocm:" + name + "-AD-1"),
					CompartmentId: common.String(testTenancyID),
				}}}, nil
			},
		}
	}
	mc.identityByRegion = map[string]*mockIdentity{
		"eu-frankfurt-1": adFor("EU-FRANKFURT-1"),
		"us-ashburn-1":   adFor("US-ASHBURN-1"),
	}

	idx, err := newTestSweeper(mc).BuildIndex(context.Background(), testTenancyID)
	require.NoError(t, err)

	assert.Equal(t, "acme", idx.Tenancy().Name)
	require.Len(t, idx.Regions(), 2)
	home, ok := idx.HomeRegion()
	require.True(t, ok)
	assert.Equal(t, "eu-frankfurt-1", home.Name)

	comps := idx.Compartments()
	require.Len(t, comps, 3)
	assert.Equal(t, testTenancyID, comps[0].ID)
	assert.Equal(t, "acme (root)", comps[0].Name)
	assert.Equal(t, report.NullValue, idx.Tenancy().Description)
	assert.Equal(t, report.NullValue, comps[0].Description)
	assert.Equal(t, report.NullValue, comps[1].Description)
	assert.Equal(t, "platform managed", comps[2].Description)
	assert.Len(t, idx.ActiveCompartments(), 2)

	require.Len(t, compartmentReqs, 2)
	assert.True(t, *compartmentReqs[0].CompartmentIdInSubtree)
	assert.Equal(t, identity.ListCompartmentsAccessLevelAccessible, compartmentReqs[0].AccessLevel)
	assert.Equal(t, "p2", *compartmentReqs[1].Page)

	assert.Len(t, idx.AllAvailabilityDomains(), 2)
	assert.Len(t, idx.AvailabilityDomains("us-ashburn-1"), 1)
}

func TestBuildIndex_IdentityErrorAborts(t *testing.T) {
	mc := newMockClients()
	mc.identity.GetTenancyFunc = func(context.Context, identity.GetTenancyRequest) (identity.GetTenancyResponse, error) {
		return identity.GetTenancyResponse{}, errors.New("NotAuthenticated")
	}

	_, err := newTestSweeper(mc).BuildIndex(context.Background(), testTenancyID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NotAuthenticated")
}

func TestTenancyCollector_TwoRegionsRootOnly(t *testing.T) {
	regions := []tenancy.Region{
		{Key: "FRA", Name: "eu-frankfurt-1", IsHome: true},
		{Key: "IAD", Name: "us-ashburn-1"},
	}
	idx := tenancy.NewIndex(tenancy.Tenancy{ID: testTenancyID, Name: "acme", HomeRegionKey: "FRA"}, regions)
	idx.AddAvailabilityDomains(
		tenancy.AvailabilityDomain{ID: "ad-fra", Name: "Uocm:EU-FRANKFURT-1-AD-1", CompartmentID: testTenancyID},
		tenancy.AvailabilityDomain{ID: "ad-iad", Name: "Uocm:US-ASHBURN-1-AD-1", CompartmentID: testTenancyID},
	)
	scope := plugin.Scope{Run: report.NewRun(fixedNow, ""), Index: idx, Regions: regions}

	cols, err := NewTenancyCollector(newTestSweeper(newMockClients())).Collect(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, cols, 4)

	assert.Equal(t, 1, collectionByName(cols, report.FamilyTenancy).Len())

	rc := collectionByName(cols, report.FamilyRegion)
	require.Equal(t, 2, rc.Len())
	assert.Equal(t, "True", rc.Records[0]["is_home_region"])
	assert.Equal(t, "False", rc.Records[1]["is_home_region"])

	cc := collectionByName(cols, report.FamilyCompartment)
	require.Equal(t, 1, cc.Len())
	assert.Equal(t, testTenancyID, cc.Records[0]["tenancy_id"])

	ac := collectionByName(cols, report.FamilyAvailabilityDomain)
	require.Equal(t, 2, ac.Len())
	assert.Equal(t, "eu-frankfurt-1", ac.Records[0]["region_name"])
	assert.Equal(t, "us-ashburn-1", ac.Records[1]["region_name"])
}

func TestAnnouncementCollector_UsesHomeRegion(t *testing.T) {
	mc := newMockClients()
	updated := common.SDKTime{Time: time.Date(2024, 4, 2, 8, 30, 0, 0, time.UTC)}
	mc.announcements.ListAnnouncementsFunc = func(_ context.Context, req announcementsservice.ListAnnouncementsRequest) (announcementsservice.ListAnnouncementsResponse, error) {
		assert.Equal(t, announcementsservice.ListAnnouncementsLifecycleStateActive, req.LifecycleState)
		return announcementsservice.ListAnnouncementsResponse{
			AnnouncementsCollection: announcementsservice.AnnouncementsCollection{
				Items: []announcementsservice.AnnouncementSummary{{
					Id:               common.String("ocid1.announcement.1"),
					AnnouncementType: announcementsservice.BaseAnnouncementAnnouncementTypeScheduledMaintenance,
					AffectedRegions:  []string{"eu-frankfurt-1", "us-ashburn-1"},
					Services:         []string{"Compute"},
					Summary:          common.String("maintenance"),
					TimeUpdated:      &updated,
				}},
			},
		}, nil
	}

	scope := testScope("eu-frankfurt-1", "us-ashburn-1")
	cols, err := NewAnnouncementCollector(newTestSweeper(mc)).Collect(context.Background(), scope)
	require.NoError(t, err)

	assert.Equal(t, []string{"announcements:eu-frankfurt-1"}, mc.requested)
	require.Len(t, cols, 1)
	require.Equal(t, 1, cols[0].Len())
	rec := cols[0].Records[0]
	assert.Equal(t, "eu-frankfurt-1/ us-ashburn-1", rec["affected_regions"])
	assert.Equal(t, "Compute", rec["services"])
	assert.Equal(t, "SCHEDULED_MAINTENANCE", rec["announcement_type"])
	assert.Equal(t, "2024-04-02T08:30:00Z", rec["time_updated"])
	assert.Equal(t, report.NullValue, rec["reference_ticket_number"])
	assert.Equal(t, "maintenance", rec["summary"])
	assert.Equal(t, "AnnouncementSummary", rec["type"])
}

func TestLimitCollector_SkipsZeroAndScopesAD(t *testing.T) {
	mc := newMockClients()
	var availReqs []limits.GetResourceAvailabilityRequest

	mc.limits.ListServicesFunc = func(context.Context, limits.ListServicesRequest) (limits.ListServicesResponse, error) {
		return limits.ListServicesResponse{Items: []limits.ServiceSummary{
			{Name: common.String("compute"), Description: common.String("Compute")},
		}}, nil
	}
	mc.limits.ListLimitValuesFunc = func(_ context.Context, req limits.ListLimitValuesRequest) (limits.ListLimitValuesResponse, error) {
		assert.Equal(t, "compute", *req.ServiceName)
		return limits.ListLimitValuesResponse{Items: []limits.LimitValueSummary{
			{Name: common.String("zero"), ScopeType: limits.LimitValueSummaryScopeTypeRegion, Value: common.Int64(0)},
			{Name: common.String("regional"), ScopeType: limits.LimitValueSummaryScopeTypeRegion, Value: common.Int64(10)},
			{Name: common.String("global"), ScopeType: limits.LimitValueSummaryScopeTypeGlobal, Value: common.Int64(5)},
			{
				Name:               common.String("per-ad"),
				ScopeType:          limits.LimitValueSummaryScopeTypeAd,
				AvailabilityDomain: common.String("Uocm:EU-FRANKFURT-1-AD-1"),
				Value:              common.Int64(3),
			},
		}}, nil
	}
	mc.limits.GetResourceAvailabilityFunc = func(_ context.Context, req limits.GetResourceAvailabilityRequest) (limits.GetResourceAvailabilityResponse, error) {
		availReqs = append(availReqs, req)
		if *req.LimitName == "regional" {
			return limits.GetResourceAvailabilityResponse{ResourceAvailability: limits.ResourceAvailability{
				Used:      common.Int64(4),
				Available: common.Int64(6),
			}}, nil
		}
		return limits.GetResourceAvailabilityResponse{ResourceAvailability: limits.ResourceAvailability{
			Used:      common.Int64(0),
			Available: common.Int64(3),
		}}, nil
	}

	cols, err := NewLimitCollector(newTestSweeper(mc)).Collect(context.Background(), testScope("eu-frankfurt-1"))
	require.NoError(t, err)
	require.Len(t, cols, 1)
	col := cols[0]
	require.Equal(t, 3, col.Len())

	require.Len(t, availReqs, 3)
	assert.Nil(t, availReqs[0].AvailabilityDomain)
	assert.Nil(t, availReqs[1].AvailabilityDomain)
	require.NotNil(t, availReqs[2].AvailabilityDomain)
	assert.Equal(t, "Uocm:EU-FRANKFURT-1-AD-1", *availReqs[2].AvailabilityDomain)

	regional := col.Records[0]
	assert.Equal(t, "eu-frankfurt-1", regional["region_name"])
	assert.Equal(t, "regional", regional["limit_name"])
	assert.Equal(t, "REGION", regional["scope_type"])
	assert.Equal(t, "10", regional["value"])
	assert.Equal(t, "4", regional["used"])
	assert.Equal(t, "6", regional["available"])
	assert.Equal(t, "", regional["availability_domain"])

	perAD := col.Records[2]
	assert.Equal(t, "Uocm:EU-FRANKFURT-1-AD-1", perAD["availability_domain"])
	assert.Equal(t, "", perAD["used"])
	assert.Equal(t, "3", perAD["available"])
}

func TestComputeCollector_PaginatesAndTypesAttachments(t *testing.T) {
	mc := newMockClients()
	var instancePages []*string

	mc.compute.ListInstancesFunc = func(_ context.Context, req core.ListInstancesRequest) (core.ListInstancesResponse, error) {
		instancePages = append(instancePages, req.Page)
		if *req.CompartmentId != testTenancyID {
			return core.ListInstancesResponse{}, nil
		}
		if req.Page == nil {
			return core.ListInstancesResponse{
				Items:       []core.Instance{{Id: common.String("i-1"), LifecycleState: core.InstanceLifecycleStateRunning}},
				OpcNextPage: common.String("next"),
			}, nil
		}
		return core.ListInstancesResponse{
			Items: []core.Instance{{Id: common.String("i-2"), LifecycleState: core.InstanceLifecycleStateStopped}},
		}, nil
	}
	mc.compute.ListVolumeAttachmentsFunc = func(_ context.Context, req core.ListVolumeAttachmentsRequest) (core.ListVolumeAttachmentsResponse, error) {
		if *req.CompartmentId != testTenancyID {
			return core.ListVolumeAttachmentsResponse{}, nil
		}
		return core.ListVolumeAttachmentsResponse{Items: []core.VolumeAttachment{
			core.IScsiVolumeAttachment{Id: common.String("va-1"), IsReadOnly: common.Bool(false)},
			core.ParavirtualizedVolumeAttachment{Id: common.String("va-2"), IsReadOnly: common.Bool(true)},
		}}, nil
	}
	var bootReqs []core.ListBootVolumeAttachmentsRequest
	mc.compute.ListBootVolumeAttachmentsFunc = func(_ context.Context, req core.ListBootVolumeAttachmentsRequest) (core.ListBootVolumeAttachmentsResponse, error) {
		bootReqs = append(bootReqs, req)
		return core.ListBootVolumeAttachmentsResponse{}, nil
	}

	cols, err := NewComputeCollector(newTestSweeper(mc)).Collect(context.Background(), testScope("eu-frankfurt-1"))
	require.NoError(t, err)
	require.Len(t, cols, 4)

	// root compartment: two pages, prod compartment: one page
	require.Len(t, instancePages, 3)
	assert.Nil(t, instancePages[0])
	assert.Equal(t, "next", *instancePages[1])

	instances := collectionByName(cols, report.FamilyInstance)
	require.Equal(t, 2, instances.Len())
	assert.Equal(t, "i-1", instances.Records[0]["instance_id"])
	assert.Equal(t, "RUNNING", instances.Records[0]["lifecycle_state"])
	assert.Equal(t, testTenancyID, instances.Records[0]["tenancy_id"])
	assert.Equal(t, report.NullValue, instances.Records[0]["shape"])

	va := collectionByName(cols, report.FamilyVolumeAttach)
	require.Equal(t, 2, va.Len())
	assert.Equal(t, "iscsi", va.Records[0]["attachment_type"])
	assert.Equal(t, "False", va.Records[0]["is_read_only"])
	assert.Equal(t, "paravirtualized", va.Records[1]["attachment_type"])
	assert.Equal(t, "True", va.Records[1]["is_read_only"])

	// one AD × two compartments
	require.Len(t, bootReqs, 2)
	assert.Equal(t, "Uocm:eu-frankfurt-1-AD-1", *bootReqs[0].AvailabilityDomain)
}

func TestComputeCollector_ErrorAbortsWithLocation(t *testing.T) {
	mc := newMockClients()
	apiErr := errors.New("TooManyRequests")
	mc.compute.ListInstancesFunc = func(_ context.Context, req core.ListInstancesRequest) (core.ListInstancesResponse, error) {
		if *req.CompartmentId == "ocid1.compartment.oc1..prod" {
			return core.ListInstancesResponse{}, apiErr
		}
		return core.ListInstancesResponse{}, nil
	}

	cols, err := NewComputeCollector(newTestSweeper(mc)).Collect(context.Background(), testScope("eu-frankfurt-1"))
	require.Error(t, err)
	assert.Nil(t, cols)
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "collector compute")
	assert.Contains(t, err.Error(), "eu-frankfurt-1")
	assert.Contains(t, err.Error(), "ocid1.compartment.oc1..prod")
}

func TestStorageCollector(t *testing.T) {
	mc := newMockClients()
	mc.blockstorage.ListBootVolumesFunc = func(_ context.Context, req core.ListBootVolumesRequest) (core.ListBootVolumesResponse, error) {
		require.NotNil(t, req.AvailabilityDomain)
		if *req.CompartmentId != testTenancyID {
			return core.ListBootVolumesResponse{}, nil
		}
		return core.ListBootVolumesResponse{Items: []core.BootVolume{{
			Id:          common.String("bv-1"),
			SizeInGBs:   common.Int64(50),
			IsHydrated:  common.Bool(true),
			VpusPerGB:   common.Int64(10),
			DisplayName: common.String("boot"),
		}}}, nil
	}
	mc.blockstorage.ListVolumesFunc = func(_ context.Context, req core.ListVolumesRequest) (core.ListVolumesResponse, error) {
		assert.Nil(t, req.AvailabilityDomain)
		return core.ListVolumesResponse{Items: []core.Volume{{Id: common.String("vol-" + *req.CompartmentId)}}}, nil
	}

	cols, err := NewStorageCollector(newTestSweeper(mc)).Collect(context.Background(), testScope("eu-frankfurt-1", "us-ashburn-1"))
	require.NoError(t, err)

	boot := collectionByName(cols, report.FamilyBootVolume)
	require.Equal(t, 2, boot.Len(), "one per region")
	assert.Equal(t, "50", boot.Records[0]["size_in_gbs"])
	assert.Equal(t, "True", boot.Records[0]["is_hydrated"])
	assert.Equal(t, report.NullValue, boot.Records[0]["size_in_mbs"])

	block := collectionByName(cols, report.FamilyBlockVolume)
	assert.Equal(t, 4, block.Len(), "two compartments × two regions")
}

func TestSweeper_PacesEveryProviderCall(t *testing.T) {
	mc := newMockClients()
	var calls int
	mc.blockstorage.ListBootVolumesFunc = func(context.Context, core.ListBootVolumesRequest) (core.ListBootVolumesResponse, error) {
		calls++
		return core.ListBootVolumesResponse{}, nil
	}
	mc.blockstorage.ListVolumesFunc = func(context.Context, core.ListVolumesRequest) (core.ListVolumesResponse, error) {
		calls++
		return core.ListVolumesResponse{}, nil
	}

	tp, err := telemetry.NewProvider(context.Background(), config.OTELConfig{ServiceName: "ocitally-test"})
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	const callsPerSecond = 100
	s := NewSweeper(mc, pacer.New(callsPerSecond, 1), tp)

	start := time.Now()
	_, err = NewStorageCollector(s).Collect(context.Background(), testScope("eu-frankfurt-1", "us-ashburn-1"))
	require.NoError(t, err)
	elapsed := time.Since(start)

	// two regions × two compartments × (boot volumes in one AD + volumes)
	require.Equal(t, 8, calls)
	minimum := time.Duration(calls-1) * time.Second / callsPerSecond
	assert.GreaterOrEqual(t, elapsed, minimum-5*time.Millisecond)

	families, err := tp.Registry().Gather()
	require.NoError(t, err)
	var counted float64
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "ocitally_api_calls") {
			continue
		}
		for _, m := range mf.GetMetric() {
			counted += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(calls), counted)
}

func TestDatabaseCollector(t *testing.T) {
	mc := newMockClients()
	var dbReqs []database.ListDatabasesRequest

	onlyRoot := func(id *string) bool { return *id == testTenancyID }

	mc.database.ListDbSystemsFunc = func(_ context.Context, req database.ListDbSystemsRequest) (database.ListDbSystemsResponse, error) {
		if !onlyRoot(req.CompartmentId) {
			return database.ListDbSystemsResponse{}, nil
		}
		return database.ListDbSystemsResponse{Items: []database.DbSystemSummary{{
			Id:              common.String("dbs-1"),
			CpuCoreCount:    common.Int(4),
			NodeCount:       common.Int(2),
			DatabaseEdition: database.DbSystemSummaryDatabaseEditionEnterpriseEdition,
			SparseDiskgroup: common.Bool(false),
		}}}, nil
	}
	mc.database.ListDbHomesFunc = func(_ context.Context, req database.ListDbHomesRequest) (database.ListDbHomesResponse, error) {
		if !onlyRoot(req.CompartmentId) {
			return database.ListDbHomesResponse{}, nil
		}
		return database.ListDbHomesResponse{Items: []database.DbHomeSummary{
			{Id: common.String("home-1"), DbVersion: common.String("19.0.0.0")},
			{Id: common.String("home-2"), DbVersion: common.String("21.0.0.0")},
		}}, nil
	}
	mc.database.ListDatabasesFunc = func(_ context.Context, req database.ListDatabasesRequest) (database.ListDatabasesResponse, error) {
		dbReqs = append(dbReqs, req)
		if *req.DbHomeId == "home-1" {
			return database.ListDatabasesResponse{Items: []database.DatabaseSummary{{
				Id:       common.String("db-1"),
				DbHomeId: req.DbHomeId,
				DbBackupConfig: &database.DbBackupConfig{
					AutoBackupEnabled:    common.Bool(true),
					AutoBackupWindow:     database.DbBackupConfigAutoBackupWindowTwo,
					RecoveryWindowInDays: common.Int(30),
					BackupDestinationDetails: []database.BackupDestinationDetails{
						{Type: database.BackupDestinationDetailsTypeObjectStore},
					},
				},
			}}}, nil
		}
		return database.ListDatabasesResponse{Items: []database.DatabaseSummary{{
			Id:       common.String("db-2"),
			DbHomeId: req.DbHomeId,
		}}}, nil
	}
	mc.database.ListAutonomousContainerDatabasesFunc = func(_ context.Context, req database.ListAutonomousContainerDatabasesRequest) (database.ListAutonomousContainerDatabasesResponse, error) {
		if !onlyRoot(req.CompartmentId) {
			return database.ListAutonomousContainerDatabasesResponse{}, nil
		}
		return database.ListAutonomousContainerDatabasesResponse{Items: []database.AutonomousContainerDatabaseSummary{{
			Id: common.String("cdb-1"),
			BackupConfig: &database.AutonomousContainerDatabaseBackupConfig{
				RecoveryWindowInDays: common.Int(7),
			},
			MaintenanceWindow: &database.MaintenanceWindow{Preference: database.MaintenanceWindowPreferenceNoPreference},
		}}}, nil
	}
	mc.database.ListAutonomousDatabasesFunc = func(_ context.Context, req database.ListAutonomousDatabasesRequest) (database.ListAutonomousDatabasesResponse, error) {
		if !onlyRoot(req.CompartmentId) {
			return database.ListAutonomousDatabasesResponse{}, nil
		}
		return database.ListAutonomousDatabasesResponse{Items: []database.AutonomousDatabaseSummary{{
			Id:             common.String("adb-1"),
			DbWorkload:     database.AutonomousDatabaseSummaryDbWorkloadOltp,
			WhitelistedIps: []string{"10.0.0.0/16", "192.168.1.1"},
			IsFreeTier:     common.Bool(true),
		}}}, nil
	}

	cols, err := NewDatabaseCollector(newTestSweeper(mc)).Collect(context.Background(), testScope("eu-frankfurt-1"))
	require.NoError(t, err)
	require.Len(t, cols, 6)

	systems := collectionByName(cols, report.FamilyDBSystem)
	require.Equal(t, 1, systems.Len())
	assert.Equal(t, "4", systems.Records[0]["cpu_core_count"])
	assert.Equal(t, "ENTERPRISE_EDITION", systems.Records[0]["database_edition"])
	assert.Equal(t, "False", systems.Records[0]["sparse_diskgroup"])
	assert.Equal(t, report.NullValue, systems.Records[0]["disk_redundancy"])

	assert.Equal(t, 2, collectionByName(cols, report.FamilyDBHome).Len())

	require.Len(t, dbReqs, 2, "databases are listed per home")
	assert.Equal(t, "home-1", *dbReqs[0].DbHomeId)
	assert.Equal(t, testTenancyID, *dbReqs[0].CompartmentId)

	dbs := collectionByName(cols, report.FamilyDatabase)
	require.Equal(t, 2, dbs.Len())
	assert.Equal(t, "True", dbs.Records[0]["auto_backup_enabled"])
	assert.Equal(t, "SLOT_TWO", dbs.Records[0]["auto_backup_window"])
	assert.Equal(t, "OBJECT_STORE", dbs.Records[0]["backup_destination_details"])
	assert.Equal(t, "30", dbs.Records[0]["recovery_window_in_days"])
	for _, col := range []string{"auto_backup_enabled", "auto_backup_window", "backup_destination_details", "recovery_window_in_days"} {
		assert.Equal(t, report.NullValue, dbs.Records[1][col], col)
	}

	assert.Equal(t, 0, collectionByName(cols, report.FamilyAutonomousExadata).Len())

	cdbs := collectionByName(cols, report.FamilyAutonomousCDB)
	require.Equal(t, 1, cdbs.Len())
	assert.Equal(t, "7d", cdbs.Records[0]["backup_config"])
	assert.Equal(t, "NO_PREFERENCE", cdbs.Records[0]["maintenance_window"])

	adbs := collectionByName(cols, report.FamilyAutonomousDB)
	require.Equal(t, 1, adbs.Len())
	assert.Equal(t, "OLTP", adbs.Records[0]["db_workload"])
	assert.Equal(t, "10.0.0.0/16/ 192.168.1.1", adbs.Records[0]["whitelisted_ips"])
	assert.Equal(t, "True", adbs.Records[0]["is_free_tier"])
	assert.Equal(t, report.NullValue, adbs.Records[0]["is_dedicated"])
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStorageCollector(newTestSweeper(newMockClients())).Collect(ctx, testScope("eu-frankfurt-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContainerBackupConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *database.AutonomousContainerDatabaseBackupConfig
		want string
	}{
		{"nil", nil, report.NullValue},
		{"window only", &database.AutonomousContainerDatabaseBackupConfig{RecoveryWindowInDays: common.Int(14)}, "14d"},
		{
			"destinations and window",
			&database.AutonomousContainerDatabaseBackupConfig{
				RecoveryWindowInDays: common.Int(14),
				BackupDestinationDetails: []database.BackupDestinationDetails{
					{Type: database.BackupDestinationDetailsTypeNfs},
					{Type: database.BackupDestinationDetailsTypeRecoveryAppliance},
				},
			},
			"NFS/ RECOVERY_APPLIANCE/ 14d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containerBackupConfig(tt.cfg))
		})
	}
}

func TestAttachmentType(t *testing.T) {
	assert.Equal(t, "iscsi", attachmentType(core.IScsiVolumeAttachment{}))
	assert.Equal(t, "paravirtualized", attachmentType(&core.ParavirtualizedVolumeAttachment{}))
	assert.Equal(t, "emulated", attachmentType(core.EmulatedVolumeAttachment{}))
}

func TestNewConfigurationProvider_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.OCIConfig
	}{
		{"missing config file", config.OCIConfig{Auth: config.AuthConfigFile, ConfigFile: t.TempDir() + "/absent", Profile: "DEFAULT"}},
		{"unknown auth mode", config.OCIConfig{Auth: "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfigurationProvider(tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAuth)
		})
	}
}

func TestTenancyID_Override(t *testing.T) {
	id, err := TenancyID(nil, "ocid1.tenancy.oc1..override")
	require.NoError(t, err)
	assert.Equal(t, "ocid1.tenancy.oc1..override", id)
}
