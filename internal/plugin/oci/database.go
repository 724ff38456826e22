package oci

import (
	"context"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/database"

	"github.com/yairfalse/ocitally/internal/plugin"
	"github.com/yairfalse/ocitally/internal/tenancy"
	"github.com/yairfalse/ocitally/pkg/report"
)

// DatabaseCollector reports DB systems, DB homes and their databases, and the
// autonomous stack (exadata infrastructure, container databases, databases).
type DatabaseCollector struct {
	sweeper *Sweeper
}

// NewDatabaseCollector creates the database collector.
func NewDatabaseCollector(s *Sweeper) *DatabaseCollector {
	return &DatabaseCollector{sweeper: s}
}

// Name returns the collector identifier.
func (c *DatabaseCollector) Name() string { return "database" }

// Families lists the families this collector fills.
func (c *DatabaseCollector) Families() []string {
	return []string{
		report.FamilyDBSystem,
		report.FamilyDBHome,
		report.FamilyDatabase,
		report.FamilyAutonomousExadata,
		report.FamilyAutonomousCDB,
		report.FamilyAutonomousDB,
	}
}

type databaseCollections struct {
	systems, homes, databases, exadata, cdbs, adbs *report.Collection
}

func (d *databaseCollections) all() []*report.Collection {
	return []*report.Collection{d.systems, d.homes, d.databases, d.exadata, d.cdbs, d.adbs}
}

// Collect sweeps region → compartment. Databases are listed per DB home.
func (c *DatabaseCollector) Collect(ctx context.Context, scope plugin.Scope) ([]*report.Collection, error) {
	return c.sweeper.collect(ctx, c.Name(), func(ctx context.Context) ([]*report.Collection, error) {
		cols := &databaseCollections{
			systems:   report.NewCollection(report.MustLookup(report.FamilyDBSystem)),
			homes:     report.NewCollection(report.MustLookup(report.FamilyDBHome)),
			databases: report.NewCollection(report.MustLookup(report.FamilyDatabase)),
			exadata:   report.NewCollection(report.MustLookup(report.FamilyAutonomousExadata)),
			cdbs:      report.NewCollection(report.MustLookup(report.FamilyAutonomousCDB)),
			adbs:      report.NewCollection(report.MustLookup(report.FamilyAutonomousDB)),
		}

		err := c.sweeper.eachRegion(ctx, scope, c.Name(), func(ctx context.Context, region tenancy.Region) error {
			client, err := c.sweeper.clients.Database(region.Name)
			if err != nil {
				return err
			}
			for _, comp := range scope.Index.ActiveCompartments() {
				if err := c.sweepCompartment(ctx, client, region.Name, comp.ID, cols); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return cols.all(), nil
	})
}

func (c *DatabaseCollector) sweepCompartment(ctx context.Context, client DatabaseAPI, region, compartmentID string, cols *databaseCollections) error {
	s := c.sweeper
	comp := common.String(compartmentID)

	err := s.paginate(ctx, "database", "ListDbSystems", region, func(page *string) (*string, error) {
		resp, err := client.ListDbSystems(ctx, database.ListDbSystemsRequest{CompartmentId: comp, Page: page})
		if err != nil {
			return nil, apiError("list db systems", region, compartmentID, err)
		}
		for _, sys := range resp.Items {
			cols.systems.Add(dbSystemRecord(sys))
		}
		return resp.OpcNextPage, nil
	})
	if err != nil {
		return err
	}

	var homes []database.DbHomeSummary
	err = s.paginate(ctx, "database", "ListDbHomes", region, func(page *string) (*string, error) {
		resp, err := client.ListDbHomes(ctx, database.ListDbHomesRequest{CompartmentId: comp, Page: page})
		if err != nil {
			return nil, apiError("list db homes", region, compartmentID, err)
		}
		homes = append(homes, resp.Items...)
		return resp.OpcNextPage, nil
	})
	if err != nil {
		return err
	}

	for _, home := range homes {
		cols.homes.Add(dbHomeRecord(home))
	}

	for _, home := range homes {
		err := s.paginate(ctx, "database", "ListDatabases", region, func(page *string) (*string, error) {
			resp, err := client.ListDatabases(ctx, database.ListDatabasesRequest{
				CompartmentId: comp,
				DbHomeId:      home.Id,
				Page:          page,
			})
			if err != nil {
				return nil, apiError("list databases in home "+deref(home.Id), region, compartmentID, err)
			}
			for _, db := range resp.Items {
				cols.databases.Add(databaseRecord(db))
			}
			return resp.OpcNextPage, nil
		})
		if err != nil {
			return err
		}
	}

	err = s.paginate(ctx, "database", "ListAutonomousExadataInfrastructures", region, func(page *string) (*string, error) {
		resp, err := client.ListAutonomousExadataInfrastructures(ctx, database.ListAutonomousExadataInfrastructuresRequest{CompartmentId: comp, Page: page})
		if err != nil {
			return nil, apiError("list autonomous exadata infrastructures", region, compartmentID, err)
		}
		for _, x := range resp.Items {
			cols.exadata.Add(autonomousExadataRecord(x))
		}
		return resp.OpcNextPage, nil
	})
	if err != nil {
		return err
	}

	err = s.paginate(ctx, "database", "ListAutonomousContainerDatabases", region, func(page *string) (*string, error) {
		resp, err := client.ListAutonomousContainerDatabases(ctx, database.ListAutonomousContainerDatabasesRequest{CompartmentId: comp, Page: page})
		if err != nil {
			return nil, apiError("list autonomous container databases", region, compartmentID, err)
		}
		for _, cdb := range resp.Items {
			cols.cdbs.Add(autonomousCDBRecord(cdb))
		}
		return resp.OpcNextPage, nil
	})
	if err != nil {
		return err
	}

	return s.paginate(ctx, "database", "ListAutonomousDatabases", region, func(page *string) (*string, error) {
		resp, err := client.ListAutonomousDatabases(ctx, database.ListAutonomousDatabasesRequest{CompartmentId: comp, Page: page})
		if err != nil {
			return nil, apiError("list autonomous databases", region, compartmentID, err)
		}
		for _, adb := range resp.Items {
			cols.adbs.Add(autonomousDBRecord(adb))
		}
		return resp.OpcNextPage, nil
	})
}

func dbSystemRecord(s database.DbSystemSummary) report.Record {
	return report.Record{
		"id":                       report.Str(s.Id),
		"availability_domain":      report.Str(s.AvailabilityDomain),
		"cluster_name":             report.Str(s.ClusterName),
		"compartment_id":           report.Str(s.CompartmentId),
		"cpu_core_count":           report.Int(s.CpuCoreCount),
		"data_storage_percentage":  report.Int(s.DataStoragePercentage),
		"data_storage_size_in_gbs": report.Int(s.DataStorageSizeInGBs),
		"database_edition":         report.Enum(s.DatabaseEdition),
		"disk_redundancy":          report.Enum(s.DiskRedundancy),
		"display_name":             report.Str(s.DisplayName),
		"domain":                   report.Str(s.Domain),
		"hostname":                 report.Str(s.Hostname),
		"lifecycle_state":          report.Enum(s.LifecycleState),
		"node_count":               report.Int(s.NodeCount),
		"reco_storage_size_in_gb":  report.Int(s.RecoStorageSizeInGB),
		"shape":                    report.Str(s.Shape),
		"sparse_diskgroup":         report.Bool(s.SparseDiskgroup),
		"version":                  report.Str(s.Version),
	}
}

func dbHomeRecord(h database.DbHomeSummary) report.Record {
	return report.Record{
		"id":                          report.Str(h.Id),
		"compartment_id":              report.Str(h.CompartmentId),
		"db_system_id":                report.Str(h.DbSystemId),
		"db_version":                  report.Str(h.DbVersion),
		"display_name":                report.Str(h.DisplayName),
		"last_patch_history_entry_id": report.Str(h.LastPatchHistoryEntryId),
		"lifecycle_state":             report.Enum(h.LifecycleState),
	}
}

func databaseRecord(db database.DatabaseSummary) report.Record {
	rec := report.Record{
		"id":                         report.Str(db.Id),
		"compartment_id":             report.Str(db.CompartmentId),
		"auto_backup_enabled":        report.NullValue,
		"auto_backup_window":         report.NullValue,
		"backup_destination_details": report.NullValue,
		"recovery_window_in_days":    report.NullValue,
		"db_home_id":                 report.Str(db.DbHomeId),
		"db_name":                    report.Str(db.DbName),
		"db_unique_name":             report.Str(db.DbUniqueName),
		"db_workload":                report.Str(db.DbWorkload),
		"lifecycle_state":            report.Enum(db.LifecycleState),
		"pdb_name":                   report.Str(db.PdbName),
	}
	if b := db.DbBackupConfig; b != nil {
		rec["auto_backup_enabled"] = report.Bool(b.AutoBackupEnabled)
		rec["auto_backup_window"] = report.Enum(b.AutoBackupWindow)
		rec["backup_destination_details"] = backupDestinations(b.BackupDestinationDetails)
		rec["recovery_window_in_days"] = report.Int(b.RecoveryWindowInDays)
	}
	return rec
}

func autonomousExadataRecord(x database.AutonomousExadataInfrastructureSummary) report.Record {
	return report.Record{
		"id":                      report.Str(x.Id),
		"availability_domain":     report.Str(x.AvailabilityDomain),
		"compartment_id":          report.Str(x.CompartmentId),
		"display_name":            report.Str(x.DisplayName),
		"domain":                  report.Str(x.Domain),
		"hostname":                report.Str(x.Hostname),
		"last_maintenance_run_id": report.Str(x.LastMaintenanceRunId),
		"license_model":           report.Enum(x.LicenseModel),
		"lifecycle_state":         report.Enum(x.LifecycleState),
		"maintenance_window":      maintenanceWindow(x.MaintenanceWindow),
		"next_maintenance_run_id": report.Str(x.NextMaintenanceRunId),
		"shape":                   report.Str(x.Shape),
	}
}

func autonomousCDBRecord(cdb database.AutonomousContainerDatabaseSummary) report.Record {
	return report.Record{
		"id":                                   report.Str(cdb.Id),
		"autonomous_exadata_infrastructure_id": report.Str(cdb.AutonomousExadataInfrastructureId),
		"availability_domain":                  report.Str(cdb.AvailabilityDomain),
		"backup_config":                        containerBackupConfig(cdb.BackupConfig),
		"compartment_id":                       report.Str(cdb.CompartmentId),
		"display_name":                         report.Str(cdb.DisplayName),
		"last_maintenance_run_id":              report.Str(cdb.LastMaintenanceRunId),
		"lifecycle_state":                      report.Enum(cdb.LifecycleState),
		"maintenance_window":                   maintenanceWindow(cdb.MaintenanceWindow),
		"next_maintenance_run_id":              report.Str(cdb.NextMaintenanceRunId),
		"patch_model":                          report.Enum(cdb.PatchModel),
		"service_level_agreement_type":         report.Enum(cdb.ServiceLevelAgreementType),
	}
}

func autonomousDBRecord(adb database.AutonomousDatabaseSummary) report.Record {
	return report.Record{
		"id":                               report.Str(adb.Id),
		"autonomous_container_database_id": report.Str(adb.AutonomousContainerDatabaseId),
		"compartment_id":                   report.Str(adb.CompartmentId),
		"cpu_core_count":                   report.Int(adb.CpuCoreCount),
		"data_safe_status":                 report.Enum(adb.DataSafeStatus),
		"data_storage_size_in_tbs":         report.Int(adb.DataStorageSizeInTBs),
		"db_name":                          report.Str(adb.DbName),
		"db_version":                       report.Str(adb.DbVersion),
		"db_workload":                      report.Enum(adb.DbWorkload),
		"display_name":                     report.Str(adb.DisplayName),
		"is_auto_scaling_enabled":          report.Bool(adb.IsAutoScalingEnabled),
		"is_dedicated":                     report.Bool(adb.IsDedicated),
		"is_free_tier":                     report.Bool(adb.IsFreeTier),
		"lifecycle_state":                  report.Enum(adb.LifecycleState),
		"whitelisted_ips":                  report.List(adb.WhitelistedIps),
	}
}
