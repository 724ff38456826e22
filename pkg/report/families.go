package report

import "slices"

// Family names in emission order.
const (
	FamilyTenancy            = "tenancy"
	FamilyRegion             = "region"
	FamilyCompartment        = "compartment"
	FamilyAvailabilityDomain = "availability_domain"
	FamilyAnnouncement       = "announcement"
	FamilyLimit              = "limit"
	FamilyDedicatedVMHost    = "dedicated_vm_host"
	FamilyInstance           = "instance"
	FamilyBootVolumeAttach   = "bv_attachment"
	FamilyVolumeAttach       = "vol_attachment"
	FamilyBootVolume         = "boot_volume"
	FamilyBlockVolume        = "block_volume"
	FamilyDBSystem           = "db_system"
	FamilyDBHome             = "db_home"
	FamilyDatabase           = "database"
	FamilyAutonomousExadata  = "autonomous_exadata"
	FamilyAutonomousCDB      = "autonomous_cdb"
	FamilyAutonomousDB       = "autonomous_db"
)

var families = []Family{
	{FamilyTenancy, []string{"tenancy_id", "tenancy_name", "description", "home_region"}},
	{FamilyRegion, []string{"tenancy_id", "region_key", "region_name", "is_home_region"}},
	{FamilyCompartment, []string{"compartment_id", "name", "description", "tenancy_id"}},
	{FamilyAvailabilityDomain, []string{"ad_id", "ad_name", "tenancy_id", "region_name"}},
	{FamilyAnnouncement, []string{
		"affected_regions", "announcement_type", "announcement id", "reference_ticket_number",
		"services", "summary", "time_updated", "type",
	}},
	{FamilyLimit, []string{
		"region_name", "service_name", "service_description", "limit_name",
		"availability_domain", "scope_type", "value", "used", "available",
	}},
	{FamilyDedicatedVMHost, []string{
		"id", "availability_domain", "compartment_id", "dedicated_vm_host_shape", "display_name",
		"fault_domain", "lifecycle_state", "remaining_ocpus", "total_ocpus",
	}},
	{FamilyInstance, []string{
		"instance_id", "availability_domain", "compartment_id", "dedicated_vm_host_id", "display_name",
		"fault_domain", "lifecycle_state", "region", "shape", "tenancy_id",
	}},
	{FamilyBootVolumeAttach, []string{
		"id", "availability_domain", "boot_volume_id", "compartment_id", "display_name",
		"instance_id", "is_pv_encryption_in_transit_enabled", "lifecycle_state",
	}},
	{FamilyVolumeAttach, []string{
		"id", "attachment_type", "availability_domain", "compartment_id", "device", "display_name",
		"instance_id", "is_pv_encryption_in_transit_enabled", "is_read_only", "is_shareable",
		"lifecycle_state", "volume_id",
	}},
	{FamilyBootVolume, []string{
		"id", "availability_domain", "compartment_id", "display_name", "image_id", "is_hydrated",
		"kms_key_id", "lifecycle_state", "size_in_gbs", "size_in_mbs", "volume_group_id", "vpus_per_gb",
	}},
	{FamilyBlockVolume, []string{
		"id", "availability_domain", "compartment_id", "display_name", "is_hydrated", "kms_key_id",
		"lifecycle_state", "size_in_gbs", "size_in_mbs", "volume_group_id", "vpus_per_gb",
	}},
	{FamilyDBSystem, []string{
		"id", "availability_domain", "cluster_name", "compartment_id", "cpu_core_count",
		"data_storage_percentage", "data_storage_size_in_gbs", "database_edition", "disk_redundancy",
		"display_name", "domain", "hostname", "lifecycle_state", "node_count",
		"reco_storage_size_in_gb", "shape", "sparse_diskgroup", "version",
	}},
	{FamilyDBHome, []string{
		"id", "compartment_id", "db_system_id", "db_version", "display_name",
		"last_patch_history_entry_id", "lifecycle_state",
	}},
	{FamilyDatabase, []string{
		"id", "compartment_id", "auto_backup_enabled", "auto_backup_window", "backup_destination_details",
		"recovery_window_in_days", "db_home_id", "db_name", "db_unique_name", "db_workload",
		"lifecycle_state", "pdb_name",
	}},
	{FamilyAutonomousExadata, []string{
		"id", "availability_domain", "compartment_id", "display_name", "domain", "hostname",
		"last_maintenance_run_id", "license_model", "lifecycle_state", "maintenance_window",
		"next_maintenance_run_id", "shape",
	}},
	{FamilyAutonomousCDB, []string{
		"id", "autonomous_exadata_infrastructure_id", "availability_domain", "backup_config",
		"compartment_id", "display_name", "last_maintenance_run_id", "lifecycle_state",
		"maintenance_window", "next_maintenance_run_id", "patch_model", "service_level_agreement_type",
	}},
	{FamilyAutonomousDB, []string{
		"id", "autonomous_container_database_id", "compartment_id", "cpu_core_count", "data_safe_status",
		"data_storage_size_in_tbs", "db_name", "db_version", "db_workload", "display_name",
		"is_auto_scaling_enabled", "is_dedicated", "is_free_tier", "lifecycle_state", "whitelisted_ips",
	}},
}

// Families returns every report family in emission order. The result is a
// deep copy and may be modified freely.
func Families() []Family {
	out := make([]Family, len(families))
	for i, f := range families {
		out[i] = f.clone()
	}
	return out
}

// Lookup returns a copy of the family with the given name.
func Lookup(name string) (Family, bool) {
	for _, f := range families {
		if f.Name == name {
			return f.clone(), true
		}
	}
	return Family{}, false
}

func (f Family) clone() Family {
	return Family{Name: f.Name, Columns: slices.Clone(f.Columns)}
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) Family {
	f, ok := Lookup(name)
	if !ok {
		panic("report: unknown family " + name)
	}
	return f
}
