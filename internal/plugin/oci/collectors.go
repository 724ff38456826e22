package oci

import "github.com/yairfalse/ocitally/internal/plugin"

// DefaultCollectors returns every OCI collector in registration order.
func DefaultCollectors(s *Sweeper) []plugin.Collector {
	return []plugin.Collector{
		NewTenancyCollector(s),
		NewAnnouncementCollector(s),
		NewLimitCollector(s),
		NewComputeCollector(s),
		NewStorageCollector(s),
		NewDatabaseCollector(s),
	}
}
