package oci

import (
	"strconv"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"
	"github.com/oracle/oci-go-sdk/v65/database"

	"github.com/yairfalse/ocitally/pkg/report"
)

// Attachment types as reported in vol_attachment.
const (
	attachmentISCSI           = "iscsi"
	attachmentParavirtualized = "paravirtualized"
	attachmentEmulated        = "emulated"
)

func sdkTime(t *common.SDKTime) string {
	if t == nil {
		return report.NullValue
	}
	return report.Time(&t.Time)
}

// attachmentType names the concrete kind of a polymorphic volume attachment.
func attachmentType(va core.VolumeAttachment) string {
	switch va.(type) {
	case core.IScsiVolumeAttachment, *core.IScsiVolumeAttachment:
		return attachmentISCSI
	case core.ParavirtualizedVolumeAttachment, *core.ParavirtualizedVolumeAttachment:
		return attachmentParavirtualized
	case core.EmulatedVolumeAttachment, *core.EmulatedVolumeAttachment:
		return attachmentEmulated
	default:
		return report.NullValue
	}
}

// maintenanceWindow renders the scheduling preference of a window.
func maintenanceWindow(w *database.MaintenanceWindow) string {
	if w == nil {
		return report.NullValue
	}
	return report.Enum(w.Preference)
}

// backupDestinations renders destination types joined like other lists.
func backupDestinations(ds []database.BackupDestinationDetails) string {
	if ds == nil {
		return report.NullValue
	}
	types := make([]string, 0, len(ds))
	for _, d := range ds {
		types = append(types, string(d.Type))
	}
	return report.List(types)
}

// containerBackupConfig renders an autonomous container database backup
// config as its destinations and recovery window.
func containerBackupConfig(b *database.AutonomousContainerDatabaseBackupConfig) string {
	if b == nil {
		return report.NullValue
	}
	window := report.NullValue
	if b.RecoveryWindowInDays != nil {
		window = strconv.Itoa(*b.RecoveryWindowInDays) + "d"
	}
	if len(b.BackupDestinationDetails) == 0 {
		return window
	}
	return backupDestinations(b.BackupDestinationDetails) + report.ListSeparator + window
}
