// Package report defines the tabular record model for ocitally.
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunColumn is appended to every family header and stamped on every row.
const RunColumn = "report_no"

// Separator joins header columns and row values. Values are never quoted.
const Separator = ", "

// runIDLayout is the UTC timestamp layout used for run identifiers before
// colons are replaced to keep the identifier filesystem and URL safe.
const runIDLayout = "2006-01-02T15:04:05Z"

// Family describes one report: its name and ordered columns.
// The trailing report_no column is implicit.
type Family struct {
	Name    string
	Columns []string
}

// Header returns the CSV header line for the family (without newline).
func (f Family) Header() string {
	cols := make([]string, 0, len(f.Columns)+1)
	cols = append(cols, f.Columns...)
	cols = append(cols, RunColumn)
	return strings.Join(cols, Separator)
}

// Record is one flat row: column name → rendered value.
type Record map[string]string

// Collection accumulates the records of one family in sweep order.
type Collection struct {
	Family  Family
	Records []Record
}

// NewCollection creates an empty collection for a family.
func NewCollection(f Family) *Collection {
	return &Collection{Family: f}
}

// Add appends a record.
func (c *Collection) Add(r Record) {
	c.Records = append(c.Records, r)
}

// Len returns the number of records collected.
func (c *Collection) Len() int {
	return len(c.Records)
}

// Run carries the identity of one invocation. It is created once and passed
// explicitly to every collector and emitter.
type Run struct {
	ID            string    // filesystem-safe UTC timestamp, e.g. 2024-05-01T10-00-00Z
	CorrelationID string    // random id sent alongside uploads and logs
	Base          string    // destination prefix (PAR URL, bucket prefix or directory)
	StartedAt     time.Time // when the run began
}

// NewRun creates a run stamped at now.
func NewRun(now time.Time, base string) Run {
	return Run{
		ID:            RunID(now),
		CorrelationID: uuid.NewString(),
		Base:          base,
		StartedAt:     now.UTC(),
	}
}

// RunID formats t as a UTC timestamp with ':' replaced by '-'.
func RunID(t time.Time) string {
	return strings.ReplaceAll(t.UTC().Format(runIDLayout), ":", "-")
}

// FileName returns "<family>_<runID>.csv".
func (r Run) FileName(family string) string {
	return family + "_" + r.ID + ".csv"
}

// Destination returns "<base><family>_<runID>.csv".
func (r Run) Destination(family string) string {
	return r.Base + r.FileName(family)
}
