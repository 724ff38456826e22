package emitter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPartialUpload is returned when at least one family failed to upload.
var ErrPartialUpload = errors.New("one or more report families failed to upload")

// Outcome is the upload result of one family.
type Outcome struct {
	Family      string `json:"family"`
	Records     int    `json:"records"`
	Destination string `json:"destination"`
	Error       string `json:"error,omitempty"`
	Err         error  `json:"-"`
}

// OK reports whether the family was stored.
func (o Outcome) OK() bool { return o.Err == nil && o.Error == "" }

// Summary describes one run's uploads.
type Summary struct {
	RunID         string    `json:"run_id"`
	CorrelationID string    `json:"correlation_id"`
	Sink          string    `json:"sink"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Outcomes      []Outcome `json:"outcomes"`
}

// Add appends an outcome, keeping its error text for persistence.
func (s *Summary) Add(o Outcome) {
	if o.Err != nil && o.Error == "" {
		o.Error = o.Err.Error()
	}
	s.Outcomes = append(s.Outcomes, o)
}

// Failed returns the outcomes whose upload failed.
func (s *Summary) Failed() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Records is the total number of rows collected.
func (s *Summary) Records() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Records
	}
	return n
}

// Err returns ErrPartialUpload naming the failed families, or nil.
func (s *Summary) Err() error {
	failed := s.Failed()
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, len(failed))
	for i, o := range failed {
		names[i] = o.Family
	}
	return fmt.Errorf("%w: %s", ErrPartialUpload, strings.Join(names, ", "))
}
