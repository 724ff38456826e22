package emitter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/ocitally/pkg/report"
)

// CorrelationHeader carries the run's correlation id on every upload.
const CorrelationHeader = "X-Correlation-ID"

const maxErrorBody = 512

// StatusError is a non-2xx answer from an upload endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload rejected: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("upload rejected: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Temporary reports whether retrying the upload can succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests || e.Code == http.StatusRequestTimeout
}

// PAREmitter PUTs each family to an object storage pre-authenticated
// request URL.
type PAREmitter struct {
	client *http.Client
}

// NewPAREmitter creates a PAR emitter. A nil client uses a client with a
// one minute timeout.
func NewPAREmitter(client *http.Client) *PAREmitter {
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	return &PAREmitter{client: client}
}

// Sink returns "par".
func (e *PAREmitter) Sink() string { return "par" }

// Emit uploads the encoded family with a single PUT.
func (e *PAREmitter) Emit(ctx context.Context, run report.Run, c *report.Collection) error {
	url := run.Destination(c.Family.Name)
	body := report.Encode(c, run.ID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request for %s: %w", c.Family.Name, err))
	}
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set(CorrelationHeader, run.CorrelationID)
	req.ContentLength = int64(len(body))

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("put %s: %w", c.Family.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Debug().Ctx(ctx).
			Str("family", c.Family.Name).
			Int("status", resp.StatusCode).
			Int("bytes", len(body)).
			Msg("family uploaded")
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	serr := &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	if !serr.Temporary() {
		return backoff.Permanent(serr)
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		return fmt.Errorf("%w: %w", serr, backoff.RetryAfter(secs))
	}
	return serr
}

// Close is a no-op.
func (e *PAREmitter) Close() error { return nil }
