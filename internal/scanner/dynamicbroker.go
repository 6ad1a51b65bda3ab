package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// defaultPollInterval is the wait between result polls for an async
// search job.
const defaultPollInterval = 2 * time.Second

// DynamicBroker queries a broker whose search runs as an asynchronous job:
// submit the query, poll until the job finishes, read the results. These
// flows take tens of seconds, which is why the registry excludes the
// DYNAMIC_BROKER type from QUICK scans.
type DynamicBroker struct {
	client       *http.Client
	source       string
	sourceName   string
	endpoint     string
	userAgent    string
	maxBodySize  int64
	headers      map[string]string
	pollInterval time.Duration
}

// DynamicBrokerOption configures a DynamicBroker.
type DynamicBrokerOption func(*DynamicBroker)

// WithDynamicHeaders adds extra request headers from per-source
// configuration.
func WithDynamicHeaders(headers map[string]string) DynamicBrokerOption {
	return func(s *DynamicBroker) {
		s.headers = headers
	}
}

// WithPollInterval overrides the result poll interval. Tests shorten it.
func WithPollInterval(interval time.Duration) DynamicBrokerOption {
	return func(s *DynamicBroker) {
		s.pollInterval = interval
	}
}

// NewDynamicBroker creates a scanner for one async-job broker source.
// endpoint is the job submission URL; results are polled at
// endpoint + "/" + jobID.
func NewDynamicBroker(client *http.Client, source, sourceName, endpoint string, opts ...DynamicBrokerOption) *DynamicBroker {
	s := &DynamicBroker{
		client:       client,
		source:       source,
		sourceName:   sourceName,
		endpoint:     endpoint,
		userAgent:    config.DefaultUserAgent,
		maxBodySize:  config.DefaultMaxBodySize,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source identifier.
func (s *DynamicBroker) Name() string { return s.source }

// Type returns DYNAMIC_BROKER.
func (s *DynamicBroker) Type() model.ScannerType { return model.ScannerDynamicBroker }

// searchJobRequest is the job submission payload.
type searchJobRequest struct {
	Name  string `json:"name"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// searchJobState is the job status and, once done, its results.
type searchJobState struct {
	JobID   string           `json:"job_id"`
	Status  string           `json:"status"`
	Results []dynamicListing `json:"results,omitempty"`
}

// dynamicListing is one person listing in a finished job.
type dynamicListing struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	State    string `json:"state"`
	URL      string `json:"url"`
	Verified bool   `json:"verified"`
}

// Search submits a search job and polls it to completion.
func (s *DynamicBroker) Search(ctx context.Context, identity model.IdentityProfile) ([]model.RawHit, model.ScannerOutcome) {
	job, httpStatus, err := s.submitJob(ctx, identity)
	if err != nil {
		return nil, s.failure(httpStatus, err)
	}
	if blockedStatus(httpStatus) {
		out := outcome(model.OutcomeBlocked, 0)
		out.HTTPStatus = httpStatus
		return nil, out
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for job.Status != "done" {
		if job.Status == "failed" {
			out := outcome(model.OutcomeError, 0)
			out.HTTPStatus = httpStatus
			out.ErrorDetail = "job_failed"
			return nil, out
		}

		select {
		case <-ctx.Done():
			out := outcome(model.OutcomeError, 0)
			out.ErrorDetail = errorDetail(ctx.Err())
			return nil, out
		case <-ticker.C:
		}

		job, httpStatus, err = s.pollJob(ctx, job.JobID)
		if err != nil {
			return nil, s.failure(httpStatus, err)
		}
	}

	hits := make([]model.RawHit, 0, len(job.Results))
	for _, listing := range job.Results {
		hits = append(hits, s.hitFromListing(listing))
	}

	status := model.OutcomeSuccess
	if len(hits) == 0 {
		status = model.OutcomeEmpty
	}
	out := outcome(status, len(hits))
	out.HTTPStatus = httpStatus
	return hits, out
}

func (s *DynamicBroker) submitJob(ctx context.Context, identity model.IdentityProfile) (searchJobState, int, error) {
	payload := searchJobRequest{Name: identity.FullName}
	if len(identity.Addresses) > 0 {
		payload.City = identity.Addresses[0].City
		payload.State = identity.Addresses[0].State
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return searchJobState{}, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return searchJobState{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	s.setHeaders(req)

	return s.doJSON(req)
}

func (s *DynamicBroker) pollJob(ctx context.Context, jobID string) (searchJobState, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/"+jobID, nil)
	if err != nil {
		return searchJobState{}, 0, err
	}
	s.setHeaders(req)

	return s.doJSON(req)
}

func (s *DynamicBroker) doJSON(req *http.Request) (searchJobState, int, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return searchJobState{}, 0, err
	}
	defer resp.Body.Close()

	if blockedStatus(resp.StatusCode) {
		// Caller inspects the status code; no decode attempt on a
		// block response.
		return searchJobState{}, resp.StatusCode, nil
	}

	var job searchJobState
	if err := json.NewDecoder(io.LimitReader(resp.Body, s.maxBodySize)).Decode(&job); err != nil {
		return searchJobState{}, resp.StatusCode, err
	}
	return job, resp.StatusCode, nil
}

func (s *DynamicBroker) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
}

func (s *DynamicBroker) failure(httpStatus int, err error) model.ScannerOutcome {
	out := outcome(model.OutcomeError, 0)
	out.HTTPStatus = httpStatus
	out.ErrorDetail = errorDetail(err)
	return out
}

func (s *DynamicBroker) hitFromListing(listing dynamicListing) model.RawHit {
	preview := listing.Name
	if listing.City != "" {
		preview += ", " + listing.City
	}
	if listing.State != "" {
		preview += ", " + listing.State
	}

	fields := map[string]string{"name": listing.Name}
	if listing.City != "" {
		fields["city"] = listing.City
	}
	if listing.State != "" {
		fields["state"] = listing.State
	}

	return model.RawHit{
		Source:        s.source,
		SourceName:    s.sourceName,
		URL:           listing.URL,
		DataType:      model.DataTypeProfile,
		DataPreview:   preview,
		Severity:      model.InfoForDataType(model.DataTypeProfile).Severity,
		MatchedFields: fields,
		// Unverified listings need a human look before any removal is
		// submitted on their behalf.
		ManualCheckRequired: !listing.Verified,
	}
}
