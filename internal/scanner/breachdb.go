package scanner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// BreachDB queries a breach corpus for each of the user's email addresses.
//
// The corpus API follows the common account-lookup shape: GET with the
// email as a path segment returns a JSON array of breaches, 404 means the
// account appears in none.
type BreachDB struct {
	client      *http.Client
	source      string
	sourceName  string
	endpoint    string
	userAgent   string
	maxBodySize int64
	headers     map[string]string
}

// BreachDBOption configures a BreachDB scanner.
type BreachDBOption func(*BreachDB)

// WithBreachHeaders adds extra request headers (typically the corpus API
// key) from per-source configuration.
func WithBreachHeaders(headers map[string]string) BreachDBOption {
	return func(s *BreachDB) {
		s.headers = headers
	}
}

// NewBreachDB creates a scanner for one breach corpus. The account email
// is appended to endpoint as a path segment.
func NewBreachDB(client *http.Client, source, sourceName, endpoint string, opts ...BreachDBOption) *BreachDB {
	s := &BreachDB{
		client:      client,
		source:      source,
		sourceName:  sourceName,
		endpoint:    strings.TrimRight(endpoint, "/"),
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source identifier.
func (s *BreachDB) Name() string { return s.source }

// Type returns BREACH_DB.
func (s *BreachDB) Type() model.ScannerType { return model.ScannerBreachDB }

// breachRecord is one breach the corpus reports for an account.
type breachRecord struct {
	Name        string   `json:"name"`
	Domain      string   `json:"domain"`
	BreachDate  string   `json:"breach_date"`
	DataClasses []string `json:"data_classes"`
}

// Search looks up every email on the identity. A profile without emails is
// a healthy EMPTY result for this scanner type, not an error.
func (s *BreachDB) Search(ctx context.Context, identity model.IdentityProfile) ([]model.RawHit, model.ScannerOutcome) {
	var (
		hits       []model.RawHit
		lastStatus int
	)

	for _, email := range identity.Emails {
		records, httpStatus, err := s.lookup(ctx, email)
		lastStatus = httpStatus
		if err != nil {
			out := outcome(model.OutcomeError, len(hits))
			out.HTTPStatus = httpStatus
			out.ErrorDetail = errorDetail(err)
			return nil, out
		}
		if blockedStatus(httpStatus) {
			out := outcome(model.OutcomeBlocked, len(hits))
			out.HTTPStatus = httpStatus
			return nil, out
		}

		for _, record := range records {
			hits = append(hits, s.hitFromRecord(email, record))
		}
	}

	status := model.OutcomeSuccess
	if len(hits) == 0 {
		status = model.OutcomeEmpty
	}
	out := outcome(status, len(hits))
	out.HTTPStatus = lastStatus
	return hits, out
}

// lookup queries the corpus for one account. A 404 is "not in any breach".
func (s *BreachDB) lookup(ctx context.Context, email string) ([]breachRecord, int, error) {
	lookupURL := s.endpoint + "/" + url.PathEscape(email)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, nil
	case blockedStatus(resp.StatusCode):
		return nil, resp.StatusCode, nil
	case resp.StatusCode != http.StatusOK:
		return nil, resp.StatusCode, errUnexpectedStatus
	}

	var records []breachRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, s.maxBodySize)).Decode(&records); err != nil {
		return nil, resp.StatusCode, err
	}
	return records, resp.StatusCode, nil
}

func (s *BreachDB) hitFromRecord(email string, record breachRecord) model.RawHit {
	// Credential-class breaches outrank plain contact leaks.
	dataType := model.DataTypeEmail
	if slices.ContainsFunc(record.DataClasses, func(c string) bool {
		return strings.EqualFold(c, "passwords") || strings.EqualFold(c, "password hashes")
	}) {
		dataType = model.DataTypeCredentials
	}

	preview := record.Name
	if record.BreachDate != "" {
		preview += " (" + record.BreachDate + ")"
	}

	return model.RawHit{
		Source:      s.source,
		SourceName:  s.sourceName,
		URL:         "https://" + record.Domain,
		DataType:    dataType,
		DataPreview: preview,
		Severity:    model.InfoForDataType(dataType).Severity,
		MatchedFields: map[string]string{
			"email": email,
		},
	}
}
