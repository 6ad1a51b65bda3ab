package scanner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// DarkWebIndex queries an onion-hosted paste or market index for the
// user's emails and usernames. The http.Client must be Tor-routed (see
// the darkweb package); this scanner never dials the clearnet.
//
// Hits from these indexes always require manual confirmation: the index
// reports term occurrences, not verified identity matches, and there is no
// removal flow to a paste mirror anyway.
type DarkWebIndex struct {
	client      *http.Client
	source      string
	sourceName  string
	endpoint    string
	maxBodySize int64
}

// NewDarkWebIndex creates a scanner for one onion index. endpoint is the
// index's search URL on its .onion host.
func NewDarkWebIndex(client *http.Client, source, sourceName, endpoint string) *DarkWebIndex {
	return &DarkWebIndex{
		client:      client,
		source:      source,
		sourceName:  sourceName,
		endpoint:    endpoint,
		maxBodySize: config.DefaultMaxBodySize,
	}
}

// Name returns the source identifier.
func (s *DarkWebIndex) Name() string { return s.source }

// Type returns DARK_WEB.
func (s *DarkWebIndex) Type() model.ScannerType { return model.ScannerDarkWeb }

// indexEntry is one occurrence the index reports for a search term.
type indexEntry struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	Excerpt  string `json:"excerpt"`
	SeenAt   string `json:"seen_at"`
}

// Search queries the index for each email and username on the identity.
// A profile with neither is a healthy EMPTY result.
func (s *DarkWebIndex) Search(ctx context.Context, identity model.IdentityProfile) ([]model.RawHit, model.ScannerOutcome) {
	terms := make([]string, 0, len(identity.Emails)+len(identity.Usernames))
	terms = append(terms, identity.Emails...)
	terms = append(terms, identity.Usernames...)

	var (
		hits       []model.RawHit
		lastStatus int
	)
	for _, term := range terms {
		entries, httpStatus, err := s.query(ctx, term)
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

		for _, entry := range entries {
			hits = append(hits, s.hitFromEntry(term, entry))
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

func (s *DarkWebIndex) query(ctx context.Context, term string) ([]indexEntry, int, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, 0, err
	}
	q := u.Query()
	q.Set("q", term)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

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

	var entries []indexEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, s.maxBodySize)).Decode(&entries); err != nil {
		return nil, resp.StatusCode, err
	}
	return entries, resp.StatusCode, nil
}

func (s *DarkWebIndex) hitFromEntry(term string, entry indexEntry) model.RawHit {
	preview := entry.Title
	if entry.SeenAt != "" {
		preview += " (" + entry.SeenAt + ")"
	}

	fieldName := "email"
	if !strings.Contains(term, "@") {
		fieldName = "username"
	}

	return model.RawHit{
		Source:      s.source,
		SourceName:  s.sourceName,
		URL:         entry.Location,
		DataType:    model.DataTypeCredentials,
		DataPreview: preview,
		Severity:    model.InfoForDataType(model.DataTypeCredentials).Severity,
		MatchedFields: map[string]string{
			fieldName: term,
		},
		ManualCheckRequired: true,
	}
}
