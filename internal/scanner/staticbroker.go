package scanner

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/Rank127/datascrub-pro-sub004/internal/config"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// StaticBroker queries a people-search broker whose search results are a
// plain HTML listing page.
//
// Design decision: We require an external http.Client rather than creating
// one internally because client configuration (timeouts, test transports)
// belongs to the caller, and connection pooling is shared across scanners.
type StaticBroker struct {
	client      *http.Client
	source      string
	sourceName  string
	endpoint    string
	userAgent   string
	maxBodySize int64
	headers     map[string]string
}

// StaticBrokerOption configures a StaticBroker.
type StaticBrokerOption func(*StaticBroker)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) StaticBrokerOption {
	return func(s *StaticBroker) {
		s.userAgent = ua
	}
}

// WithMaxBodySize caps the response body read, preventing memory
// exhaustion from a misbehaving source.
func WithMaxBodySize(size int64) StaticBrokerOption {
	return func(s *StaticBroker) {
		s.maxBodySize = size
	}
}

// WithHeaders adds extra request headers from per-source configuration
// (API keys, partner tokens).
func WithHeaders(headers map[string]string) StaticBrokerOption {
	return func(s *StaticBroker) {
		s.headers = headers
	}
}

// NewStaticBroker creates a scanner for one static broker source.
// endpoint is the source's search URL; the identity query is appended as
// URL parameters.
func NewStaticBroker(client *http.Client, source, sourceName, endpoint string, opts ...StaticBrokerOption) *StaticBroker {
	s := &StaticBroker{
		client:      client,
		source:      source,
		sourceName:  sourceName,
		endpoint:    endpoint,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source identifier.
func (s *StaticBroker) Name() string { return s.source }

// Type returns STATIC_BROKER.
func (s *StaticBroker) Type() model.ScannerType { return model.ScannerStaticBroker }

// Search queries the broker's listing page for the identity's names and
// parses result links out of the returned HTML.
func (s *StaticBroker) Search(ctx context.Context, identity model.IdentityProfile) ([]model.RawHit, model.ScannerOutcome) {
	searchURL, err := s.buildSearchURL(identity)
	if err != nil {
		out := outcome(model.OutcomeError, 0)
		out.ErrorDetail = "bad_endpoint"
		return nil, out
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		out := outcome(model.OutcomeError, 0)
		out.ErrorDetail = "request_failed"
		return nil, out
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		out := outcome(model.OutcomeError, 0)
		out.ErrorDetail = errorDetail(err)
		return nil, out
	}
	defer resp.Body.Close()

	if blockedStatus(resp.StatusCode) {
		out := outcome(model.OutcomeBlocked, 0)
		out.HTTPStatus = resp.StatusCode
		return nil, out
	}
	if resp.StatusCode != http.StatusOK {
		out := outcome(model.OutcomeError, 0)
		out.HTTPStatus = resp.StatusCode
		out.ErrorDetail = "unexpected_status"
		return nil, out
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		out := outcome(model.OutcomeError, 0)
		out.HTTPStatus = resp.StatusCode
		out.ErrorDetail = errorDetail(err)
		return nil, out
	}

	page := string(body)
	if isBlockPage(page) {
		out := outcome(model.OutcomeBlocked, 0)
		out.HTTPStatus = resp.StatusCode
		return nil, out
	}

	hits, err := s.parseListings(page, identity)
	if err != nil {
		out := outcome(model.OutcomeError, 0)
		out.HTTPStatus = resp.StatusCode
		out.ErrorDetail = "parse"
		return nil, out
	}

	status := model.OutcomeSuccess
	if len(hits) == 0 {
		status = model.OutcomeEmpty
	}
	out := outcome(status, len(hits))
	out.HTTPStatus = resp.StatusCode
	return hits, out
}

// buildSearchURL appends the identity query to the source endpoint. Only
// the primary name and first city are sent; brokers key their listings on
// name and locality, and sending more fields than needed leaks more than
// needed.
func (s *StaticBroker) buildSearchURL(identity model.IdentityProfile) (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("name", identity.FullName)
	if len(identity.Addresses) > 0 {
		if city := identity.Addresses[0].City; city != "" {
			q.Set("city", city)
		}
		if state := identity.Addresses[0].State; state != "" {
			q.Set("state", state)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseListings extracts person-listing links from a result page. Brokers
// render each result as an anchor to a profile detail path; the anchor
// text is the listed name and locality summary.
func (s *StaticBroker) parseListings(page string, identity model.IdentityProfile) ([]model.RawHit, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, err
	}

	var hits []model.RawHit
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attrValue(n, "href"); isListingPath(href) {
				preview := collapseWhitespace(nodeText(n))
				if preview != "" {
					hit := model.RawHit{
						Source:      s.source,
						SourceName:  s.sourceName,
						URL:         resolveURL(base, href),
						DataType:    model.DataTypeProfile,
						DataPreview: preview,
						Severity:    model.InfoForDataType(model.DataTypeProfile).Severity,
						MatchedFields: map[string]string{
							"name": preview,
						},
					}
					annotateLocality(hit.MatchedFields, preview, identity.Addresses)
					hits = append(hits, hit)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hits, nil
}

// isListingPath reports whether an href points at a person detail page.
// Broker sites use a handful of conventional path segments for these.
func isListingPath(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	lower := strings.ToLower(href)
	for _, segment := range []string{"/person/", "/people/", "/profile/", "/name/"} {
		if strings.Contains(lower, segment) {
			return true
		}
	}
	return false
}

// isBlockPage detects captcha and access-denial interstitials served with
// a 200 status.
func isBlockPage(page string) bool {
	lower := strings.ToLower(page)
	for _, marker := range []string{"captcha", "access denied", "unusual traffic", "are you a robot"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// annotateLocality records the listing's city/state as matched fields when
// the preview mentions one of the identity's localities. The confidence
// scorer turns these into the locality factor.
func annotateLocality(fields map[string]string, preview string, addresses []model.Address) {
	lower := strings.ToLower(preview)
	for _, addr := range addresses {
		if addr.City != "" && strings.Contains(lower, strings.ToLower(addr.City)) {
			fields["city"] = addr.City
		}
		if addr.State != "" && strings.Contains(lower, strings.ToLower(addr.State)) {
			fields["state"] = addr.State
		}
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates all text content beneath a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
