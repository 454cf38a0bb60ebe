package source

//go:generate mockgen -package=mock -source=content.go -destination=mock/content.go

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/folio/internal/fault"
	"github.com/matheuskafuri/folio/internal/metrics"
)

// Proxy is a relay endpoint. URL is a template where {url} expands to the
// query-escaped target and {raw} to the target as is.
type Proxy struct {
	Name string
	URL  string
	// Field names the JSON member holding the page when the proxy answers
	// with application/json. Defaults to "contents".
	Field string
}

// Expand builds the request URL for target.
func (p Proxy) Expand(target string) string {
	return Expand(p.URL, target)
}

// Expand substitutes {url} and {raw} in template with target.
func Expand(template, target string) string {
	r := strings.NewReplacer("{url}", url.QueryEscape(target), "{raw}", target)
	return r.Replace(template)
}

type payloadKind int

const (
	payloadText payloadKind = iota
	payloadJSON
)

// payload is a proxy response body tagged by its content type.
type payload struct {
	kind payloadKind
	body []byte
}

func kindOf(contentType string) payloadKind {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return payloadJSON
	}
	return payloadText
}

// html returns the page carried by the payload.
func (p payload) html(field string) (string, error) {
	if p.kind == payloadText {
		return string(p.body), nil
	}
	if field == "" {
		field = "contents"
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(p.body, &wrapped); err != nil {
		// some relays answer with a bare JSON string
		var s string
		if err2 := json.Unmarshal(p.body, &s); err2 == nil {
			return s, nil
		}
		return "", fmt.Errorf("decoding json payload: %w", err)
	}
	raw, ok := wrapped[field]
	if !ok {
		return "", fmt.Errorf("json payload has no %q field", field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("decoding %q field: %w", field, err)
	}
	return s, nil
}

// PageFetcher fetches and parses one content page.
type PageFetcher interface {
	FetchPage(ctx context.Context, target string) (*Page, error)
}

// ContentClient fetches pages through a set of relay proxies raced in parallel.
type ContentClient struct {
	client       *http.Client
	proxies      []Proxy
	proxyTimeout time.Duration
	minPayload   int
	maxBody      int64
	logger       *zap.Logger
	parse        func(r io.Reader, target string) (*Page, error)
}

var _ PageFetcher = (*ContentClient)(nil)

type ContentOption func(*ContentClient)

func WithHTTPClient(c *http.Client) ContentOption {
	return func(cc *ContentClient) { cc.client = c }
}

func WithProxyTimeout(d time.Duration) ContentOption {
	return func(cc *ContentClient) { cc.proxyTimeout = d }
}

func WithMinPayload(n int) ContentOption {
	return func(cc *ContentClient) { cc.minPayload = n }
}

func WithContentLogger(l *zap.Logger) ContentOption {
	return func(cc *ContentClient) { cc.logger = l }
}

func NewContentClient(proxies []Proxy, opts ...ContentOption) *ContentClient {
	cc := &ContentClient{
		client:       &http.Client{},
		proxies:      proxies,
		proxyTimeout: 5 * time.Second,
		minPayload:   100,
		maxBody:      4 << 20,
		logger:       zap.NewNop(),
		parse:        ParsePage,
	}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

type attempt struct {
	proxy string
	html  string
	err   error
}

// FetchPage races every proxy for target. The first attempt whose page is
// longer than the minimum payload and parses wins, and the remaining
// attempts are cancelled. When all attempts fail it returns a nil page and a
// NetworkFailure.
func (cc *ContentClient) FetchPage(ctx context.Context, target string) (*Page, error) {
	if len(cc.proxies) == 0 {
		return nil, fault.Network(nil, "no proxies configured for %s", target)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan attempt, len(cc.proxies))
	for _, p := range cc.proxies {
		go func(p Proxy) {
			html, err := cc.try(ctx, p, target)
			results <- attempt{proxy: p.Name, html: html, err: err}
		}(p)
	}

	var lastErr error
	for range cc.proxies {
		res := <-results
		if res.err != nil {
			lastErr = res.err
			continue
		}

		page, err := cc.parse(strings.NewReader(res.html), target)
		if err != nil {
			metrics.RecordProxyAttempt(res.proxy, "unparsable")
			lastErr = fault.Network(err, "parsing page from %s", res.proxy)
			continue
		}
		cancel()
		metrics.RecordProxyAttempt(res.proxy, "win")
		cc.logger.Debug("Proxy won", zap.String("proxy", res.proxy), zap.String("target", target))
		return page, nil
	}

	cc.logger.Warn("All proxies failed", zap.String("target", target), zap.Error(lastErr))
	return nil, fault.Network(lastErr, "all %d proxies failed for %s", len(cc.proxies), target)
}

func (cc *ContentClient) try(ctx context.Context, p Proxy, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cc.proxyTimeout)
	defer cancel()

	html, err := cc.fetch(ctx, p, target)
	if err != nil {
		metrics.RecordProxyAttempt(p.Name, outcome(ctx, err))
		return "", err
	}
	return html, nil
}

func (cc *ContentClient) fetch(ctx context.Context, p Proxy, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Expand(target), nil)
	if err != nil {
		return "", fmt.Errorf("%s: building request: %w", p.Name, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := cc.client.Do(req)
	if err != nil {
		return "", fault.Network(err, "%s", p.Name)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fault.Status(resp.StatusCode, p.Name)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, cc.maxBody))
	if err != nil {
		return "", fault.Network(err, "%s: reading body", p.Name)
	}

	pl := payload{kind: kindOf(resp.Header.Get("Content-Type")), body: body}
	html, err := pl.html(p.Field)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Name, err)
	}
	if len(html) <= cc.minPayload {
		return "", fault.Empty("%s: payload of %d bytes is too short", p.Name, len(html))
	}
	return html, nil
}

func outcome(ctx context.Context, err error) string {
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		return "timeout"
	case ctx.Err() == context.Canceled:
		return "cancelled"
	case fault.KindOf(err) == fault.KindEmptyResult:
		return "short"
	default:
		return "error"
	}
}
