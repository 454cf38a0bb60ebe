package source

import (
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the metadata extracted from a fetched content page.
type Page struct {
	Title       string
	Description string
	Image       string
	URL         string
	PublishedAt time.Time
}

// candidate is one (selector, attribute) place a value may live. An empty
// attr means the element text.
type candidate struct {
	selector string
	attr     string
}

var (
	titleCandidates = []candidate{
		{`meta[property="og:title"]`, "content"},
		{`meta[name="twitter:title"]`, "content"},
		{`title`, ""},
	}
	descriptionCandidates = []candidate{
		{`meta[property="og:description"]`, "content"},
		{`meta[name="twitter:description"]`, "content"},
		{`meta[name="description"]`, "content"},
	}
	imageCandidates = []candidate{
		{`meta[property="og:image"]`, "content"},
		{`meta[property="og:image:secure_url"]`, "content"},
		{`meta[name="twitter:image"]`, "content"},
		{`meta[name="twitter:image:src"]`, "content"},
	}
	urlCandidates = []candidate{
		{`meta[property="og:url"]`, "content"},
	}
	publishedCandidates = []candidate{
		{`meta[property="article:published_time"]`, "content"},
		{`meta[property="article:published"]`, "content"},
		{`time[datetime]`, "datetime"},
		{`meta[name="publish_date"]`, "content"},
	}
)

// first returns the first non-empty value among the candidates.
func first(doc *goquery.Document, cands []candidate) string {
	for _, c := range cands {
		sel := doc.Find(c.selector).First()
		if sel.Length() == 0 {
			continue
		}
		var v string
		if c.attr == "" {
			v = sel.Text()
		} else {
			v, _ = sel.Attr(c.attr)
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ParsePage extracts page metadata from HTML. target is the URL the page was
// requested for; it backs the url and published fields when the document has
// no value for them.
func ParsePage(r io.Reader, target string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	p := &Page{
		Title:       first(doc, titleCandidates),
		Description: first(doc, descriptionCandidates),
		Image:       first(doc, imageCandidates),
		URL:         first(doc, urlCandidates),
	}
	if p.URL == "" {
		p.URL = target
	}

	if raw := first(doc, publishedCandidates); raw != "" {
		p.PublishedAt = parseTime(raw)
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = TimestampFromURL(target)
	}
	return p, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

var activityTimestamp = regexp.MustCompile(`activity-(\d{10,})`)

// TimestampFromURL recovers a publish time from an "activity-<digits>" token.
// 13 or more digits are read as milliseconds (first 13 digits), exactly 10 as
// seconds; any other length yields the zero time.
func TimestampFromURL(u string) time.Time {
	m := activityTimestamp.FindStringSubmatch(u)
	if m == nil {
		return time.Time{}
	}
	digits := m[1]
	switch {
	case len(digits) >= 13:
		ms, err := strconv.ParseInt(digits[:13], 10, 64)
		if err != nil || ms <= 0 {
			return time.Time{}
		}
		return time.UnixMilli(ms).UTC()
	case len(digits) == 10:
		sec, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || sec <= 0 {
			return time.Time{}
		}
		return time.Unix(sec, 0).UTC()
	default:
		return time.Time{}
	}
}
