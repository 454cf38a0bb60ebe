package source

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/folio/internal/fault"
)

var postHTML = `<html><head>
<meta property="og:title" content="A post about caching">
<meta property="og:description" content="Stale data beats no data.">
<meta property="og:image" content="https://img.example.com/post.png">
</head><body>` + strings.Repeat("padding ", 20) + `</body></html>`

func TestExpand(t *testing.T) {
	target := "https://example.com/a?b=c"
	assert.Equal(t, "https://proxy/get?url=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc", Expand("https://proxy/get?url={url}", target))
	assert.Equal(t, "https://proxy/https://example.com/a?b=c", Expand("https://proxy/{raw}", target))
}

func TestPayloadHTML(t *testing.T) {
	tests := []struct {
		name    string
		p       payload
		field   string
		want    string
		wantErr bool
	}{
		{"text", payload{kind: payloadText, body: []byte("<p>x</p>")}, "", "<p>x</p>", false},
		{"json default field", payload{kind: payloadJSON, body: []byte(`{"contents":"<p>x</p>"}`)}, "", "<p>x</p>", false},
		{"json custom field", payload{kind: payloadJSON, body: []byte(`{"body":"<p>y</p>"}`)}, "body", "<p>y</p>", false},
		{"json string", payload{kind: payloadJSON, body: []byte(`"<p>z</p>"`)}, "", "<p>z</p>", false},
		{"json missing field", payload{kind: payloadJSON, body: []byte(`{"status":1}`)}, "", "", true},
		{"json garbage", payload{kind: payloadJSON, body: []byte(`<html>`)}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.html(tt.field)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchPageRaceCancelsLosers(t *testing.T) {
	var cancelled atomic.Int32
	slow := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			cancelled.Add(1)
		case <-time.After(5 * time.Second):
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/p1", slow)
	mux.HandleFunc("/p2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(postHTML))
	})
	mux.HandleFunc("/p3", slow)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cc := NewContentClient([]Proxy{
		{Name: "p1", URL: srv.URL + "/p1?u={url}"},
		{Name: "p2", URL: srv.URL + "/p2?u={url}"},
		{Name: "p3", URL: srv.URL + "/p3?u={url}"},
	}, WithHTTPClient(srv.Client()), WithProxyTimeout(5*time.Second))

	start := time.Now()
	page, err := cc.FetchPage(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "winner should not wait for slow proxies")
	assert.Equal(t, "A post about caching", page.Title)
	assert.Equal(t, "https://img.example.com/post.png", page.Image)

	assert.Eventually(t, func() bool { return cancelled.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestFetchPageJSONProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.com/post", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(map[string]string{"contents": postHTML})
	}))
	defer srv.Close()

	cc := NewContentClient([]Proxy{{Name: "allorigins", URL: srv.URL + "/get?url={url}"}}, WithHTTPClient(srv.Client()))
	page, err := cc.FetchPage(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "Stale data beats no data.", page.Description)
}

func TestFetchPageShortPayloadLoses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	})
	mux.HandleFunc("/full", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(postHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cc := NewContentClient([]Proxy{
		{Name: "short", URL: srv.URL + "/short?u={url}"},
		{Name: "full", URL: srv.URL + "/full?u={url}"},
	}, WithHTTPClient(srv.Client()))

	page, err := cc.FetchPage(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "A post about caching", page.Title)
}

func TestFetchPageUnparsableWinnerKeepsRacing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/garbled", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>" + strings.Repeat("garbled ", 40) + "</html>"))
	})
	mux.HandleFunc("/full", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(postHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cc := NewContentClient([]Proxy{
		{Name: "garbled", URL: srv.URL + "/garbled?u={url}"},
		{Name: "full", URL: srv.URL + "/full?u={url}"},
	}, WithHTTPClient(srv.Client()))
	cc.parse = func(r io.Reader, target string) (*Page, error) {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if strings.Contains(string(body), "garbled") {
			return nil, errors.New("unexpected document")
		}
		return ParsePage(strings.NewReader(string(body)), target)
	}

	page, err := cc.FetchPage(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "A post about caching", page.Title)
}

func TestFetchPageAllProxiesFail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/hang", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cc := NewContentClient([]Proxy{
		{Name: "down", URL: srv.URL + "/down?u={url}"},
		{Name: "hang", URL: srv.URL + "/hang?u={url}"},
	}, WithHTTPClient(srv.Client()), WithProxyTimeout(100*time.Millisecond))

	page, err := cc.FetchPage(context.Background(), "https://example.com/post")
	assert.Nil(t, page)
	assert.Equal(t, fault.KindNetwork, fault.KindOf(err))
}

func TestFetchPageNoProxies(t *testing.T) {
	_, err := NewContentClient(nil).FetchPage(context.Background(), "https://example.com")
	assert.Equal(t, fault.KindNetwork, fault.KindOf(err))
}
