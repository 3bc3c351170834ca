package handlers

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	appmw "github.com/kravietz/reporter/internal/http/middleware"
)

// serve runs the full middleware-wrapped router on an in-memory listener
// and returns a client dialing into it.
func serve(t *testing.T, store ReportStore) *http.Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	t.Cleanup(func() { _ = ln.Close() })

	handler := appmw.SecurityHeaders(NewRouter(store).Handler)
	go func() { _ = fasthttp.Serve(ln, handler) }()

	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return ln.Dial()
			},
		},
	}
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func post(t *testing.T, c *http.Client, url, body string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Post(url, "application/reports+json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestRobotsTxt(t *testing.T) {
	client := serve(t, &fakeStore{})

	resp, body := get(t, client, "http://reporter/robots.txt")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body != "User-agent: *\nDisallow: /" {
		t.Errorf("body = %q", body)
	}
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	client := serve(t, &fakeStore{})

	for _, url := range []string{
		"http://reporter/robots.txt",
		"http://reporter/no/such/path",
	} {
		resp, _ := get(t, client, url)
		if got := resp.Header.Get("X-Robots-Tag"); got != "noindex,nofollow,noarchive" {
			t.Errorf("%s: X-Robots-Tag = %q", url, got)
		}
		if got := resp.Header.Get("Content-Security-Policy"); got != "default-src 'none'" {
			t.Errorf("%s: Content-Security-Policy = %q", url, got)
		}
	}
}

func TestUnknownPathIs404(t *testing.T) {
	client := serve(t, &fakeStore{})

	resp, body := get(t, client, "http://reporter/no/such/path")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body != "Not found" {
		t.Errorf("body = %q, want Not found", body)
	}
}

func TestDisallowedMethodIs404(t *testing.T) {
	client := serve(t, &fakeStore{})

	req, err := http.NewRequest(http.MethodDelete, "http://reporter/aaa", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (no 405 in this contract)", resp.StatusCode)
	}
}

func TestOversizedTagIs404(t *testing.T) {
	client := serve(t, &fakeStore{})

	resp, body := post(t, client, "http://reporter/this-tag-is-longer-than-twenty", nelBody)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body != "Not found" {
		t.Errorf("body = %q", body)
	}
}

func TestReportRoundTrip(t *testing.T) {
	store := &fakeStore{}
	client := serve(t, store)

	resp, _ := post(t, client, "http://reporter/aaa", nelBody)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	calls := store.saved()
	if len(calls) != 1 {
		t.Fatalf("save calls = %d, want 1", len(calls))
	}
	if calls[0].tag != "aaa" {
		t.Errorf("tag = %q, want aaa", calls[0].tag)
	}
	if calls[0].ua == "" {
		t.Error("user agent header from the client should be recorded")
	}
}

func TestHealthz(t *testing.T) {
	client := serve(t, &fakeStore{})

	resp, body := get(t, client, "http://reporter/healthz")
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestMetricsEndpointFiltersByTag(t *testing.T) {
	store := &fakeStore{}
	client := serve(t, store)

	post(t, client, "http://reporter/tag-one", nelBody)
	post(t, client, "http://reporter/tag-two", nelBody)

	resp, body := get(t, client, "http://reporter/metrics?tag=tag-one")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, `tag="tag-one"`) {
		t.Error("filtered exposition should include tag-one series")
	}
	if strings.Contains(body, `tag="tag-two"`) {
		t.Error("filtered exposition should not include tag-two series")
	}
}
