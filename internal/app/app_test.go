package app

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/crawl-status-check/internal/config"
	"github.com/JakeFAU/crawl-status-check/internal/reporter"
)

// TestRunWritesConsoleAndReportFile crawls a tiny site end to end.
func TestRunWritesConsoleAndReportFile(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	path := filepath.Join(t.TempDir(), "report.txt")
	cfg := testConfig()
	cfg.Report.File = path
	cfg.Logging.Outcomes = true

	var out bytes.Buffer
	a, err := New(cfg, &out, nil)
	require.NoError(t, err)
	defer a.Close()
	require.NotEmpty(t, a.SessionID())

	require.NoError(t, a.Run(context.Background(), []string{srv.URL + "/"}))

	console := out.String()
	require.Contains(t, console, "200 OK - "+srv.URL+"/")
	require.Contains(t, console, "404 Not Found - "+srv.URL+"/gone (found on "+srv.URL+"/)")
	require.Contains(t, console, "Crawling summary")
	require.Contains(t, console, "Crawled 2 url(s) with statuscode 200")
	require.Contains(t, console, "Crawled 1 url(s) with statuscode 404")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)
	require.Contains(t, report, "Status: 404\n"+srv.URL+"/gone\n")
	require.NotContains(t, report, "Status: 200")

	require.Equal(t, reporter.StateFinalized, a.Reporter().State())
}

// TestRunServesMetricsDuringCrawl exposes outcome counters while the crawl runs.
func TestRunServesMetricsDuringCrawl(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	scraped := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/slow" {
			scraped <- scrape(t, "http://"+addr+"/metrics")
		}
		if r.URL.Path == "/" {
			fmt.Fprint(w, `<a href="/slow">slow</a>`)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.Metrics.ListenAddr = addr
	a, err := New(cfg, &bytes.Buffer{}, nil)
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background(), []string{srv.URL + "/"}))
	body := <-scraped
	require.Contains(t, body, `statuscheck_outcomes_total{category="ok",status="200"} 1`)
}

// TestRunFailsWhenMetricsAddressTaken reports the bind error.
func TestRunFailsWhenMetricsAddressTaken(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := newSite(t)
	cfg := testConfig()
	cfg.Metrics.ListenAddr = ln.Addr().String()
	a, err := New(cfg, &bytes.Buffer{}, nil)
	require.NoError(t, err)

	err = a.Run(context.Background(), []string{srv.URL + "/"})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "listen metrics"), err.Error())
}

// TestRunReturnsReportFileErrors surfaces persistence failures to the caller.
func TestRunReturnsReportFileErrors(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	cfg := testConfig()
	cfg.Report.File = filepath.Join(t.TempDir(), "missing", "report.txt")
	var out bytes.Buffer
	a, err := New(cfg, &out, nil)
	require.NoError(t, err)

	require.ErrorIs(t, a.Run(context.Background(), []string{srv.URL + "/"}), os.ErrNotExist)
	require.Contains(t, out.String(), "Crawling summary")
}

func testConfig() config.Config {
	return config.Config{
		Crawl: config.CrawlConfig{
			Concurrency:     2,
			Timeout:         2 * time.Second,
			UserAgent:       "statuscheck-test",
			FollowRedirects: true,
		},
	}
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<a href="/fine">fine</a><a href="/gone">gone</a>`)
		case "/fine":
			fmt.Fprint(w, `<p>fine</p>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func scrape(t *testing.T, url string) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(resp.Body)
			_ = resp.Body.Close()
			return buf.String()
		}
		time.Sleep(20 * time.Millisecond)
	}
	return ""
}
