// Package collyfetcher drives a crawl with gocolly and reports every request
// outcome to an observer.Observer.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/crawl-status-check/internal/observer"
)

const (
	foundOnKey     = "found_on"
	reportedKey    = "reported"
	defaultTimeout = 10 * time.Second
)

// Config controls collector behavior.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	Concurrency int
	// MaxDepth limits link depth from the seeds; 0 means unlimited.
	MaxDepth int
	// InternalOnly restricts the crawl to the seed hosts.
	InternalOnly bool
	// FollowRedirects queues the Location target of 3xx responses.
	FollowRedirects bool
}

// Engine crawls seed URLs and forwards collector callbacks to an observer.
type Engine struct {
	cfg       Config
	observer  observer.Observer
	logger    *zap.Logger
	transport http.RoundTripper
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
	OnHTML(string, colly.HTMLCallback)
}

// New builds an Engine.
func New(cfg Config, obs observer.Observer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		observer:  obs,
		logger:    logger,
		transport: newHTTPTransport(),
	}
}

// Run crawls from seeds until the collector is drained, then calls
// FinishedCrawling exactly once. Cancelling ctx stops new requests from being
// issued; results gathered so far are still flushed.
func (e *Engine) Run(ctx context.Context, seeds []string) error {
	if len(seeds) == 0 {
		return errors.New("at least one seed url is required")
	}
	hosts, err := seedHosts(seeds)
	if err != nil {
		return err
	}
	collector, err := e.buildCollector(hosts)
	if err != nil {
		return err
	}
	e.configureCollectorHooks(ctx, collector)

	for _, seed := range seeds {
		if err := collector.Visit(seed); err != nil {
			e.logger.Warn("Failed to visit seed", zap.String("url", seed), zap.Error(err))
		}
	}
	collector.Wait()

	finishErr := e.observer.FinishedCrawling()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(fmt.Errorf("crawl canceled: %w", ctxErr), finishErr)
	}
	if finishErr != nil {
		return fmt.Errorf("finish crawl: %w", finishErr)
	}
	return nil
}

func (e *Engine) buildCollector(hosts []string) (*colly.Collector, error) {
	opts := []colly.CollectorOption{
		colly.Async(true),
		colly.MaxDepth(e.cfg.MaxDepth),
		colly.ParseHTTPErrorResponse(),
	}
	if e.cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(e.cfg.UserAgent))
	}
	if e.cfg.InternalOnly {
		opts = append(opts, colly.AllowedDomains(hosts...))
	}
	collector := colly.NewCollector(opts...)

	timeout := e.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// Redirects are reported as they are, never followed by the client.
	collector.SetClient(&http.Client{
		Transport: e.transport,
		Timeout:   timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	})

	parallelism := e.cfg.Concurrency
	if parallelism <= 0 {
		parallelism = 1
	}
	if err := collector.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: parallelism}); err != nil {
		return nil, fmt.Errorf("set collector limits: %w", err)
	}
	return collector, nil
}

func (e *Engine) configureCollectorHooks(ctx context.Context, hooks collectorHooks) {
	hooks.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		e.observer.WillCrawl(r.URL.String())
	})

	hooks.OnResponse(func(r *colly.Response) {
		e.reportResponse(r)
		if e.cfg.FollowRedirects && r.StatusCode >= 300 && r.StatusCode < 400 && r.Headers != nil {
			if location := r.Headers.Get("Location"); location != "" {
				e.enqueue(ctx, r.Request, r.Request.AbsoluteURL(location))
			}
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r == nil || r.Request == nil {
			e.logger.Warn("Request failed without request context", zap.Error(err))
			return
		}
		if r.StatusCode != 0 {
			e.reportResponse(r)
			return
		}
		target := r.Request.URL.String()
		e.logger.Debug("No response", zap.String("url", target), zap.Error(err))
		e.observer.HasBeenCrawled(target, nil, foundOn(r.Request))
	})

	hooks.OnHTML("a[href]", func(el *colly.HTMLElement) {
		if el.Response == nil || el.Response.StatusCode/100 != 2 {
			return
		}
		e.enqueue(ctx, el.Request, el.Request.AbsoluteURL(el.Attr("href")))
	})
}

// reportResponse forwards r at most once per request; colly also routes HTML
// parse failures through OnError after OnResponse has run.
func (e *Engine) reportResponse(r *colly.Response) {
	if ctx := r.Request.Ctx; ctx != nil {
		if ctx.Get(reportedKey) != "" {
			return
		}
		ctx.Put(reportedKey, "1")
	}
	e.observer.HasBeenCrawled(
		r.Request.URL.String(),
		&observer.Response{StatusCode: r.StatusCode, ReasonPhrase: http.StatusText(r.StatusCode)},
		foundOn(r.Request),
	)
}

// enqueue schedules link with a fresh context that remembers the page it was
// found on.
func (e *Engine) enqueue(ctx context.Context, from *colly.Request, link string) {
	if ctx.Err() != nil || !crawlable(link) {
		return
	}
	req, err := from.New(http.MethodGet, link, nil)
	if err != nil {
		e.logger.Debug("Link not queued", zap.String("url", link), zap.Error(err))
		return
	}
	req.Ctx = colly.NewContext()
	req.Ctx.Put(foundOnKey, from.URL.String())
	req.Depth = from.Depth + 1
	if err := req.Do(); err != nil {
		e.logger.Debug("Link not queued", zap.String("url", link), zap.Error(err))
	}
}

func foundOn(r *colly.Request) string {
	if r == nil || r.Ctx == nil {
		return ""
	}
	return r.Ctx.Get(foundOnKey)
}

func crawlable(link string) bool {
	if link == "" {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func seedHosts(seeds []string) ([]string, error) {
	hosts := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		u, err := url.Parse(seed)
		if err != nil {
			return nil, fmt.Errorf("parse seed %q: %w", seed, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
			return nil, fmt.Errorf("seed %q must be an absolute http(s) url", seed)
		}
		hosts = append(hosts, u.Hostname())
	}
	return hosts, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
