// Package reporter implements the crawl observer that prints a live line per
// crawled URL and, once the crawl ends, a summary grouped by status code that
// can also be persisted to a report file.
package reporter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/crawl-status-check/internal/clock/system"
	"github.com/JakeFAU/crawl-status-check/internal/console"
	"github.com/JakeFAU/crawl-status-check/internal/observer"
	"github.com/JakeFAU/crawl-status-check/internal/status"
)

const timestampLayout = "2006-01-02 15:04:05"

// ErrAlreadyFinished is returned when FinishedCrawling is called twice.
var ErrAlreadyFinished = errors.New("crawl reporter already finished")

// Printer is the live console sink.
type Printer interface {
	Line(style console.Style, text string) error
	Blank() error
}

// Clock returns the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// Options configures a Reporter. They are fixed for the reporter's lifetime.
type Options struct {
	// ReportFile receives the non-OK buckets when the crawl finishes. Empty
	// disables file output.
	ReportFile string
	// Overwrite truncates ReportFile instead of appending to it.
	Overwrite bool
	Clock     Clock
	Logger    *zap.Logger
}

// State is the reporter lifecycle stage.
type State int

// Lifecycle stages.
const (
	StateIdle State = iota
	StateReceiving
	StateFinalized
)

// String returns the lifecycle stage name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReceiving:
		return "receiving"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Bucket is every URL observed with one status key, in arrival order.
type Bucket struct {
	Status   string
	Category status.Category
	URLs     []string
}

// Reporter accumulates crawl outcomes for exactly one crawl session. All
// methods are safe for concurrent use.
type Reporter struct {
	out    Printer
	opts   Options
	logger *zap.Logger

	mu    sync.Mutex
	state State
	index map[string][]string
}

var _ observer.Observer = (*Reporter)(nil)

// New builds a Reporter writing live lines to out.
func New(out Printer, opts Options) *Reporter {
	if opts.Clock == nil {
		opts.Clock = system.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		out:    out,
		opts:   opts,
		logger: logger,
		index:  make(map[string][]string),
	}
}

// WillCrawl is a no-op hook kept for pre-request reporting.
func (r *Reporter) WillCrawl(url string) {
	r.logger.Debug("will crawl", zap.String("url", url))
}

// HasBeenCrawled prints the outcome line and records url under its status.
func (r *Reporter) HasBeenCrawled(url string, resp *observer.Response, foundOn string) {
	code, reason := status.Unresponsive, ""
	if resp != nil {
		code = strconv.Itoa(resp.StatusCode)
		reason = resp.ReasonPhrase
	}
	category := status.Classify(code)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateFinalized {
		r.logger.Warn("outcome received after crawl finished", zap.String("url", url), zap.String("status", code))
		return
	}
	r.state = StateReceiving

	line := fmt.Sprintf("[%s] %s %s - %s", r.opts.Clock.Now().Format(timestampLayout), code, reason, url)
	if category == status.Error && foundOn != "" {
		line += " (found on " + foundOn + ")"
	}
	r.emit(console.StyleFor(category), line)

	r.index[code] = append(r.index[code], url)
}

// FinishedCrawling prints the summary and writes the report file, if one is
// configured. Console output is complete before any file error is returned.
func (r *Reporter) FinishedCrawling() error {
	r.mu.Lock()
	if r.state == StateFinalized {
		r.mu.Unlock()
		return ErrAlreadyFinished
	}
	r.state = StateFinalized
	buckets := r.snapshot()

	report := []string{"", "Crawling summary", "----------------"}
	r.blank()
	r.emit(console.StylePlain, "Crawling summary")
	r.emit(console.StylePlain, "----------------")
	for _, b := range buckets {
		r.emit(console.StyleFor(b.Category), summaryLine(b))
		if r.opts.ReportFile != "" && b.Category != status.OK {
			report = append(report, "Status: "+b.Status)
			report = append(report, b.URLs...)
		}
	}
	report = append(report, "")
	r.blank()
	r.mu.Unlock()

	if r.opts.ReportFile == "" {
		return nil
	}
	data := []byte(strings.Join(report, lineSeparator))
	if err := writeReportFile(r.opts.ReportFile, r.opts.Overwrite, data); err != nil {
		r.logger.Error("report file write failed", zap.String("path", r.opts.ReportFile), zap.Error(err))
		return err
	}
	r.logger.Info("report file written",
		zap.String("path", r.opts.ReportFile),
		zap.Bool("overwrite", r.opts.Overwrite),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Summary returns the buckets recorded so far, sorted by status key.
func (r *Reporter) Summary() []Bucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// State returns the current lifecycle stage.
func (r *Reporter) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// snapshot requires r.mu.
func (r *Reporter) snapshot() []Bucket {
	keys := make([]string, 0, len(r.index))
	for k := range r.index {
		keys = append(keys, k)
	}
	status.SortKeys(keys)
	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{
			Status:   k,
			Category: status.Classify(k),
			URLs:     append([]string(nil), r.index[k]...),
		})
	}
	return out
}

func summaryLine(b Bucket) string {
	count := len(b.URLs)
	switch {
	case b.Status == status.Unresponsive:
		return fmt.Sprintf("%d url(s) did have unresponsive host(s)", count)
	case status.IsNumeric(b.Status):
		return fmt.Sprintf("Crawled %d url(s) with statuscode %s", count, b.Status)
	default:
		return fmt.Sprintf("Crawled %d url(s) with status %s", count, b.Status)
	}
}

func (r *Reporter) emit(style console.Style, text string) {
	if err := r.out.Line(style, text); err != nil {
		r.logger.Warn("console write failed", zap.Error(err))
	}
}

func (r *Reporter) blank() {
	if err := r.out.Blank(); err != nil {
		r.logger.Warn("console write failed", zap.Error(err))
	}
}
