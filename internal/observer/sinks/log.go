package sinks

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/JakeFAU/crawl-status-check/internal/observer"
	"github.com/JakeFAU/crawl-status-check/internal/status"
)

// LogObserver emits one structured record per crawl outcome. It is useful
// when the console report is not captured, e.g. in CI logs.
type LogObserver struct {
	logger *zap.Logger
}

var _ observer.Observer = (*LogObserver)(nil)

// NewLogObserver wires a Zap logger to the observer interface.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{logger: logger}
}

// WillCrawl logs the pending request at debug level.
func (s *LogObserver) WillCrawl(url string) {
	s.logger.Debug("crawl request queued", zap.String("url", url))
}

// HasBeenCrawled logs the outcome; errors are logged at warn level.
func (s *LogObserver) HasBeenCrawled(url string, resp *observer.Response, foundOn string) {
	code := status.Unresponsive
	if resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	category := status.Classify(code)
	fields := []zap.Field{
		zap.String("url", url),
		zap.String("status", code),
		zap.String("category", string(category)),
	}
	if foundOn != "" {
		fields = append(fields, zap.String("found_on", foundOn))
	}
	if category == status.Error {
		s.logger.Warn("crawl outcome", fields...)
		return
	}
	s.logger.Info("crawl outcome", fields...)
}

// FinishedCrawling logs the end of the crawl.
func (s *LogObserver) FinishedCrawling() error {
	s.logger.Info("crawl finished")
	return nil
}
