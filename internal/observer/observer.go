package observer

import "errors"

// Response is the part of an HTTP response an observer needs.
type Response struct {
	StatusCode   int
	ReasonPhrase string
}

// Observer receives crawl events. For one crawl session the engine calls
// WillCrawl and HasBeenCrawled any number of times, then FinishedCrawling
// exactly once after every HasBeenCrawled call has returned. Implementations
// may be invoked from multiple goroutines.
type Observer interface {
	// WillCrawl is called before a request for url is issued.
	WillCrawl(url string)
	// HasBeenCrawled is called once per finished request attempt. A nil resp
	// means no response was obtained; foundOn is empty for seed URLs.
	HasBeenCrawled(url string, resp *Response, foundOn string)
	// FinishedCrawling is called when the crawl has ended.
	FinishedCrawling() error
}

type multi struct {
	observers []Observer
}

// Multi returns an Observer that forwards every event to each of observers in
// order. Nil entries are skipped. FinishedCrawling reaches every observer even
// when an earlier one fails and joins their errors.
func Multi(observers ...Observer) Observer {
	out := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return &multi{observers: out}
}

func (m *multi) WillCrawl(url string) {
	for _, o := range m.observers {
		o.WillCrawl(url)
	}
}

func (m *multi) HasBeenCrawled(url string, resp *Response, foundOn string) {
	for _, o := range m.observers {
		o.HasBeenCrawled(url, resp, foundOn)
	}
}

func (m *multi) FinishedCrawling() error {
	var errs []error
	for _, o := range m.observers {
		if err := o.FinishedCrawling(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
