package observer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMultiForwardsEventsInOrder ensures each observer sees every event.
func TestMultiForwardsEventsInOrder(t *testing.T) {
	t.Parallel()

	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	var log []string
	first.log, second.log = &log, &log

	m := Multi(first, nil, second)
	m.WillCrawl("http://a.example")
	m.HasBeenCrawled("http://a.example", &Response{StatusCode: 200, ReasonPhrase: "OK"}, "")
	require.NoError(t, m.FinishedCrawling())

	require.Equal(t, []string{
		"first:will:http://a.example",
		"second:will:http://a.example",
		"first:crawled:http://a.example",
		"second:crawled:http://a.example",
		"first:finished",
		"second:finished",
	}, log)
}

// TestMultiJoinsFinishErrors verifies a failing observer does not stop the others.
func TestMultiJoinsFinishErrors(t *testing.T) {
	t.Parallel()

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	var log []string
	a := &recordingObserver{name: "a", log: &log, finishErr: errA}
	ok := &recordingObserver{name: "ok", log: &log}
	b := &recordingObserver{name: "b", log: &log, finishErr: errB}

	err := Multi(a, ok, b).FinishedCrawling()
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	require.Equal(t, []string{"a:finished", "ok:finished", "b:finished"}, log)
}

type recordingObserver struct {
	name      string
	log       *[]string
	finishErr error
}

func (r *recordingObserver) WillCrawl(url string) {
	*r.log = append(*r.log, r.name+":will:"+url)
}

func (r *recordingObserver) HasBeenCrawled(url string, _ *Response, _ string) {
	*r.log = append(*r.log, r.name+":crawled:"+url)
}

func (r *recordingObserver) FinishedCrawling() error {
	*r.log = append(*r.log, r.name+":finished")
	return r.finishErr
}
