package idempotency

import (
	"bytes"
	"net/http"
	"sort"
)

// HeaderPair is a single header entry. Values are raw bytes because HTTP does
// not guarantee header values are valid text, and a list of pairs rather than a
// map because header names may repeat.
type HeaderPair struct {
	Name  string
	Value []byte
}

// CapturedResponse is the storable form of an HTTP response: status code,
// ordered header pairs, and the fully buffered body.
type CapturedResponse struct {
	StatusCode int
	Headers    []HeaderPair
	Body       []byte
}

// Write replays the captured response onto w: every header pair in recorded
// order (repeated names included), then the status code, then the body bytes
// unmodified.
func (c CapturedResponse) Write(w http.ResponseWriter) error {
	for _, pair := range c.Headers {
		w.Header().Add(pair.Name, string(pair.Value))
	}
	w.WriteHeader(c.StatusCode)
	_, err := w.Write(c.Body)
	return err
}

// Recorder is an http.ResponseWriter that buffers the response in memory so it
// can be captured for replay. The whole body is accumulated before anything is
// stored, so responses must fit in memory; do not route large downloads
// through a Recorder.
type Recorder struct {
	header     http.Header
	body       bytes.Buffer
	statusCode int
	wroteCode  bool
}

// NewRecorder returns a Recorder ready to stand in for the real writer.
func NewRecorder() *Recorder {
	return &Recorder{header: make(http.Header)}
}

func (r *Recorder) Header() http.Header {
	return r.header
}

func (r *Recorder) Write(p []byte) (int, error) {
	if !r.wroteCode {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(p)
}

func (r *Recorder) WriteHeader(statusCode int) {
	if r.wroteCode {
		return
	}
	r.statusCode = statusCode
	r.wroteCode = true
}

// Capture drains the recorder into a CapturedResponse. Header names are
// emitted in sorted order (http.Header is a map, so the order headers were set
// in across names is not recoverable); values under one name keep their
// original order, so repeated headers like Set-Cookie round-trip intact.
func (r *Recorder) Capture() CapturedResponse {
	status := r.statusCode
	if !r.wroteCode {
		status = http.StatusOK
	}

	names := make([]string, 0, len(r.header))
	for name := range r.header {
		names = append(names, name)
	}
	sort.Strings(names)

	var pairs []HeaderPair
	for _, name := range names {
		for _, value := range r.header[name] {
			pairs = append(pairs, HeaderPair{Name: name, Value: []byte(value)})
		}
	}

	return CapturedResponse{
		StatusCode: status,
		Headers:    pairs,
		Body:       r.body.Bytes(),
	}
}
