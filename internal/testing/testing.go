// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
)

// CountingHandler replies with a fixed status and body and counts requests per path.
type CountingHandler struct {
	Status int
	Body   string

	mu     sync.Mutex
	total  int
	byPath map[string]int
}

func (h *CountingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.total++
	if h.byPath == nil {
		h.byPath = make(map[string]int)
	}
	if r.Method == http.MethodGet {
		h.byPath[r.URL.Path]++
	}
	h.mu.Unlock()

	status := h.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, h.Body)
}

// Calls returns the number of requests served, any method.
func (h *CountingHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

// CallsFor returns the number of GET requests served for path.
func (h *CountingHandler) CallsFor(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.byPath[path]
}

// FailingStore is a key-value store double whose operations can be made to fail.
type FailingStore struct {
	mu      sync.Mutex
	items   map[string]string
	FailGet bool
	FailSet bool
	FailDel bool
	Sets    int
}

func NewFailingStore() *FailingStore {
	return &FailingStore{items: make(map[string]string)}
}

var ErrStoreFailure = errors.New("store failure")

func (s *FailingStore) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet {
		return "", false, ErrStoreFailure
	}
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *FailingStore) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet {
		return ErrStoreFailure
	}
	s.Sets++
	s.items[key] = value
	return nil
}

func (s *FailingStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDel {
		return ErrStoreFailure
	}
	delete(s.items, key)
	return nil
}

func (s *FailingStore) Close() error { return nil }

// SetFailures toggles failures after construction without racing background writers.
func (s *FailingStore) SetFailures(get, set, del bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailGet, s.FailSet, s.FailDel = get, set, del
}

// Item reads a value without failure injection.
func (s *FailingStore) Item(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
