// Package fakeapi provides a fake notes API server for testing purposes.
// It keeps users, notes, media and comments in memory and answers the v2 and
// v1 REST surfaces over plain HTTP.
//
// To flexibly inject failures, you can configure stub responses that match
// specific methods and paths, along with failure configurations that specify
// how the server fails (e.g., delays, invalid responses, dropped connections).
package fakeapi

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/catchnotes/catchapi.go/internal/codec"
	"github.com/catchnotes/catchapi.go/pkg/jsoncodec"
)

// cryptoRandInt64 generates a cryptographically secure random int64 in [0, max)
func cryptoRandInt64(rMax int64) int64 {
	if rMax <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(rMax))
	return n.Int64()
}

// cryptoRandFloat64 generates a cryptographically secure random float64 in [0.0, 1.0)
func cryptoRandFloat64() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<53))
	return float64(n.Int64()) / float64(1<<53)
}

// FailureType represents the type of failure to inject during request processing
type FailureType string

const (
	// FailureNone indicates no failure injection
	FailureNone FailureType = "none"
	// FailureRequestDelay delays before processing the request
	FailureRequestDelay FailureType = "request_delay"
	// FailureInvalidResponse answers 200 with a body that is not JSON
	FailureInvalidResponse FailureType = "invalid_response"
	// FailureDropConnection closes the underlying network connection without a response
	FailureDropConnection FailureType = "drop_connection"
	// FailureStatus answers with StatusCode and an error body
	FailureStatus FailureType = "status"
)

// RequestMatcher defines criteria for matching incoming requests.
type RequestMatcher struct {
	// Method is the HTTP method to match
	Method string
	// Path is the URL path to match, without the query
	Path string
	// Matcher is an optional function to match on anything else in the
	// request. If nil, only the method and path are used for matching.
	Matcher func(r *http.Request) bool
}

// StubResponse defines a pre-configured response for matching requests.
type StubResponse struct {
	// Matcher determines which requests this stub should handle
	Matcher RequestMatcher
	// StatusCode defaults to 200
	StatusCode int
	// Body is written verbatim when it is a []byte or string and encoded as
	// JSON otherwise
	Body any
	// Failures defines failure injection configurations for this response
	Failures []FailureConfig
}

// FailureConfig defines how and when to inject a specific failure type
type FailureConfig struct {
	// Type specifies the type of failure to inject
	Type FailureType
	// Probability of triggering this failure (0.0 to 1.0)
	Probability float64
	// MinDelay is the minimum delay for FailureRequestDelay
	MinDelay time.Duration
	// MaxDelay is the maximum delay for FailureRequestDelay
	MaxDelay time.Duration
	// StatusCode is the status for FailureStatus
	StatusCode int
}

// RecordedRequest is a request as the server received it.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is a fake notes API server with support for stub responses and
// failure injection.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server
	router   *mux.Router
	log      zerolog.Logger
	codec    codec.Codec

	mu             sync.RWMutex
	stubResponses  []StubResponse
	globalFailures []FailureConfig
	requests       []RecordedRequest
	store          *store

	// NoTokens makes login answer without an access token.
	NoTokens bool
}

// NewServer creates a new fake notes API server.
// Use "127.0.0.1:0" to bind to a random available port.
func NewServer(addr string) *Server {
	s := &Server{
		addr:  addr,
		log:   zerolog.Nop(),
		codec: jsoncodec.NewSonic(),
		store: newStore(),
	}
	s.router = s.routes()
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetLogger makes the server log every request to l.
func (s *Server) SetLogger(l zerolog.Logger) {
	s.log = l
}

// SetNow replaces the clock used for timestamps.
func (s *Server) SetNow(now func() time.Time) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.now = now
}

// AddStubResponse adds a stub response configuration to the server.
// Stub responses are matched in the order they were added.
func (s *Server) AddStubResponse(stub StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubResponses = append(s.stubResponses, stub)
}

// ClearStubResponses removes every stub response.
func (s *Server) ClearStubResponses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubResponses = nil
}

// SetGlobalFailures sets failure configurations that apply to all requests.
// These are checked before stub-specific failures.
func (s *Server) SetGlobalFailures(failures []FailureConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalFailures = failures
}

// Requests returns the requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, or false when there is none.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Start starts the server and begins accepting connections.
// Returns an error if the server cannot bind to the specified address.
func (s *Server) Start() error {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("fake api server stopped")
		}
	}()

	return nil
}

// Stop shuts down the server and closes all connections
func (s *Server) Stop() error {
	return s.server.Close()
}

// Address returns the actual address the server is listening on.
// This is useful when using "127.0.0.1:0" to get the assigned port.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// URL returns the base URL of the server.
func (s *Server) URL() string {
	return "http://" + s.Address()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	globalFailures := s.globalFailures
	var matchedStub *StubResponse
	for i := range s.stubResponses {
		if s.stubResponses[i].Matcher.matches(r) {
			stub := s.stubResponses[i]
			matchedStub = &stub
			break
		}
	}
	s.mu.Unlock()

	s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("fake api request")

	for _, failure := range globalFailures {
		if shouldTriggerFailure(failure.Probability) && s.applyFailure(w, failure) {
			return
		}
	}

	if matchedStub != nil {
		for _, failure := range matchedStub.Failures {
			if shouldTriggerFailure(failure.Probability) && s.applyFailure(w, failure) {
				return
			}
		}
		status := matchedStub.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		switch b := matchedStub.Body.(type) {
		case []byte:
			w.WriteHeader(status)
			_, _ = w.Write(b)
		case string:
			w.WriteHeader(status)
			_, _ = io.WriteString(w, b)
		default:
			s.writeJSON(w, status, b)
		}
		return
	}

	s.router.ServeHTTP(w, r)
}

// applyFailure injects failure and reports whether the response has been
// written.
func (s *Server) applyFailure(w http.ResponseWriter, failure FailureConfig) bool {
	switch failure.Type {
	case FailureRequestDelay:
		time.Sleep(randomDuration(failure.MinDelay, failure.MaxDelay))
		return false
	case FailureInvalidResponse:
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "<html>not json</html>")
		return true
	case FailureDropConnection:
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return true
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return true
	case FailureStatus:
		status := failure.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		s.writeError(w, status, http.StatusText(status))
		return true
	default:
		return false
	}
}

func (m RequestMatcher) matches(r *http.Request) bool {
	if m.Method != "" && m.Method != r.Method {
		return false
	}
	if m.Path != "" && m.Path != r.URL.Path {
		return false
	}
	return m.Matcher == nil || m.Matcher(r)
}

// shouldTriggerFailure determines if a failure should be triggered based on probability
func shouldTriggerFailure(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	return cryptoRandFloat64() < probability
}

// randomDuration returns a random duration between dMin and dMax
func randomDuration(dMin, dMax time.Duration) time.Duration {
	if dMax <= dMin {
		return dMin
	}
	return dMin + time.Duration(cryptoRandInt64(int64(dMax-dMin)))
}

// MatchPath creates a RequestMatcher that matches method and path.
func MatchPath(method, path string) RequestMatcher {
	return RequestMatcher{Method: method, Path: path}
}

// SimpleStubResponse creates a stub answering method and path with body.
func SimpleStubResponse(method, path string, body any) StubResponse {
	return StubResponse{
		Matcher: MatchPath(method, path),
		Body:    body,
	}
}

// ErrorStubResponse creates a stub answering method and path with status and
// an error body.
func ErrorStubResponse(method, path string, status int, message string) StubResponse {
	return StubResponse{
		Matcher:    MatchPath(method, path),
		StatusCode: status,
		Body:       map[string]string{"error": message},
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := s.codec.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
