package catchapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchnotes/catchapi.go/internal/fakeapi"
	"github.com/catchnotes/catchapi.go/pkg/connection"
	"github.com/catchnotes/catchapi.go/pkg/constants"
	"github.com/catchnotes/catchapi.go/pkg/jsoncodec"
)

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := New("api.catch.com")
	require.NoError(t, err)
	assert.Equal(t, "https://api.catch.com", s.BaseURL())
	assert.Equal(t, constants.DefaultTimeout, s.Timeout())
	assert.Equal(t, connection.AuthNone, s.AuthMode())

	s, err = New("http://localhost:8080", WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", s.BaseURL())
	assert.Equal(t, time.Second, s.Timeout())

	_, err = New("ftp://api.catch.com")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestSession_credentials(t *testing.T) {
	t.Parallel()

	s, err := New("https://api.catch.com")
	require.NoError(t, err)

	require.ErrorIs(t, s.SetCredentials("", "x"), ErrEmptyCredential)
	require.ErrorIs(t, s.SetToken(""), ErrConfiguration)
	require.ErrorIs(t, s.SetCookie(""), ErrConfiguration)
	assert.Equal(t, connection.AuthNone, s.AuthMode())

	require.NoError(t, s.SetCredentials("alice", "s3cret"))
	assert.Equal(t, connection.AuthBasic, s.AuthMode())
	require.NoError(t, s.SetToken("tok"))
	assert.Equal(t, connection.AuthToken, s.AuthMode())
}

func TestSession_noCredentials(t *testing.T) {
	server := newFakeServer(t)

	s, err := New(server.URL())
	require.NoError(t, err)

	_, err = s.CurrentUser(context.Background())
	require.ErrorIs(t, err, ErrNoCredentials)
	assert.Empty(t, server.Requests())
}

func TestLogin_switchesToToken(t *testing.T) {
	server := newFakeServer(t)
	s, u := login(t, server)

	first := server.Requests()[0]
	assert.Equal(t, http.MethodPost, first.Method)
	assert.Equal(t, constants.UserPath, first.Path)
	assert.Equal(t, "Basic YWxpY2U6czNjcmV0", first.Header.Get("Authorization"))

	assert.Equal(t, "alice", u.UserName)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	require.NotEmpty(t, u.AccessToken)
	assert.Equal(t, connection.AuthToken, s.AuthMode())
	assert.Same(t, s, u.Session())

	_, err := u.Tags(context.Background())
	require.NoError(t, err)
	last, ok := server.LastRequest()
	require.True(t, ok)
	q, err := url.ParseQuery(last.Query)
	require.NoError(t, err)
	assert.Equal(t, u.AccessToken, q.Get(constants.AccessTokenParam))
	assert.Empty(t, last.Header.Get("Authorization"))
	assert.Equal(t, constants.UserAgent, last.Header.Get("User-Agent"))
}

func TestLogin_withoutToken(t *testing.T) {
	server := newFakeServer(t)
	server.NoTokens = true
	s, u := login(t, server)

	assert.Empty(t, u.AccessToken)
	assert.Equal(t, connection.AuthBasic, s.AuthMode())

	_, err := s.CurrentUser(context.Background())
	require.NoError(t, err)
	last, _ := server.LastRequest()
	assert.Equal(t, "Basic YWxpY2U6czNjcmV0", last.Header.Get("Authorization"))
}

func TestLogin_unauthorized(t *testing.T) {
	server := newFakeServer(t)

	s, err := New(server.URL())
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrAPI)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, string(apiErr.Body))
	assert.Equal(t, connection.AuthNone, s.AuthMode())
}

func TestLogin_missingUserKey(t *testing.T) {
	server := newFakeServer(t)
	server.AddStubResponse(fakeapi.SimpleStubResponse(http.MethodPost, constants.UserPath, `{"status":"ok"}`))

	s, err := New(server.URL())
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "alice", "s3cret")
	require.ErrorIs(t, err, ErrParse)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "user", pe.What)
}

func TestSession_tokenPlacement(t *testing.T) {
	server := newFakeServer(t)
	s, u := login(t, server)
	ctx := context.Background()

	s.SetTokenPlacement(TokenInHeader)
	_, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	last, _ := server.LastRequest()
	assert.Equal(t, "Bearer "+u.AccessToken, last.Header.Get("Authorization"))

	require.NoError(t, s.SetCookie(u.AccessToken))
	_, err = s.CurrentUser(ctx)
	require.NoError(t, err)
	last, _ = server.LastRequest()
	assert.Equal(t, constants.CookieName+"="+u.AccessToken, last.Header.Get("Cookie"))
	assert.Empty(t, last.Header.Get("Authorization"))

	s.SetTokenPlacement(TokenInQuery)
	require.NoError(t, s.SetToken("not-a-token"))
	_, err = s.CurrentUser(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestSession_options(t *testing.T) {
	server := newFakeServer(t)
	reg := prometheus.NewRegistry()
	metrics := connection.NewMetrics(reg)

	s, u := login(t, server,
		WithCodec(jsoncodec.NewSonic()),
		WithUserAgent("notes-cli/2"),
		WithMetrics(metrics),
	)
	_, err := u.Tags(context.Background())
	require.NoError(t, err)

	last, _ := server.LastRequest()
	assert.Equal(t, "notes-cli/2", last.Header.Get("User-Agent"))
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.Requests.WithLabelValues("200", "get"))+
		testutil.ToFloat64(metrics.Requests.WithLabelValues("200", "post")), 0)
	assert.Equal(t, connection.AuthToken, s.AuthMode())
}

func TestSession_transportError(t *testing.T) {
	server := newFakeServer(t)
	s, u := login(t, server)
	server.SetGlobalFailures([]fakeapi.FailureConfig{{Type: fakeapi.FailureDropConnection, Probability: 1}})

	_, err := u.Tags(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	require.NotErrorIs(t, err, ErrAPI)
	assert.NotNil(t, s)
}
