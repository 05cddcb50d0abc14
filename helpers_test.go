package catchapi

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catchnotes/catchapi.go/internal/fakeapi"
)

type RoundTripFunc func(req *http.Request) *http.Response

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

// NewTestClient returns *http.Client with Transport replaced to avoid making real calls
func NewTestClient(fn RoundTripFunc) *http.Client {
	return &http.Client{
		Transport: fn,
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// newStubSession returns a session whose every request is answered by fn.
func newStubSession(t *testing.T, fn RoundTripFunc, opts ...Option) *Session {
	t.Helper()

	s, err := New("http://api.test", append([]Option{WithHTTPClient(NewTestClient(fn))}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, s.SetCredentials("alice", "s3cret"))
	return s
}

func newFakeServer(t *testing.T) *fakeapi.Server {
	t.Helper()

	server := fakeapi.NewServer("127.0.0.1:0")
	server.AddUser("alice", "s3cret", "alice@example.com")
	require.NoError(t, server.Start())
	t.Cleanup(func() {
		if err := server.Stop(); err != nil {
			t.Fatalf("Failed to stop server: %v", err)
		}
	})
	return server
}

func login(t *testing.T, server *fakeapi.Server, opts ...Option) (*Session, *User) {
	t.Helper()

	s, err := New(server.URL(), opts...)
	require.NoError(t, err)
	u, err := s.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	return s, u
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
