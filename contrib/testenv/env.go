// Package testenv provides utilities for testing against the notes API.
//
// By default it starts an in-process fake server with a single account. Set
// CATCH_API_URL (and CATCH_USERNAME / CATCH_PASSWORD) to run the same tests
// against a live server instead.
package testenv

import (
	"context"
	"fmt"
	"os"

	catchapi "github.com/catchnotes/catchapi.go"
	"github.com/catchnotes/catchapi.go/internal/fakeapi"
)

const (
	// EnvURL is the environment variable that specifies a live notes API.
	// If not set, a fake server is started.
	EnvURL = "CATCH_API_URL"

	// EnvUsername is the account used against a live server.
	EnvUsername = "CATCH_USERNAME"

	// EnvPassword is the password of EnvUsername.
	EnvPassword = "CATCH_PASSWORD"

	DefaultUsername = "apitest"
	DefaultPassword = "apitest"
)

func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// Env is a notes API to run tests against.
type Env struct {
	URL      string
	Username string
	Password string

	// Fake is nil when testing against a live server.
	Fake *fakeapi.Server
}

// New returns the live server named by EnvURL, or starts a fake one.
func New() (*Env, error) {
	username := GetEnvOrDefault(EnvUsername, DefaultUsername)
	password := GetEnvOrDefault(EnvPassword, DefaultPassword)

	if u := os.Getenv(EnvURL); u != "" {
		return &Env{URL: u, Username: username, Password: password}, nil
	}

	server := fakeapi.NewServer("127.0.0.1:0")
	server.AddUser(username, password, username+"@example.com")
	if err := server.Start(); err != nil {
		return nil, fmt.Errorf("failed to start fake notes API: %w", err)
	}
	return &Env{URL: server.URL(), Username: username, Password: password, Fake: server}, nil
}

func MustNew() *Env {
	env, err := New()
	if err != nil {
		panic(fmt.Sprintf("Failed to create test environment: %v", err))
	}
	return env
}

// IsFake reports whether the environment runs against the fake server.
func (e *Env) IsFake() bool {
	return e.Fake != nil
}

// Close stops the fake server, if any.
func (e *Env) Close() error {
	if e.Fake == nil {
		return nil
	}
	return e.Fake.Stop()
}

// Session creates a session for the environment without logging in.
func (e *Env) Session(opts ...catchapi.Option) (*catchapi.Session, error) {
	return catchapi.New(e.URL, opts...)
}

// Login creates a session and logs in with the environment's account.
func (e *Env) Login(ctx context.Context, opts ...catchapi.Option) (*catchapi.Session, *catchapi.User, error) {
	s, err := e.Session(opts...)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.Login(ctx, e.Username, e.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to log in as %s: %w", e.Username, err)
	}
	return s, u, nil
}
