package catchexport

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	catchapi "github.com/catchnotes/catchapi.go"
	"github.com/catchnotes/catchapi.go/pkg/logger"
)

// newUser creates a session from the configuration and authenticates it.
func newUser(ctx context.Context, config *Config, log zerolog.Logger) (*catchapi.User, error) {
	s, err := catchapi.New(config.Endpoint,
		catchapi.WithTimeout(config.Timeout),
		catchapi.WithLogger(log),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	if config.Token != "" {
		if err := s.SetToken(config.Token); err != nil {
			return nil, errors.Wrap(err, "failed to set token")
		}
		u, err := s.CurrentUser(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to authenticate")
		}
		return u, nil
	}

	u, err := s.Login(ctx, config.Username, config.Password)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to log in as %s", config.Username)
	}
	return u, nil
}

// Do executes an export based on the provided configuration.
// The configuration should be validated before calling this function.
func Do(ctx context.Context, config *Config) error {
	logData, err := logger.New().
		FromPath(config.Log.File).
		LevelString(config.Log.Level).
		Console(config.Log.File == "").
		Make()
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}
	defer logData.Close() //nolint:errcheck

	return Run(ctx, config, logData.Logger)
}

// Run is Do with a caller supplied logger.
func Run(ctx context.Context, config *Config, log zerolog.Logger) error {
	u, err := newUser(ctx, config, log)
	if err != nil {
		return err
	}

	exp, err := NewExporter(u, config, log).Collect(ctx)
	if err != nil {
		return err
	}

	if config.Output == "-" {
		return Write(os.Stdout, config.Format, exp)
	}

	f, err := os.Create(config.Output)
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	if err := Write(f, config.Format, exp); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close output file")
	}
	log.Info().Str("output", config.Output).Str("format", config.Format).Msg("export written")
	return nil
}
