package constants

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this module matches exactly one of
// these with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrTransport     = errors.New("transport error")
	ErrAPI           = errors.New("api error")
	ErrParse         = errors.New("parse error")
	ErrLocalInput    = errors.New("local input error")
	ErrDeleted       = errors.New("entity has been deleted")
)

var (
	ErrNoCredentials     = fmt.Errorf("%w: no credentials configured", ErrConfiguration)
	ErrEmptyCredential   = fmt.Errorf("%w: empty credential", ErrConfiguration)
	ErrUnsupportedScheme = fmt.Errorf("%w: unsupported url scheme", ErrConfiguration)
	ErrNoHost            = fmt.Errorf("%w: url has no host", ErrConfiguration)
	ErrNoCodec           = fmt.Errorf("%w: codec is not set", ErrConfiguration)
)
