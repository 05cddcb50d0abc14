package catchapi

import (
	"github.com/catchnotes/catchapi.go/pkg/connection"
	"github.com/catchnotes/catchapi.go/pkg/constants"
)

type (
	APIError        = connection.APIError
	TransportError  = connection.TransportError
	ParseError      = connection.ParseError
	LocalInputError = connection.LocalInputError
)

var (
	ErrConfiguration = constants.ErrConfiguration
	ErrTransport     = constants.ErrTransport
	ErrAPI           = constants.ErrAPI
	ErrParse         = constants.ErrParse
	ErrLocalInput    = constants.ErrLocalInput
	ErrDeleted       = constants.ErrDeleted

	ErrNoCredentials     = constants.ErrNoCredentials
	ErrEmptyCredential   = constants.ErrEmptyCredential
	ErrUnsupportedScheme = constants.ErrUnsupportedScheme
)
