// Package contrib provides tools and test utilities built on top of the
// notes API client.
//
// Note that this package is outside of the backward compatibility guarantees
// provided by the core client. Changes to this package may introduce
// breaking changes without following semantic versioning.
//
// [github.com/catchnotes/catchapi.go/contrib/catchexport] dumps every note of
// an account to YAML or JSON and is driven by contrib/catchexport/cmd/catchexport.
// [github.com/catchnotes/catchapi.go/contrib/testenv] runs tests against a
// live server or an in-process fake.
package contrib
