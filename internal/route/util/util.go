package util

import (
	"errors"
	"log"
	"net/http"

	"github.com/dense-analysis/nexus/internal/dashboard"
	"github.com/dense-analysis/nexus/internal/remote"
	"github.com/dense-analysis/nexus/internal/watchlist"
	"github.com/dense-analysis/nexus/pkg/lax"
)

// statusError sets the status of an error response.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) HTTPStatus() int { return e.status }

// RespondError turns an error from a source into a lax response.
//
// Remote failures are a 502, unknown assets a 404, invalid watchlist ids a
// 400, and anything else is an internal error.
func RespondError(err error) any {
	var transportErr *remote.TransportError

	switch {
	case errors.Is(err, dashboard.ErrUnknownAsset):
		return lax.MakeNotFoundResponse(err.Error())
	case errors.Is(err, watchlist.ErrInvalidID):
		return lax.MakeErrorListResponse(lax.Issue("id", err.Error()))
	case errors.As(err, &transportErr), errors.Is(err, remote.ErrMalformedResponse):
		log.Printf("upstream error: %+v\n", err)

		return &statusError{http.StatusBadGateway, err}
	default:
		log.Printf("internal error: %+v\n", err)

		return err
	}
}

// RespondValidationError returns a 400 listing one problem with a field.
func RespondValidationError(path string, err error) any {
	return lax.MakeErrorListResponse(lax.Issue(path, err.Error()))
}
