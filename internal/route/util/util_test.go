package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dense-analysis/nexus/internal/dashboard"
	"github.com/dense-analysis/nexus/internal/remote"
	"github.com/dense-analysis/nexus/internal/watchlist"
	"github.com/dense-analysis/nexus/pkg/lax"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"transport", fmt.Errorf("fetch: %w", &remote.TransportError{Op: "GET", URL: "/", Status: 500}), http.StatusBadGateway},
		{"malformed", fmt.Errorf("decode: %w", remote.ErrMalformedResponse), http.StatusBadGateway},
		{"unknown asset", fmt.Errorf("%w: %q", dashboard.ErrUnknownAsset, "doge"), http.StatusNotFound},
		{"invalid id", fmt.Errorf("remove: %w", watchlist.ValidateID("a/b")), http.StatusBadRequest},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			handler := lax.Wrap(lax.View{Get: func(request *lax.Request) any {
				return RespondError(testCase.err)
			}})
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, testCase.status, recorder.Code)
		})
	}
}
