package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresent(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("%w: document abc", ErrNotFound), http.StatusNotFound, "not_found"},
		{"validation", fmt.Errorf("%w: file type not allowed", ErrValidation), http.StatusBadRequest, "validation_error"},
		{"service unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"storage unavailable", fmt.Errorf("%w: dial tcp: timeout", ErrStorageUnavailable), http.StatusServiceUnavailable, "storage_unavailable"},
		{"generation failed", fmt.Errorf("%w: empty response", ErrGenerationFailed), http.StatusBadGateway, "generation_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Present(tc.err)
			assert.Equal(t, tc.status, p.Status)
			assert.Equal(t, tc.code, p.Code)
			assert.NotEmpty(t, p.Message)
		})
	}
}

func TestPresent_HidesInfrastructureDetail(t *testing.T) {
	err := fmt.Errorf("%w: dial tcp 10.0.0.3:5432: i/o timeout", ErrStorageUnavailable)
	p := Present(err)
	assert.NotContains(t, p.Message, "10.0.0.3")
}

func TestPresent_KeepsNotFoundDetail(t *testing.T) {
	err := fmt.Errorf("%w: document with ID abc not found", ErrNotFound)
	assert.Contains(t, Present(err).Message, "abc")
}
