package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := ErrInvalidResponse.WithData("bad")
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.NotErrorIs(t, err, ErrGeneral)

	wrapped := fmt.Errorf("exchange: %w", err)
	assert.ErrorIs(t, wrapped, ErrInvalidResponse)
}

func TestWithData_DoesNotMutateSentinel(t *testing.T) {
	_ = ErrGeneral.WithData("body").WithCause(errors.New("cause"))
	assert.Nil(t, ErrGeneral.Data)
	assert.Nil(t, ErrGeneral.Err)
}

func TestError_Text(t *testing.T) {
	assert.Equal(t, "connector error [general]", ErrGeneral.Error())
	assert.Equal(t, "connector error [invalid_response]: not json",
		ErrInvalidResponse.WithData(Message("not json")).Error())

	cause := errors.New("boom")
	err := ErrGeneral.WithCause(cause)
	assert.Contains(t, err.Error(), "boom")
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(fmt.Errorf("x: %w", ErrSocialAuthCodeInvalid))
	assert.True(t, ok)
	assert.Equal(t, CodeSocialAuthCodeInvalid, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeGeneral))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(CodeSocialAuthCodeInvalid))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(CodeSocialAccessTokenInvalid))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(CodeInvalidResponse))
	assert.Equal(t, http.StatusNotImplemented, HTTPStatus(CodeNotImplemented))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInvalidConfig))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantData   any
	}{
		{"connector error", ErrGeneral.WithData("upstream said no"), http.StatusBadRequest, "general", "upstream said no"},
		{"error data", ErrInvalidResponse.WithData(errors.New("decode")), http.StatusBadGateway, "invalid_response", "decode"},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway, "upstream_unavailable", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["message"])
			assert.Equal(t, tt.wantData, body["data"])
		})
	}
}
