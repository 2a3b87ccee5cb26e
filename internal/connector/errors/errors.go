package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// errorResponse is the JSON body written to host clients.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

var messages = map[Code]string{
	CodeGeneral:                  "The identity provider request failed.",
	CodeInvalidConfig:            "The connector configuration is invalid.",
	CodeInvalidResponse:          "The identity provider returned an unexpected response.",
	CodeSocialAuthCodeInvalid:    "The authorization code was rejected by the identity provider.",
	CodeSocialAccessTokenInvalid: "The access token was rejected by the identity provider.",
	CodeNotImplemented:           "The operation is not supported by this connector.",
}

// HTTPStatus maps a connector code to the status a host should answer with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeGeneral:
		return http.StatusBadRequest
	case CodeSocialAuthCodeInvalid, CodeSocialAccessTokenInvalid:
		return http.StatusUnauthorized
	case CodeInvalidResponse:
		return http.StatusBadGateway
	case CodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as JSON. Errors outside the connector taxonomy
// (transport failures, timeouts) are reported as an unavailable upstream.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	resp := errorResponse{
		Code:    "upstream_unavailable",
		Message: "The identity provider could not be reached.",
	}

	var ce *ConnectorError
	if errors.As(err, &ce) {
		status = HTTPStatus(ce.Code)
		resp = errorResponse{
			Code:    string(ce.Code),
			Message: messages[ce.Code],
			Data:    renderable(ce.Data),
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// renderable converts payloads that do not marshal well (plain errors) into text.
func renderable(d any) any {
	if _, ok := d.(json.Marshaler); ok {
		return d
	}
	if err, ok := d.(error); ok {
		return err.Error()
	}
	return d
}
