package fudan

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
	"github.com/dropDatabas3/connector-fudan/internal/connector/oauth2"
)

// fetchUserInfo reads the raw profile with the access token. A 401 means
// the token was rejected; other failures carry the response text. Transport
// errors are returned unchanged.
func (c *Connector) fetchUserInfo(ctx context.Context, accessToken string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.UserInfo, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, oauth2.MaxResponseBytes))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, cerrors.ErrSocialAccessTokenInvalid.WithData(string(body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, cerrors.ErrGeneral.WithData(string(body))
	case !json.Valid(body):
		return nil, cerrors.ErrInvalidResponse.WithData(cerrors.Message("user info response is not valid JSON"))
	}
	return body, nil
}
