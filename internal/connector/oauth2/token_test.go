package oauth2

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
)

type capturedRequest struct {
	method        string
	contentType   string
	authorization string
	form          url.Values
}

type recorder struct {
	mu   sync.Mutex
	reqs []capturedRequest
}

func (r *recorder) at(i int) capturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reqs[i]
}

// tokenServer fakes a token endpoint and records every request.
func tokenServer(t *testing.T, status int, body string) (*httptest.Server, *recorder, *int32) {
	t.Helper()
	var (
		rec   recorder
		count int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&count, 1)
		raw, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(raw))
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.reqs = append(rec.reqs, capturedRequest{
			method:        r.Method,
			contentType:   r.Header.Get("Content-Type"),
			authorization: r.Header.Get("Authorization"),
			form:          form,
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &rec, &count
}

func testConfig() *Config {
	cfg := &Config{ClientID: "my-client", ClientSecret: "s3cr:et"}
	cfg.applyDefaults()
	return cfg
}

func TestGetAccessToken_PostsOnceWithBasicAuth(t *testing.T) {
	srv, reqs, count := tokenServer(t, http.StatusOK, "access_token=ABC&token_type=bearer")
	c := NewClient(srv.URL)

	tok, err := c.GetAccessToken(context.Background(), testConfig(),
		map[string]any{"code": "the-code", "state": "st"}, "https://cb/callback")
	require.NoError(t, err)
	assert.Equal(t, "ABC", tok.AccessToken)

	require.EqualValues(t, 1, atomic.LoadInt32(count))
	got := reqs.at(0)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("my-client:s3cr:et"))
	assert.Equal(t, want, got.authorization)

	assert.Equal(t, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {"the-code"},
		"redirect_uri": {"https://cb/callback"},
	}, got.form)
}

func TestGetAccessToken_JSONFormat(t *testing.T) {
	srv, _, _ := tokenServer(t, http.StatusOK, `{"access_token":"ABC","token_type":"bearer","expires_in":7200}`)
	cfg := testConfig()
	cfg.TokenEndpointResponseType = TokenResponseJSON

	tok, err := NewClient(srv.URL).GetAccessToken(context.Background(), cfg, []byte(`{"code":"c"}`), "https://cb")
	require.NoError(t, err)
	require.NotNil(t, tok.ExpiresIn)
	assert.EqualValues(t, 7200, *tok.ExpiresIn)
}

func TestGetAccessToken_InvalidAuthResponse(t *testing.T) {
	srv, _, count := tokenServer(t, http.StatusOK, "access_token=ABC&token_type=bearer")
	c := NewClient(srv.URL)

	for name, data := range map[string]any{
		"missing code": map[string]any{"state": "st"},
		"numeric code": map[string]any{"code": 42},
		"empty code":   map[string]any{"code": ""},
		"empty json":   []byte(`{"code":"","state":"st"}`),
		"nil":          nil,
		"string":       "code=abc",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.GetAccessToken(context.Background(), testConfig(), data, "https://cb")
			require.Error(t, err)
			assert.True(t, errors.Is(err, cerrors.ErrGeneral), "got %v", err)
		})
	}
	assert.EqualValues(t, 0, atomic.LoadInt32(count))
}

func TestGetAccessToken_MissingConfig(t *testing.T) {
	_, err := NewClient("http://unused").GetAccessToken(context.Background(), nil, map[string]any{"code": "c"}, "")
	assert.True(t, errors.Is(err, cerrors.ErrInvalidConfig))
}

func TestGetAccessTokenByRefreshToken_Body(t *testing.T) {
	srv, reqs, _ := tokenServer(t, http.StatusOK, "access_token=NEW&token_type=bearer&refresh_token=R2")

	tok, err := NewClient(srv.URL).GetAccessTokenByRefreshToken(context.Background(), testConfig(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "NEW", tok.AccessToken)
	assert.Equal(t, "R2", tok.RefreshToken)

	form := reqs.at(0).form
	assert.Equal(t, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {"R1"},
	}, form)
	assert.NotContains(t, form, "code")
	assert.NotContains(t, form, "redirect_uri")
	assert.NotContains(t, form, "client_secret")
}

func TestRequestTokenEndpoint_ExtraFieldsSnakeCased(t *testing.T) {
	srv, reqs, _ := tokenServer(t, http.StatusOK, "ok")

	_, err := NewClient(srv.URL).RequestTokenEndpoint(context.Background(), AuthorizationCodeRequest{
		Code:         "c",
		RedirectURI:  "https://cb",
		ClientID:     "id",
		ClientSecret: "secret",
		Extra: map[string]string{
			"codeVerifier": "v",
			"clientSecret": "leak",
			"audience":     "",
		},
	}, 0)
	require.NoError(t, err)

	form := reqs.at(0).form
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "v", form.Get("code_verifier"))
	assert.NotContains(t, form, "client_secret")
	assert.NotContains(t, form, "client_id")
	assert.NotContains(t, form, "audience")
}

func TestRequestTokenEndpoint_NonSuccessStatus(t *testing.T) {
	srv, _, _ := tokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)

	_, err := NewClient(srv.URL).GetAccessTokenByRefreshToken(context.Background(), testConfig(), "R1")
	require.Error(t, err)

	var ce *cerrors.ConnectorError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, cerrors.CodeGeneral, ce.Code)
	assert.Equal(t, `{"error":"invalid_grant"}`, ce.Data)
}

func TestRequestTokenEndpoint_OversizedBodyTruncated(t *testing.T) {
	big := `{"access_token":"ABC","token_type":"bearer","pad":"` + strings.Repeat("x", MaxResponseBytes) + `"}`
	srv, _, _ := tokenServer(t, http.StatusOK, big)
	cfg := testConfig()
	cfg.TokenEndpointResponseType = TokenResponseJSON

	_, err := NewClient(srv.URL).GetAccessTokenByRefreshToken(context.Background(), cfg, "R1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cerrors.ErrInvalidResponse), "got %v", err)
}

func TestRequestTokenEndpoint_TransportErrorUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := NewClient(endpoint).GetAccessTokenByRefreshToken(context.Background(), testConfig(), "R1")
	require.Error(t, err)

	_, isConnectorErr := cerrors.CodeOf(err)
	assert.False(t, isConnectorErr)
	var ue *url.Error
	assert.True(t, errors.As(err, &ue), "got %T", err)
}

func TestRequestTokenEndpoint_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	start := time.Now()
	_, err := NewClient(srv.URL).RequestTokenEndpoint(context.Background(), RefreshTokenRequest{RefreshToken: "R"}, 50*time.Millisecond)
	require.Error(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	_, isConnectorErr := cerrors.CodeOf(err)
	assert.False(t, isConnectorErr)
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{}
	c := NewClient("https://token", WithHTTPClient(hc), WithTimeout(time.Second), WithTimeout(0))

	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, time.Second, c.timeout)
	assert.Equal(t, DefaultTimeout, NewClient("x").timeout)
}
