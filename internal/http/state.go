package http

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// StateAudience is the expected audience for connector state tokens.
const StateAudience = "connector-state"

// StateClaims contains the claims carried by the OAuth state parameter.
type StateClaims struct {
	Connector   string `json:"cid"`
	RedirectURI string `json:"redir,omitempty"`
	Nonce       string `json:"nonce"`
	jwtv5.RegisteredClaims
}

// Errors for state operations.
var (
	ErrStateInvalid   = errors.New("invalid state token")
	ErrStateExpired   = errors.New("state token expired")
	ErrStateIssuer    = errors.New("state issuer mismatch")
	ErrStateAudience  = errors.New("state audience mismatch")
	ErrStateConnector = errors.New("state connector mismatch")
)

// StateSigner signs and verifies state tokens with HS256.
type StateSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner creates a signer. ttl bounds how long a login may take.
func NewStateSigner(secret []byte, issuer string, ttl time.Duration) *StateSigner {
	return &StateSigner{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued states.
func (s *StateSigner) TTL() time.Duration { return s.ttl }

// Sign issues a state JWT for claims.
func (s *StateSigner) Sign(claims StateClaims) (string, error) {
	now := s.now().UTC()
	claims.RegisteredClaims = jwtv5.RegisteredClaims{
		Issuer:    s.issuer,
		Audience:  jwtv5.ClaimStrings{StateAudience},
		IssuedAt:  jwtv5.NewNumericDate(now),
		NotBefore: jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(now.Add(s.ttl)),
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a state JWT and returns its claims.
func (s *StateSigner) Parse(token string) (*StateClaims, error) {
	var claims StateClaims
	_, err := jwtv5.ParseWithClaims(token, &claims,
		func(*jwtv5.Token) (any, error) { return s.secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithAudience(StateAudience),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(30*time.Second),
		jwtv5.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
		return &claims, nil
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, ErrStateExpired
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer):
		return nil, ErrStateIssuer
	case errors.Is(err, jwtv5.ErrTokenInvalidAudience):
		return nil, ErrStateAudience
	default:
		return nil, ErrStateInvalid
	}
}
