package oauth2

// AuthorizationParams are the query parameters of the authorization
// redirect. Extra keys are camelCase and get snake-cased like the rest.
type AuthorizationParams struct {
	ResponseType string
	ClientID     string
	Scope        string
	RedirectURI  string
	State        string
	Extra        map[string]string
}

// ConstructAuthorizationURI returns endpoint + "?" + query. Empty values are
// omitted from the query.
func ConstructAuthorizationURI(endpoint string, p AuthorizationParams) string {
	q := encodeParams([]param{
		{"responseType", p.ResponseType},
		{"clientId", p.ClientID},
		{"scope", p.Scope},
		{"redirectUri", p.RedirectURI},
		{"state", p.State},
	}, p.Extra)
	return endpoint + "?" + q.Encode()
}
