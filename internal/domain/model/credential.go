package model

// Credential is the bearer token issued by the analysis service together with
// the identity it was issued to. Subject is the login name (an email address).
type Credential struct {
	Token   string
	Subject string
}

// Valid reports whether both halves of the credential are present. A
// credential missing either half is treated as absent.
func (c *Credential) Valid() bool {
	return c != nil && c.Token != "" && c.Subject != ""
}

// UserIdentity is the serialized form of the user stored next to the token.
type UserIdentity struct {
	Email string `json:"email"`
}

// AccessToken extracts a non-empty access_token from a decoded login
// response body.
func AccessToken(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	token, _ := obj["access_token"].(string)
	return token
}
