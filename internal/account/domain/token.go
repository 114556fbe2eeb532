package domain

import "golang.org/x/oauth2"

// TokenUpdateFunc is invoked when the oauth2 transport rotates an access
// token, so the refreshed credential can be persisted back to the link row.
type TokenUpdateFunc func(token *oauth2.Token) error
