package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
// Implementations cache tokens and refresh them transparently; callers
// request a token for every upload attempt.
type TokenProvider interface {
	// GetToken returns a valid access token.
	GetToken(ctx context.Context) (string, error)
}
