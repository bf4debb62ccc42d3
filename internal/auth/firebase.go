package auth

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// FirebaseProvider verifies Firebase ID tokens with the Admin SDK.
type FirebaseProvider struct {
	client *auth.Client
}

func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*Token, error) {
	decoded, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	tok := &Token{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		tok.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		tok.Name = name
	}

	// Tokens minted by some sign-in methods omit the profile claims.
	if tok.Email == "" || tok.Name == "" {
		if user, err := p.client.GetUser(ctx, decoded.UID); err == nil {
			if tok.Email == "" {
				tok.Email = user.Email
			}
			if tok.Name == "" {
				tok.Name = user.DisplayName
			}
		}
	}
	return tok, nil
}

// RevokeSessions invalidates every refresh token of uid, which signs the user out everywhere.
func (p *FirebaseProvider) RevokeSessions(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}
