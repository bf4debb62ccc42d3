package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledProvider(t *testing.T) {
	var p Provider = DisabledProvider{}

	tok, err := p.VerifyIDToken(context.Background(), "any-token")
	assert.Error(t, err)
	assert.Nil(t, tok)
	assert.Error(t, p.RevokeSessions(context.Background(), "resident-a"))
}
