package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhub-app/workhub-backend/config"
	"github.com/workhub-app/workhub-backend/internal/auth/domain"
)

func TestHeaderVerifier(t *testing.T) {
	v := HeaderVerifier{}

	id, err := v.Verify(context.Background(), "uid-1:ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, "ana@example.com", id.Email)

	id, err = v.Verify(context.Background(), "uid-2")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", id.UID)
	assert.Empty(t, id.Email)

	_, err = v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestNew(t *testing.T) {
	v, err := New(context.Background(), &config.AuthConfig{Provider: "header"})
	require.NoError(t, err)
	assert.IsType(t, HeaderVerifier{}, v)

	_, err = New(context.Background(), &config.AuthConfig{Provider: "saml"})
	assert.Error(t, err)

	_, err = New(context.Background(), &config.AuthConfig{Provider: "firebase"})
	assert.Error(t, err)
}
