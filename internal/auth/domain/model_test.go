package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleSeeker.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}
