package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusAvailable.Valid())
	assert.True(t, StatusInReview.Valid())
	assert.True(t, StatusUnavailable.Valid())
	assert.False(t, Status("archived").Valid())
}
