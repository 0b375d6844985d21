package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsVersion4UUID(t *testing.T) {
	u, err := uuid.Parse(New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), u.Version())
}

func TestNew_Distinct(t *testing.T) {
	assert.NotEqual(t, New(), New())
}
