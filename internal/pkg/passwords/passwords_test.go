package passwords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsDeterministicPerSalt(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	first := Hash("s3cret-password", salt)
	second := Hash("s3cret-password", salt)
	assert.Equal(t, first, second)

	other, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, first, Hash("s3cret-password", other))
}

func TestMatches(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	stored := Hash("correct horse", salt)

	assert.True(t, Matches("correct horse", salt, stored))
	assert.False(t, Matches("wrong horse", salt, stored))
	assert.False(t, Matches("correct horse", salt, stored+"00"))
}
