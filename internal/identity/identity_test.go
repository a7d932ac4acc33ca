package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojun-dev/geumbang/internal/domain"
)

func TestIdentify_ReusesValidToken(t *testing.T) {
	a := NewAssigner()
	token := uuid.NewString()

	uid, minted := a.Identify(token)
	assert.Equal(t, token, uid)
	assert.False(t, minted)

	again, minted := a.Identify(token)
	assert.Equal(t, uid, again, "same token must always map to the same identity")
	assert.False(t, minted)
}

func TestIdentify_MintsForInvalidTokens(t *testing.T) {
	a := NewAssigner()

	for _, token := range []string{"", "not-a-uuid", "1234", "d9736259-33a2-4bf2-83bb"} {
		uid, minted := a.Identify(token)
		assert.True(t, minted, "token %q", token)
		_, err := uuid.Parse(uid)
		require.NoError(t, err, "minted ids are valid uuids")
		assert.NotEqual(t, token, uid)
	}
}

func TestAlias_Format(t *testing.T) {
	a := NewAssigner()

	assert.Regexp(t, `^Buyer #[0-9A-F]{4}$`, a.Alias(domain.SideBuy))
	assert.Regexp(t, `^Seller #[0-9A-F]{4}$`, a.Alias(domain.SideSell))
}
