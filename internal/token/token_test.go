package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	m := testManager()

	raw, exp, err := m.Sign(42, "bob@example.com", "admin", m.Access)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), exp, 2*time.Second)

	claims, err := m.Verify(raw, m.Access)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	id, err := claims.AccountID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestVerifyExpired(t *testing.T) {
	m := testManager()
	m.Access.TTL = -time.Minute

	raw, _, err := m.Sign(1, "a@b.c", "user", m.Access)
	require.NoError(t, err)

	_, err = m.Verify(raw, m.Access)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	m := testManager()

	// A refresh token must not verify under the access config: the two
	// classes are signed with independent secrets.
	raw, _, err := m.Sign(1, "a@b.c", "user", m.Refresh)
	require.NoError(t, err)

	_, err = m.Verify(raw, m.Access)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	m := testManager()

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := m.Verify(raw, m.Access)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestSignProducesUniqueTokens(t *testing.T) {
	m := testManager()

	// Two tokens for identical claims in the same instant must still differ,
	// otherwise rotation could reissue the token it just consumed.
	a, _, err := m.Sign(7, "x@y.z", "user", m.Refresh)
	require.NoError(t, err)
	b, _, err := m.Sign(7, "x@y.z", "user", m.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, Hash(a), Hash(b))
}

func TestHashDeterministic(t *testing.T) {
	assert.Equal(t, Hash("tok"), Hash("tok"))
	assert.NotEqual(t, Hash("tok"), Hash("tok2"))
	assert.Len(t, Hash("tok"), 64) // sha256 hex
}
