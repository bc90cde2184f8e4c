package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Throwaway secp256k1 key used across signer tests.
const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe51296170827936ea5cce4b76994b0f"

func TestNewSigner_InvalidKey(t *testing.T) {
	_, err := NewSigner("not-hex")
	assert.Error(t, err)
}

func TestNewSigner_AcceptsPrefix(t *testing.T) {
	a, err := NewSigner(testKeyHex)
	require.NoError(t, err)
	b, err := NewSigner("0x" + testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, a.Address(), b.Address())
}

func TestAuthorizePayout_RoundTrip(t *testing.T) {
	s, err := NewSigner(testKeyHex)
	require.NoError(t, err)

	sig, err := s.AuthorizePayout("market-1", "claimant-1", 150_000_000)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	ok, err := VerifyPayout(s.Address(), "market-1", "claimant-1", 150_000_000, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPayout_TamperedTuple(t *testing.T) {
	s, err := NewSigner(testKeyHex)
	require.NoError(t, err)

	sig, err := s.AuthorizePayout("market-1", "claimant-1", 150_000_000)
	require.NoError(t, err)

	// Any change to the signed tuple must break verification.
	ok, err := VerifyPayout(s.Address(), "market-1", "claimant-1", 150_000_001, sig)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyPayout(s.Address(), "market-2", "claimant-1", 150_000_000, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPayout_WrongAuthority(t *testing.T) {
	s, err := NewSigner(testKeyHex)
	require.NoError(t, err)

	sig, err := s.AuthorizePayout("market-1", "claimant-1", 1)
	require.NoError(t, err)

	ok, err := VerifyPayout("0x0000000000000000000000000000000000000001", "market-1", "claimant-1", 1, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPayout_BadSignatureLength(t *testing.T) {
	_, err := VerifyPayout("0xabc", "m", "c", 1, []byte{1, 2, 3})
	assert.Error(t, err)
}
