package zk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

func TestVerifyEncryptedAmount(t *testing.T) {
	v := NewStructuralVerifier()

	assert.NoError(t, v.VerifyEncryptedAmount(make([]byte, domain.EncryptedAmountLen)))
	assert.ErrorIs(t, v.VerifyEncryptedAmount(nil), domain.ErrInvalidEncryptedData)
	assert.ErrorIs(t, v.VerifyEncryptedAmount(make([]byte, domain.EncryptedAmountLen-1)), domain.ErrInvalidEncryptedData)
	assert.ErrorIs(t, v.VerifyEncryptedAmount(make([]byte, domain.EncryptedAmountLen+1)), domain.ErrInvalidEncryptedData)
}

func TestVerifyRangeProof(t *testing.T) {
	v := NewStructuralVerifier()
	ciphertext := make([]byte, domain.EncryptedAmountLen)

	assert.NoError(t, v.VerifyRangeProof(make([]byte, domain.RangeProofLen), ciphertext))
	assert.ErrorIs(t, v.VerifyRangeProof(make([]byte, domain.RangeProofLen-1), ciphertext), domain.ErrInvalidProof)
	assert.ErrorIs(t, v.VerifyRangeProof(nil, ciphertext), domain.ErrInvalidProof)
}

func TestVerifyRangeProof_BadCiphertext(t *testing.T) {
	v := NewStructuralVerifier()

	// A malformed ciphertext invalidates the proof check regardless of the
	// proof's own shape.
	err := v.VerifyRangeProof(make([]byte, domain.RangeProofLen), make([]byte, 10))
	assert.ErrorIs(t, err, domain.ErrInvalidEncryptedData)
}
