// Package zk validates the opaque artifacts attached to shielded wagers.
package zk

import (
	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// StructuralVerifier implements domain.ProofVerifier with format checks
// only: the ciphertext and proof must have their exact expected lengths.
// It performs no cryptographic verification; a real range-proof verifier
// ("stake is within protocol bounds, without revealing it") plugs in behind
// the same interface.
type StructuralVerifier struct{}

// NewStructuralVerifier returns the format-only verifier.
func NewStructuralVerifier() *StructuralVerifier { return &StructuralVerifier{} }

// VerifyEncryptedAmount checks the ciphertext layout:
// ephemeral pubkey (32) + nonce (24) + sealed amount (24).
func (v *StructuralVerifier) VerifyEncryptedAmount(ciphertext []byte) error {
	if len(ciphertext) != domain.EncryptedAmountLen {
		return domain.ErrInvalidEncryptedData
	}
	return nil
}

// VerifyRangeProof checks the proof layout: salt (32) + commitment (32).
// The ciphertext the proof commits to must itself be well-formed.
func (v *StructuralVerifier) VerifyRangeProof(proof, ciphertext []byte) error {
	if len(ciphertext) != domain.EncryptedAmountLen {
		return domain.ErrInvalidEncryptedData
	}
	if len(proof) != domain.RangeProofLen {
		return domain.ErrInvalidProof
	}
	return nil
}

// Compile-time interface check.
var _ domain.ProofVerifier = (*StructuralVerifier)(nil)
