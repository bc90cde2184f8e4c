package keys

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// payoutTypeTag domain-separates payout digests from any other message the
// authority key might sign.
var payoutTypeTag = ethcrypto.Keccak256([]byte("Payout(address market,address claimant,uint64 amount)"))

// Signer is the protocol vault authority. Vault debits are authorized by
// this key, never by the claimant: a payout settlement records the
// signature over (market, claimant, amount) so the transfer's provenance is
// externally verifiable.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    string
}

// NewSigner creates a Signer from a hex-encoded secp256k1 private key.
func NewSigner(privateKeyHex string) (*Signer, error) {
	keyHex := strings.TrimPrefix(privateKeyHex, "0x")
	pk, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid private key: %w", err)
	}
	return &Signer{
		privateKey: pk,
		address:    ethcrypto.PubkeyToAddress(pk.PublicKey).Hex(),
	}, nil
}

// Address returns the authority's public ledger identity.
func (s *Signer) Address() string { return s.address }

// AuthorizePayout signs the payout tuple and returns the 65-byte signature
// (r || s || v).
func (s *Signer) AuthorizePayout(market, claimant string, amount uint64) ([]byte, error) {
	digest := PayoutDigest(market, claimant, amount)
	sig, err := ethcrypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("keys: sign payout: %w", err)
	}
	return sig, nil
}

// PayoutDigest computes the 32-byte digest the authority signs for a payout.
func PayoutDigest(market, claimant string, amount uint64) []byte {
	var amt [8]byte
	binary.BigEndian.PutUint64(amt[:], amount)
	return ethcrypto.Keccak256(payoutTypeTag, []byte(market), []byte(claimant), amt[:])
}

// VerifyPayout checks a payout authorization against the authority address.
func VerifyPayout(authority string, market, claimant string, amount uint64, sig []byte) (bool, error) {
	if len(sig) != 65 {
		return false, fmt.Errorf("keys: signature must be 65 bytes, got %d", len(sig))
	}
	digest := PayoutDigest(market, claimant, amount)
	pub, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return false, fmt.Errorf("keys: recover payout signer: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub).Hex() == authority, nil
}

// Compile-time interface check.
var _ domain.VaultAuthority = (*Signer)(nil)
