// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tss

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"

	"github.com/siftal/muon-contracts/muon"
)

// Signer holds a single key standing in for the signing network, used by
// tests and local deployments.
type Signer struct {
	key *secp256k1.PrivateKey
}

// NewSigner generates a random signer.
func NewSigner() (*Signer, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// SignerFromBytes restores a signer from a 32-byte secret.
func SignerFromBytes(secret []byte) *Signer {
	return &Signer{key: secp256k1.PrivKeyFromBytes(secret)}
}

// PublicKey returns the key signatures verify against.
func (s *Signer) PublicKey() PublicKey {
	compressed := s.key.PubKey().SerializeCompressed()
	return PublicKey{
		X:      muon.BytesToBytes32(compressed[1:]),
		Parity: compressed[0] - 0x02,
	}
}

// Sign signs a message hash.
func (s *Signer) Sign(hash muon.Bytes32) ([]byte, error) {
	sig, err := schnorr.Sign(s.key, hash.Bytes())
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}
