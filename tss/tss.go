// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tss verifies Schnorr signatures over secp256k1 produced by the
// threshold signing network for a group public key.
package tss

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"

	"github.com/siftal/muon-contracts/muon"
)

// SignatureLength is the length of a serialized signature.
const SignatureLength = schnorr.SignatureSize

var ErrInvalidSignature = errors.New("tss: invalid signature")

// PublicKey is a group public key: the x coordinate and the parity of y.
type PublicKey struct {
	X      muon.Bytes32 `json:"x" yaml:"x"`
	Parity uint8        `json:"parity" yaml:"parity"`
}

// IsZero returns whether the key was never set.
func (k PublicKey) IsZero() bool {
	return k.X.IsZero()
}

// Compressed returns the SEC1 compressed encoding.
func (k PublicKey) Compressed() []byte {
	out := make([]byte, 0, 33)
	out = append(out, 0x02+k.Parity&1)
	return append(out, k.X.Bytes()...)
}

func (k PublicKey) String() string {
	return fmt.Sprintf("%s/%d", k.X, k.Parity)
}

// parse decodes the key, which must be on the curve.
func (k PublicKey) parse() (*secp256k1.PublicKey, error) {
	if k.Parity > 1 {
		return nil, fmt.Errorf("tss: parity %d", k.Parity)
	}
	return secp256k1.ParsePubKey(k.Compressed())
}

// Validate reports whether the key is a valid curve point.
func (k PublicKey) Validate() error {
	_, err := k.parse()
	return err
}

// Verifier checks signatures over 32-byte message hashes.
type Verifier struct{}

// Verify returns nil when sig is a valid signature of hash by key.
func (Verifier) Verify(key PublicKey, hash muon.Bytes32, sig []byte) error {
	pub, err := key.parse()
	if err != nil {
		return err
	}
	s, err := schnorr.ParseSignature(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !s.Verify(hash.Bytes(), pub) {
		return ErrInvalidSignature
	}
	return nil
}
