// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gate

import (
	"github.com/holiman/uint256"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/tss"
)

var (
	ErrReplayed      = reverts.New(reverts.Signature, "This request has already been submitted.")
	ErrInvalidSig    = reverts.New(reverts.Signature, "Invalid signature.")
	ErrStaleQuote    = reverts.New(reverts.Signature, "The quoted reward per token is stale.")
	ErrFutureQuote   = reverts.New(reverts.Signature, "The quoted reward per token is ahead of the ledger.")
	ErrMissingPubKey = reverts.New(reverts.State, "The signing public key is not set.")
)

var slotConsumed = muon.BytesToBytes32([]byte("consumed-requests"))

// Verifier checks a signature over a message hash.
type Verifier interface {
	Verify(key tss.PublicKey, hash muon.Bytes32, sig []byte) error
}

// Quote is a reward amount signed by the signing network.
type Quote struct {
	AppID          *uint256.Int
	ReqID          muon.Bytes32
	Staker         muon.Address
	PaidReward     *uint256.Int
	RewardPerToken *uint256.Int
	Amount         *uint256.Int
}

// Hash is keccak256(appID ‖ reqID ‖ staker ‖ paidReward ‖ rewardPerToken ‖ amount),
// numbers as 32-byte big-endian words and the staker as 20 bytes.
func (q *Quote) Hash() muon.Bytes32 {
	appID := q.AppID.Bytes32()
	paid := q.PaidReward.Bytes32()
	rpt := q.RewardPerToken.Bytes32()
	amount := q.Amount.Bytes32()
	return muon.Keccak256(appID[:], q.ReqID.Bytes(), q.Staker.Bytes(), paid[:], rpt[:], amount[:])
}

// Gate admits each signed request once.
type Gate struct {
	consumed *solidity.Mapping[muon.Bytes32, bool]
}

func New(sctx *solidity.Context) *Gate {
	return &Gate{consumed: solidity.NewMapping[muon.Bytes32, bool](sctx, slotConsumed)}
}

// IsConsumed returns whether the request id was already redeemed.
func (g *Gate) IsConsumed(reqID muon.Bytes32) (bool, error) {
	return g.consumed.Get(reqID)
}

// CheckFreshness requires paid ≤ quoted ≤ current.
func CheckFreshness(quoted, paid, current *uint256.Int) error {
	if quoted.Lt(paid) {
		return ErrStaleQuote.Wrapf("quoted %s, paid %s", quoted, paid)
	}
	if quoted.Gt(current) {
		return ErrFutureQuote.Wrapf("quoted %s, current %s", quoted, current)
	}
	return nil
}

// Admit verifies the quote and marks its request id consumed.
func (g *Gate) Admit(q *Quote, sig []byte, key tss.PublicKey, verifier Verifier) error {
	consumed, err := g.IsConsumed(q.ReqID)
	if err != nil {
		return err
	}
	if consumed {
		return ErrReplayed.Wrapf("request %s", q.ReqID)
	}
	if key.IsZero() {
		return ErrMissingPubKey
	}
	if err := verifier.Verify(key, q.Hash(), sig); err != nil {
		return ErrInvalidSig.Wrapf("%v", err)
	}
	return g.consumed.Set(q.ReqID, true)
}
