// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/tss"
)

// DevAccount is a pre-funded address of the development genesis.
type DevAccount struct {
	Name    string
	Address muon.Address
}

var (
	DevRewardToken = muon.BytesToAddress([]byte("PION"))
	DevLPToken     = muon.BytesToAddress([]byte("PION-LP"))

	devSignerSecret = hexutil.MustDecode("0x5ab1e0c0ffee5ab1e0c0ffee5ab1e0c0ffee5ab1e0c0ffee5ab1e0c0ffee5ab1")
)

// DevAccounts returns the accounts of the development genesis.
func DevAccounts() []DevAccount {
	names := []string{"admin", "dao", "distributor", "alice", "bob", "carol"}
	accs := make([]DevAccount, 0, len(names))
	for _, name := range names {
		accs = append(accs, DevAccount{Name: name, Address: muon.BytesToAddress(muon.Blake2b([]byte(name)).Bytes())})
	}
	return accs
}

// DevSigner returns the signer whose key the development genesis trusts.
func DevSigner() *tss.Signer {
	return tss.SignerFromBytes(devSignerSecret)
}

// Dev returns a genesis for local development.
func Dev() *Genesis {
	accs := DevAccounts()
	amount := func(n uint64) Amount { return Amount(*fixedpoint.Tokens(n)) }

	gen := &Genesis{
		RewardToken:           DevRewardToken,
		Admin:                 accs[0].Address,
		DAO:                   []muon.Address{accs[1].Address},
		Distributors:          []muon.Address{accs[2].Address},
		ExitPendingPeriod:     muon.DefaultExitPendingPeriod,
		MinStakeAmountPerNode: amount(1000),
		MuonAppID:             "1566432988060666016333351531685287278204879617528298155619493815104572633831",
		MuonPublicKey:         DevSigner().PublicKey(),
		Tiers: []Tier{
			{Tier: 1, MaxStake: amount(1000)},
			{Tier: 2, MaxStake: amount(4000)},
			{Tier: 3, MaxStake: amount(10000)},
		},
		StakingTokens: []StakingToken{
			{Address: DevRewardToken, Multiplier: amount(1)},
			{Address: DevLPToken, Multiplier: amount(2)},
		},
	}
	for _, acc := range accs {
		for _, token := range []muon.Address{DevRewardToken, DevLPToken} {
			gen.Balances = append(gen.Balances, Balance{Token: token, Holder: acc.Address, Amount: amount(1_000_000)})
		}
	}
	return gen
}
