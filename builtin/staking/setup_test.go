// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftal/muon-contracts/builtin/access"
	"github.com/siftal/muon-contracts/builtin/bonded"
	"github.com/siftal/muon-contracts/builtin/nodemanager"
	"github.com/siftal/muon-contracts/builtin/solidity"
	"github.com/siftal/muon-contracts/builtin/staking/gate"
	"github.com/siftal/muon-contracts/builtin/staking/participant"
	"github.com/siftal/muon-contracts/builtin/token"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/lvldb"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
	"github.com/siftal/muon-contracts/tss"
)

const (
	start     = uint64(1_700_000_000)
	thirtyDay = muon.RewardPeriod
	tenDays   = 10 * muon.Day
)

var (
	pion   = muon.BytesToAddress([]byte("pion"))
	pionLP = muon.BytesToAddress([]byte("pion-lp"))

	admin    = muon.BytesToAddress([]byte("admin"))
	dao      = muon.BytesToAddress([]byte("dao"))
	rewarder = muon.BytesToAddress([]byte("rewarder"))

	staker1 = muon.BytesToAddress([]byte("staker1"))
	staker2 = muon.BytesToAddress([]byte("staker2"))
	staker3 = muon.BytesToAddress([]byte("staker3"))
	node1   = muon.BytesToAddress([]byte("node1"))
	node2   = muon.BytesToAddress([]byte("node2"))
	node3   = muon.BytesToAddress([]byte("node3"))

	appID = uint256.MustFromDecimal("1566432988060666016333351531685287278204879617528298155619493815104572633831")
)

// StakingTest wires the staking contract to real collaborators on one state.
type StakingTest struct {
	*Staking
	t *testing.T

	state  *state.State
	book   *token.Token
	nodes  *nodemanager.NodeManager
	bonded *bonded.Bonded
	signer *tss.Signer

	adminCap  access.Capability
	daoCap    access.Capability
	rewardCap access.Capability

	now    uint64
	reqSeq uint64
}

func newTest(t *testing.T) *StakingTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db)

	stakingCtx := solidity.NewContext(muon.BytesToAddress([]byte("Staking")), st)
	roles := access.New(stakingCtx)
	book := token.New(solidity.NewContext(muon.BytesToAddress([]byte("Token")), st))
	nodes := nodemanager.New(solidity.NewContext(muon.BytesToAddress([]byte("NodeManager")), st), roles)
	bonds := bonded.New(solidity.NewContext(muon.BytesToAddress([]byte("Bonded")), st), book)

	signer, err := tss.NewSigner()
	require.NoError(t, err)

	ts := &StakingTest{
		Staking: New(stakingCtx, roles, nodes, bonds, book.Asset(pion), tss.Verifier{}),
		t:       t,
		state:   st,
		book:    book,
		nodes:   nodes,
		bonded:  bonds,
		signer:  signer,
		now:     start,
	}

	require.NoError(t, ts.InitializeRoles(admin))
	ts.adminCap = ts.capability(admin, access.RoleAdmin)
	require.NoError(t, ts.GrantRole(ts.adminCap, access.RoleDAO, dao))
	require.NoError(t, ts.GrantRole(ts.adminCap, access.RoleReward, rewarder))
	ts.daoCap = ts.capability(dao, access.RoleDAO)
	ts.rewardCap = ts.capability(rewarder, access.RoleReward)

	require.NoError(t, ts.SetMinStakeAmountPerNode(ts.daoCap, fixedpoint.Tokens(1000)))
	require.NoError(t, ts.SetExitPendingPeriod(ts.daoCap, muon.DefaultExitPendingPeriod))
	require.NoError(t, ts.SetMuonAppID(ts.daoCap, appID))
	require.NoError(t, ts.SetMuonPublicKey(ts.daoCap, signer.PublicKey()))
	require.NoError(t, ts.UpdateStakingTokens(ts.daoCap,
		[]muon.Address{pion, pionLP},
		[]*uint256.Int{fixedpoint.Tokens(1), fixedpoint.Tokens(2)},
	))
	require.NoError(t, ts.SetTierMaxStakeAmount(ts.daoCap, 1, fixedpoint.Tokens(1000)))
	require.NoError(t, ts.SetTierMaxStakeAmount(ts.daoCap, 2, fixedpoint.Tokens(4000)))
	require.NoError(t, ts.SetTierMaxStakeAmount(ts.daoCap, 3, fixedpoint.Tokens(10000)))
	ts.TakeEvents()
	return ts
}

// newSeededTest joins staker1 (value 3000, tier 1) and staker2 (value 2000, tier 2).
func newSeededTest(t *testing.T) *StakingTest {
	ts := newTest(t)
	id1 := ts.mintBonded(staker1, 1000, 1000)
	ts.join(staker1, node1, id1).setTier(staker1, 1).refresh(staker1)
	id2 := ts.mintBonded(staker2, 1000, 500)
	ts.join(staker2, node2, id2).setTier(staker2, 2).refresh(staker2)
	ts.TakeEvents()
	return ts
}

func (ts *StakingTest) capability(holder muon.Address, role access.Role) access.Capability {
	c, err := ts.Authorize(holder, role)
	require.NoError(ts.t, err)
	return c
}

// exec runs fn as one all-or-nothing call.
func (ts *StakingTest) exec(fn func() error) error {
	rev := ts.state.NewCheckpoint()
	if err := fn(); err != nil {
		ts.state.RevertTo(rev)
		ts.TakeEvents()
		return err
	}
	return nil
}

func (ts *StakingTest) advance(seconds uint64) *StakingTest {
	ts.now += seconds
	return ts
}

func (ts *StakingTest) mintBonded(owner muon.Address, pionAmount, lpAmount uint64) uint64 {
	require.NoError(ts.t, ts.book.Mint(pion, owner, fixedpoint.Tokens(pionAmount)))
	require.NoError(ts.t, ts.book.Mint(pionLP, owner, fixedpoint.Tokens(lpAmount)))
	id, err := ts.bonded.MintAndLock(owner,
		[]muon.Address{pion, pionLP},
		[]*uint256.Int{fixedpoint.Tokens(pionAmount), fixedpoint.Tokens(lpAmount)},
	)
	require.NoError(ts.t, err)
	return id
}

func (ts *StakingTest) join(staker, node muon.Address, backingID uint64) *StakingTest {
	require.NoError(ts.t, ts.exec(func() error {
		return ts.Join(staker, node, "peer-"+node.String(), backingID, ts.now)
	}), "join %s", staker)
	return ts
}

func (ts *StakingTest) setTier(staker muon.Address, tier uint8) *StakingTest {
	p, err := ts.Users(staker)
	require.NoError(ts.t, err)
	require.NoError(ts.t, ts.nodes.SetTier(ts.daoCap, p.NodeID, tier, ts.now))
	return ts
}

func (ts *StakingTest) refresh(staker muon.Address) *StakingTest {
	require.NoError(ts.t, ts.exec(func() error { return ts.RefreshStake(staker, ts.now) }))
	return ts
}

func (ts *StakingTest) requestExit(staker muon.Address) *StakingTest {
	require.NoError(ts.t, ts.exec(func() error { return ts.RequestExit(staker, ts.now) }))
	return ts
}

// distribute funds the staking account with reward and starts a period.
func (ts *StakingTest) distribute(reward *uint256.Int) *StakingTest {
	ts.fund(reward)
	require.NoError(ts.t, ts.exec(func() error { return ts.DistributeRewards(ts.rewardCap, reward, ts.now) }))
	return ts
}

func (ts *StakingTest) fund(reward *uint256.Int) {
	require.NoError(ts.t, ts.book.Mint(pion, rewarder, reward))
	require.NoError(ts.t, ts.book.Transfer(pion, rewarder, ts.Address(), reward))
}

// Claim is a signed reward quote.
type Claim struct {
	ReqID          muon.Bytes32
	RewardPerToken *uint256.Int
	Amount         *uint256.Int
	Signature      []byte
}

// quote signs amount for staker against the current state and time.
func (ts *StakingTest) quote(staker muon.Address, amount *uint256.Int) *Claim {
	p, err := ts.Users(staker)
	require.NoError(ts.t, err)
	rpt, err := ts.RewardPerToken(ts.now)
	require.NoError(ts.t, err)
	return ts.signClaim(staker, p.PaidReward, rpt, amount)
}

func (ts *StakingTest) signClaim(staker muon.Address, paid, rpt, amount *uint256.Int) *Claim {
	ts.reqSeq++
	reqID := muon.Keccak256(uint256.NewInt(ts.reqSeq).Bytes())
	hash := (&gate.Quote{
		AppID:          appID,
		ReqID:          reqID,
		Staker:         staker,
		PaidReward:     paid,
		RewardPerToken: rpt,
		Amount:         amount,
	}).Hash()
	sig, err := ts.signer.Sign(hash)
	require.NoError(ts.t, err)
	return &Claim{ReqID: reqID, RewardPerToken: rpt, Amount: amount, Signature: sig}
}

func (ts *StakingTest) claim(staker muon.Address, c *Claim) error {
	return ts.exec(func() error {
		return ts.GetReward(staker, c.Amount, c.RewardPerToken, c.ReqID, c.Signature, ts.now)
	})
}

func (ts *StakingTest) earned(staker muon.Address) *uint256.Int {
	e, err := ts.Earned(staker, ts.now)
	require.NoError(ts.t, err)
	return e
}

func (ts *StakingTest) rewardPerToken() *uint256.Int {
	rpt, err := ts.RewardPerToken(ts.now)
	require.NoError(ts.t, err)
	return rpt
}

func (ts *StakingTest) user(staker muon.Address) *participant.Participant {
	p, err := ts.Users(staker)
	require.NoError(ts.t, err)
	return p
}

func (ts *StakingTest) rewardBalance(holder muon.Address) *uint256.Int {
	b, err := ts.book.BalanceOf(pion, holder)
	require.NoError(ts.t, err)
	return b
}

func (ts *StakingTest) AssertTotalStaked(expected *uint256.Int) *StakingTest {
	total, err := ts.TotalStaked()
	require.NoError(ts.t, err)
	assert.Equal(ts.t, expected, total, "total staked mismatch")
	return ts
}

func (ts *StakingTest) AssertBalance(staker muon.Address, expected *uint256.Int) *StakingTest {
	assert.Equal(ts.t, expected, ts.user(staker).Balance, "balance of %s", staker)
	return ts
}

func (ts *StakingTest) AssertEarned(staker muon.Address, expected uint64) *StakingTest {
	assert.Equal(ts.t, uint256.NewInt(expected), ts.earned(staker), "earned of %s", staker)
	return ts
}

// AssertInvariant checks totalStaked equals the sum of active balances.
func (ts *StakingTest) AssertInvariant(stakers ...muon.Address) *StakingTest {
	sum := fixedpoint.Zero()
	for _, staker := range stakers {
		p := ts.user(staker)
		if p.Status(ts.now) == participant.StatusActive {
			sum.Add(sum, p.Balance)
		}
	}
	return ts.AssertTotalStaked(sum)
}
