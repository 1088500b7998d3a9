// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger hosts the staking contracts on a persistent store. Every
// mutating call runs against a journaled state and is committed in one batch,
// or discarded whole when it fails.
package ledger

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/siftal/muon-contracts/builtin/reverts"
	"github.com/siftal/muon-contracts/builtin/staking"
	"github.com/siftal/muon-contracts/builtin/staking/participant"
	"github.com/siftal/muon-contracts/cache"
	"github.com/siftal/muon-contracts/co"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/kv"
	"github.com/siftal/muon-contracts/log"
	"github.com/siftal/muon-contracts/muon"
	"github.com/siftal/muon-contracts/state"
)

var logger = log.WithContext("pkg", "ledger")

const (
	stateBucket = kv.Bucket("s")
	metaBucket  = kv.Bucket("m")

	defaultCacheSize = 1024
)

var keyRewardToken = []byte("reward-token")

// ErrNoRewardToken is returned when opening an uninitialized store without a reward token.
var ErrNoRewardToken = errors.New("reward token not configured")

// Options configures a ledger.
type Options struct {
	// RewardToken is recorded on first open and must match afterwards.
	RewardToken muon.Address
	// Clock stamps every call. Defaults to time.Now.
	Clock func() time.Time
	// CacheSize bounds the participant cache.
	CacheSize int
}

// Receipt describes a committed call.
type Receipt struct {
	Op      string          `json:"op"`
	Time    uint64          `json:"time"`
	Events  []staking.Event `json:"events"`
	Changes int             `json:"changes"`
}

// Ledger serializes calls on the staking contracts.
type Ledger struct {
	mu          sync.Mutex
	store       kv.Store
	rewardToken muon.Address
	clock       func() time.Time
	users       *cache.LRU
	committed   co.Signal
}

// Open loads the ledger from store and migrates it to the current schema.
func Open(store kv.Store, opts Options) (*Ledger, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	users, err := cache.NewLRU(opts.CacheSize)
	if err != nil {
		return nil, err
	}

	rewardToken, err := loadRewardToken(store, opts.RewardToken)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		store:       store,
		rewardToken: rewardToken,
		clock:       opts.Clock,
		users:       users,
	}
	if err := l.migrate(); err != nil {
		return nil, err
	}
	return l, nil
}

func loadRewardToken(store kv.Store, configured muon.Address) (muon.Address, error) {
	meta := metaBucket.NewGetter(store)
	raw, err := meta.Get(keyRewardToken)
	if err != nil && !meta.IsNotFound(err) {
		return muon.Address{}, errors.Wrap(err, "load reward token")
	}
	if len(raw) > 0 {
		stored := muon.BytesToAddress(raw)
		if !configured.IsZero() && configured != stored {
			return muon.Address{}, errors.Errorf("reward token mismatch: store %s, configured %s", stored, configured)
		}
		return stored, nil
	}
	if configured.IsZero() {
		return muon.Address{}, ErrNoRewardToken
	}
	if err := metaBucket.NewPutter(store).Put(keyRewardToken, configured.Bytes()); err != nil {
		return muon.Address{}, errors.Wrap(err, "save reward token")
	}
	return configured, nil
}

// RewardToken returns the token rewards are paid in.
func (l *Ledger) RewardToken() muon.Address {
	return l.rewardToken
}

// Now returns the current ledger time in unix seconds.
func (l *Ledger) Now() uint64 {
	return uint64(l.clock().Unix())
}

// Committed returns a waiter notified after every commit.
func (l *Ledger) Committed() co.Waiter {
	return l.committed.NewWaiter()
}

// Execute runs fn as one call. Either all of its writes are committed, or none.
func (l *Ledger) Execute(op string, fn func(env *Env) error) (*Receipt, error) {
	start := time.Now()
	defer func() {
		metricCallDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	st := state.New(stateBucket.NewGetter(l.store))
	env := newEnv(st, l.rewardToken, now)

	checkpoint := st.NewCheckpoint()
	if err := fn(env); err != nil {
		st.RevertTo(checkpoint)
		env.Staking.TakeEvents()

		status := "failed"
		if reverts.IsRevertErr(err) {
			status = "reverted"
		}
		metricCallCount().AddWithLabel(1, map[string]string{"op": op, "status": status})
		logRejected(op, err)
		return nil, err
	}

	stage := st.Stage()
	batch := l.store.NewBatch()
	if err := stage.Commit(stateBucket.NewPutter(batch)); err != nil {
		return nil, errors.Wrap(err, "stage")
	}
	if err := batch.Write(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	l.users.Purge()

	if total, err := env.Staking.TotalStaked(); err == nil {
		metricTotalStaked().Set(fixedpoint.ToDecimal(total).IntPart())
	}
	metricCallCount().AddWithLabel(1, map[string]string{"op": op, "status": "committed"})

	receipt := &Receipt{
		Op:      op,
		Time:    now,
		Events:  env.Staking.TakeEvents(),
		Changes: stage.Len(),
	}
	logger.Debug("call committed", "op", op, "events", len(receipt.Events), "changes", receipt.Changes)
	l.committed.Broadcast()
	return receipt, nil
}

// logRejected writes every rejected call at info level or above.
// Authorization failures are warnings, kept for audit.
func logRejected(op string, err error) {
	switch kind := reverts.KindOf(err); kind {
	case 0:
		logger.Error("call failed", "op", op, "err", err)
	case reverts.Authorization:
		logger.Warn("call unauthorized", "op", op, "kind", kind.String(), "err", err)
	default:
		logger.Info("call rejected", "op", op, "kind", kind.String(), "err", err)
	}
}

// View runs fn against the committed state. Writes made by fn are dropped.
func (l *Ledger) View(fn func(env *Env) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := state.New(stateBucket.NewGetter(l.store))
	return fn(newEnv(st, l.rewardToken, l.Now()))
}

// User returns the committed participant record of staker.
func (l *Ledger) User(staker muon.Address) (*participant.Participant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, err := l.users.GetOrLoad(staker, func(any) (any, error) {
		metricUserCache().AddWithLabel(1, map[string]string{"event": "miss"})
		st := state.New(stateBucket.NewGetter(l.store))
		return newEnv(st, l.rewardToken, l.Now()).Staking.Users(staker)
	})
	if err != nil {
		return nil, err
	}
	return v.(*participant.Participant).Clone(), nil
}

// StorageStats counts the committed state slots and their total value size.
func (l *Ledger) StorageStats() (slots int, size int64, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it := l.store.NewIterator(stateBucket.Range())
	defer it.Release()
	for it.Next() {
		slots++
		size += int64(len(it.Value()))
	}
	return slots, size, it.Error()
}
