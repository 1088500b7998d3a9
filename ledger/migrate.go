// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// SchemaVersion is the storage layout written by this build.
const SchemaVersion = 1

// ErrNewerSchema is returned when the store was written by a newer build.
var ErrNewerSchema = errors.New("store written by a newer schema")

type migration struct {
	version uint64
	name    string
	apply   func(env *Env) error
}

// migrations run in order, each in its own call, stamping the version on success.
var migrations = []migration{
	{1, "parameter-defaults", func(env *Env) error { return env.Staking.InitializeDefaults() }},
}

// migrate brings the store up to SchemaVersion.
func (l *Ledger) migrate() error {
	var current uint64
	if err := l.View(func(env *Env) (err error) {
		current, err = env.Staking.SchemaVersion()
		return
	}); err != nil {
		return err
	}
	if current > SchemaVersion {
		return errors.Wrapf(ErrNewerSchema, "store %d, build %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		m := m
		if _, err := l.Execute(fmt.Sprintf("migrate-%d", m.version), func(env *Env) error {
			if err := m.apply(env); err != nil {
				return err
			}
			env.Staking.SetSchemaVersion(m.version)
			return nil
		}); err != nil {
			return errors.Wrapf(err, "migration %d (%s)", m.version, m.name)
		}
		logger.Info("schema migrated", "version", m.version, "name", m.name)
	}
	return nil
}
