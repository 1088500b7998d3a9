// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/siftal/muon-contracts/genesis"
	"github.com/siftal/muon-contracts/ledger"
	"github.com/siftal/muon-contracts/log"
	"github.com/siftal/muon-contracts/lvldb"
	"github.com/siftal/muon-contracts/muon"
)

func initLogger(ctx *cli.Context) {
	useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	log.Init(os.Stderr, ctx.Int(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name), useColor)
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".muonledger")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	if ctx.Bool(devFlag.Name) {
		return genesis.Dev(), nil
	}
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return nil, errors.New("either --genesis or --dev is required")
	}
	return genesis.Load(path)
}

func openDB(ctx *cli.Context) (*lvldb.LevelDB, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, errors.New("unable to infer default data dir, use --data-dir to specify")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dir)
	}
	cacheMB := max(ctx.Int(cacheFlag.Name), 16)
	db, err := lvldb.New(filepath.Join(dir, "ledger.db"), lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open ledger database")
	}
	return db, nil
}

func openLedger(db *lvldb.LevelDB, rewardToken muon.Address) (*ledger.Ledger, error) {
	l, err := ledger.Open(db, ledger.Options{RewardToken: rewardToken})
	if err != nil {
		return nil, errors.WithMessage(err, "open ledger")
	}
	return l, nil
}

func handleExitSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
