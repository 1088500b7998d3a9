// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/siftal/muon-contracts/api"
	"github.com/siftal/muon-contracts/cmd/muonledger/httpserver"
	"github.com/siftal/muon-contracts/fixedpoint"
	"github.com/siftal/muon-contracts/ledger"
	"github.com/siftal/muon-contracts/log"
	"github.com/siftal/muon-contracts/metrics"
	"github.com/siftal/muon-contracts/muon"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "muonledger",
		Usage:   "Operator tool of the Muon node staking ledger",
		Flags: []cli.Flag{
			dataDirFlag,
			cacheFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Before: func(ctx *cli.Context) error {
			initLogger(ctx)
			return nil
		},
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "write the genesis into a new ledger",
				Flags:  []cli.Flag{genesisFlag, devFlag},
				Action: initAction,
			},
			{
				Name:  "serve",
				Usage: "serve the read API",
				Flags: []cli.Flag{
					apiAddrFlag,
					apiCorsFlag,
					enableAPILogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
				},
				Action: serveAction,
			},
			{
				Name:      "inspect",
				Usage:     "print the reward state, or the record of a staker",
				ArgsUsage: "[address]",
				Action:    inspectAction,
			},
			{
				Name:   "migrate",
				Usage:  "upgrade the ledger to the current schema",
				Action: migrateAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initAction(ctx *cli.Context) error {
	gen, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	l, err := openLedger(db, gen.RewardToken)
	if err != nil {
		return err
	}
	receipt, err := l.Execute("genesis", gen.Apply)
	if err != nil {
		return errors.WithMessage(err, "apply genesis")
	}
	log.Info("ledger initialized", "events", len(receipt.Events), "changes", receipt.Changes)
	return nil
}

func serveAction(ctx *cli.Context) error {
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing ledger database..."); db.Close() }()

	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	if enableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	l, err := openLedger(db, muon.Address{})
	if err != nil {
		return err
	}

	handler := api.New(l, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableMetrics:   enableMetrics,
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
	})
	apiURL, stopAPI, err := httpserver.Start(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); stopAPI() }()
	log.Info("API server started", "url", apiURL)

	if enableMetrics {
		metricsURL, stopMetrics, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); stopMetrics() }()
		log.Info("metrics server started", "url", metricsURL)
	}

	exitCtx, stop := handleExitSignal()
	defer stop()
	<-exitCtx.Done()
	log.Info("exiting")
	return nil
}

func inspectAction(ctx *cli.Context) error {
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	l, err := openLedger(db, muon.Address{})
	if err != nil {
		return err
	}

	if ctx.NArg() > 0 {
		addr, err := muon.ParseAddress(ctx.Args().First())
		if err != nil {
			return errors.WithMessage(err, "address")
		}
		return l.View(func(env *ledger.Env) error {
			p, err := env.Staking.Users(*addr)
			if err != nil {
				return err
			}
			earned, err := env.Staking.Earned(*addr, env.Now)
			if err != nil {
				return err
			}
			fmt.Printf("status:          %s\n", p.Status(env.Now))
			fmt.Printf("node id:         %d\n", p.NodeID)
			fmt.Printf("bonded token:    %d\n", p.BackingID)
			fmt.Printf("balance:         %s\n", fixedpoint.Format(p.Balance))
			fmt.Printf("earned:          %s\n", fixedpoint.Format(earned))
			fmt.Printf("paid reward:     %s\n", fixedpoint.Format(p.PaidReward))
			fmt.Printf("withdrawable at: %d\n", p.WithdrawableAt)
			fmt.Printf("locked:          %v\n", p.Locked)
			return nil
		})
	}

	slots, size, err := l.StorageStats()
	if err != nil {
		return errors.WithMessage(err, "storage stats")
	}
	return l.View(func(env *ledger.Env) error {
		snap, err := env.Staking.RewardState()
		if err != nil {
			return err
		}
		version, err := env.Staking.SchemaVersion()
		if err != nil {
			return err
		}
		fmt.Printf("schema version:  %d\n", version)
		fmt.Printf("reward token:    %s\n", l.RewardToken())
		fmt.Printf("total staked:    %s\n", fixedpoint.Format(snap.TotalStaked))
		fmt.Printf("reward rate:     %s wei/s\n", snap.RewardRate.Dec())
		fmt.Printf("period finish:   %d\n", snap.PeriodFinish)
		fmt.Printf("state slots:     %d (%d bytes)\n", slots, size)
		return nil
	})
}

func migrateAction(ctx *cli.Context) error {
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	// opening runs pending migrations
	if _, err := openLedger(db, muon.Address{}); err != nil {
		return err
	}
	log.Info("ledger is up to date", "schema", ledger.SchemaVersion)
	return nil
}
