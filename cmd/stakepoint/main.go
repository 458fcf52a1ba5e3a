// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakepoint/stakepoint/api"
	"github.com/stakepoint/stakepoint/ledger"
	"github.com/stakepoint/stakepoint/state"
	"github.com/stakepoint/stakepoint/token"
	"github.com/stakepoint/stakepoint/vault"
)

var (
	version   string
	gitCommit string
)

func fullVersion() string {
	if version == "" {
		version = "dev"
	}
	if gitCommit == "" {
		return version
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakepoint",
		Usage:     "staking points ledger node",
		Copyright: "2025 The stakepoint developers",
		Flags: []cli.Flag{
			dataDirFlag,
			memFlag,
			genesisFlag,
			apiAddrFlag,
			apiCorsFlag,
			rewardModeFlag,
			verbosityFlag,
			enableMetricsFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	initLogger(ctx)
	defer func() { slog.Info("exited") }()

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	mainDB, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer func() { slog.Info("closing main database..."); mainDB.Close() }()

	eventDB, err := openEventDB(ctx)
	if err != nil {
		return err
	}
	defer func() { slog.Info("closing event database..."); eventDB.Close() }()

	st := state.New(mainDB)
	tok := token.New(st)
	if err := gene.Apply(st, tok); err != nil {
		return err
	}

	var issuer ledger.RewardIssuer
	switch mode := ctx.String(rewardModeFlag.Name); mode {
	case "token":
		issuer = token.NewIssuer(tok)
	case "counter":
		issuer = ledger.NewCounterIssuer(st)
		tok = nil
	default:
		return fmt.Errorf("unknown reward mode %q", mode)
	}

	ldgr := ledger.New(st, vault.New(st), issuer)

	handler := api.New(ldgr, tok, eventDB, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	srv, apiURL, err := startAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	defer func() { slog.Info("stopping API server..."); srv.Shutdown(context.Background()) }()

	slog.Info("stakepoint started",
		"version", fullVersion(),
		"api", apiURL,
		"reward-mode", ctx.String(rewardModeFlag.Name),
	)

	<-handleExitSignal().Done()
	return nil
}
