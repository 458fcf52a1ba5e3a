// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakepoint/stakepoint/eventdb"
	"github.com/stakepoint/stakepoint/genesis"
	"github.com/stakepoint/stakepoint/lvldb"
)

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".stakepoint")
	}
	return ""
}

func initLogger(ctx *cli.Context) {
	level := slog.LevelInfo
	switch ctx.Int(verbosityFlag.Name) {
	case 0:
		level = slog.LevelError
	case 1:
		level = slog.LevelWarn
	case 2, 3:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}

	w := os.Stderr
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		return genesis.LoadFile(path)
	}
	return genesis.Dev(), nil
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return "", errors.New("unable to infer default data dir, use -data-dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir %q", dir)
	}
	return dir, nil
}

func openMainDB(ctx *cli.Context) (*lvldb.LevelDB, error) {
	if ctx.Bool(memFlag.Name) {
		return lvldb.NewMem()
	}
	dir, err := makeDataDir(ctx)
	if err != nil {
		return nil, err
	}
	db, err := lvldb.New(filepath.Join(dir, "main.db"), lvldb.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	return db, nil
}

func openEventDB(ctx *cli.Context) (*eventdb.EventDB, error) {
	if ctx.Bool(memFlag.Name) {
		return eventdb.NewMem()
	}
	dir, err := makeDataDir(ctx)
	if err != nil {
		return nil, err
	}
	db, err := eventdb.New(filepath.Join(dir, "events.db"))
	if err != nil {
		return nil, errors.Wrap(err, "open event database")
	}
	return db, nil
}

func startAPIServer(ctx *cli.Context, handler http.HandlerFunc) (*http.Server, string, error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", errors.Wrapf(err, "listen API addr %q", addr)
	}
	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			slog.Error("API server stopped unexpectedly", "err", err)
		}
	}()
	return srv, "http://" + listener.Addr().String() + "/", nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		slog.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
