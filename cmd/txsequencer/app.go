// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blinklabs-io/txsequencer/auth"
	"github.com/blinklabs-io/txsequencer/internal/config"
	"github.com/blinklabs-io/txsequencer/internal/telemetry"
	"github.com/blinklabs-io/txsequencer/ledger"
	"github.com/blinklabs-io/txsequencer/ledger/common"
	"github.com/blinklabs-io/txsequencer/pipeline"
	"github.com/blinklabs-io/txsequencer/store/sqlite"
)

// app wires the store, ledger and dispatcher for a single command invocation
type app struct {
	cfg             *config.Config
	logger          *slog.Logger
	store           *sqlite.Store
	ledger          *ledger.Ledger
	dispatcher      *pipeline.Dispatcher
	shutdownTracing func(context.Context) error
}

func newLogger(f *globalFlags) (*slog.Logger, error) {
	cfg := *f.cfg
	cfg.LogLevel = f.logLevel
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	), nil
}

func newGate(f *globalFlags) (*auth.Gate, error) {
	secret, err := f.cfg.TokenSecretBytes()
	if err != nil {
		return nil, err
	}
	return auth.NewGate(
		secret,
		auth.WithIssuer(f.cfg.TokenIssuer),
		auth.WithTokenTTL(f.cfg.TokenTTL),
	)
}

func newApp(ctx context.Context, f *globalFlags) (*app, error) {
	logger, err := newLogger(f)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    f.cfg,
		logger: logger,
	}
	a.shutdownTracing, err = telemetry.Setup(ctx, f.otelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	authority, err := f.cfg.AuthorityPolicy()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store, err = sqlite.Open(f.dbPath, sqlite.WithLogger(logger))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.ledger, err = ledger.NewLedger(
		a.store,
		ledger.WithLogger(logger),
		ledger.WithAuthorityPolicy(authority),
		ledger.WithEventHandler(func(record common.TransactionRecord) {
			logger.Info(
				"transaction sequenced",
				"component", "cli",
				"tx_id", record.TxId,
				"identity", record.Identity.String(),
				"key_id", record.KeyId,
			)
		}),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.dispatcher, err = pipeline.NewDispatcher(
		a.ledger,
		pipeline.WithLogger(logger),
		pipeline.WithQueueSize(f.cfg.QueueSize),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.dispatcher.Start(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// origin resolves the caller of a command from its bearer token
func (a *app) origin(f *globalFlags) (common.Origin, error) {
	if f.token == "" {
		return common.NoneOrigin(), nil
	}
	gate, err := newGate(f)
	if err != nil {
		return common.Origin{}, err
	}
	return gate.Origin(f.token)
}

// submit runs call through the dispatcher on behalf of the token holder
func (a *app) submit(
	ctx context.Context,
	f *globalFlags,
	call ledger.Call,
) (pipeline.Result, error) {
	origin, err := a.origin(f)
	if err != nil {
		return pipeline.Result{}, err
	}
	result, err := a.dispatcher.Submit(ctx, origin, call)
	if err != nil {
		if code := common.ErrorCodeOf(err); code != common.ErrorCodeNone {
			return result, fmt.Errorf("%s: %w", code, err)
		}
		return result, err
	}
	return result, nil
}

func (a *app) Close() error {
	var errs []error
	if a.dispatcher != nil {
		errs = append(errs, a.dispatcher.Stop())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.shutdownTracing != nil {
		errs = append(errs, a.shutdownTracing(context.Background()))
	}
	return errors.Join(errs...)
}

// withApp runs fn with a fully wired app and closes it afterwards
func withApp(f *globalFlags, fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := newApp(ctx, f)
	if err != nil {
		return err
	}
	err = fn(ctx, a)
	return errors.Join(err, a.Close())
}
