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
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/blinklabs-io/txsequencer/internal/config"
)

type globalFlags struct {
	flagset      *flag.FlagSet
	cfg          *config.Config
	dbPath       string
	logLevel     string
	token        string
	otelEndpoint string
}

func newGlobalFlags(cfg *config.Config) *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet("txsequencer", flag.ContinueOnError),
		cfg:     cfg,
	}
	f.flagset.StringVar(
		&f.dbPath,
		"db",
		cfg.DBPath,
		"path to the state database (TXSEQ_DB_PATH)",
	)
	f.flagset.StringVar(
		&f.logLevel,
		"log-level",
		cfg.LogLevel,
		"log level: debug, info, warn or error (TXSEQ_LOG_LEVEL)",
	)
	f.flagset.StringVar(
		&f.token,
		"token",
		"",
		"bearer token identifying the caller",
	)
	f.flagset.StringVar(
		&f.otelEndpoint,
		"otel-endpoint",
		cfg.OtelEndpoint,
		"OTLP/HTTP endpoint for traces (TXSEQ_OTEL_ENDPOINT)",
	)
	return f
}

type subcommand func(f *globalFlags, args []string, out io.Writer) error

var subcommands = map[string]subcommand{
	"transact":     cmdTransact,
	"set-max-size": cmdSetMaxSize,
	"enable-key":   cmdEnableKey,
	"disable-key":  cmdDisableKey,
	"status":       cmdStatus,
	"events":       cmdEvents,
	"issue-token":  cmdIssueToken,
}

func run(args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	f := newGlobalFlags(cfg)
	f.flagset.SetOutput(out)
	if err := f.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse command args: %w", err)
	}
	if len(f.flagset.Args()) == 0 {
		return errors.New(
			"you must specify a subcommand (transact, set-max-size, enable-key, disable-key, status, events or issue-token)",
		)
	}
	cmd, ok := subcommands[f.flagset.Arg(0)]
	if !ok {
		return fmt.Errorf("unknown subcommand: %s", f.flagset.Arg(0))
	}
	return cmd(f, f.flagset.Args()[1:], out)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
}
