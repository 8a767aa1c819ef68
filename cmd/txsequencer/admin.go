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
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/blinklabs-io/txsequencer/ledger"
)

// parseUint32Arg parses the single positional argument of an admin subcommand
func parseUint32Arg(name string, args []string) (uint32, error) {
	flagset := flag.NewFlagSet(name, flag.ContinueOnError)
	if err := flagset.Parse(args); err != nil {
		return 0, fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	if flagset.NArg() != 1 {
		return 0, errors.New("you must specify exactly one value")
	}
	value, err := strconv.ParseUint(flagset.Arg(0), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", flagset.Arg(0), err)
	}
	return uint32(value), nil
}

func runAdminCall(f *globalFlags, call ledger.Call, out io.Writer, message string) error {
	return withApp(f, func(ctx context.Context, a *app) error {
		if _, err := a.submit(ctx, f, call); err != nil {
			return err
		}
		fmt.Fprintln(out, message)
		return nil
	})
}

func cmdSetMaxSize(f *globalFlags, args []string, out io.Writer) error {
	size, err := parseUint32Arg("set-max-size", args)
	if err != nil {
		return err
	}
	return runAdminCall(
		f,
		ledger.NewSetMaxTransactionSizeCall(size),
		out,
		fmt.Sprintf("max transaction size set to %d", size),
	)
}

func cmdEnableKey(f *globalFlags, args []string, out io.Writer) error {
	keyId, err := parseUint32Arg("enable-key", args)
	if err != nil {
		return err
	}
	return runAdminCall(
		f,
		ledger.NewEnableKeyCall(keyId),
		out,
		fmt.Sprintf("key %d enabled", keyId),
	)
}

func cmdDisableKey(f *globalFlags, args []string, out io.Writer) error {
	keyId, err := parseUint32Arg("disable-key", args)
	if err != nil {
		return err
	}
	return runAdminCall(
		f,
		ledger.NewDisableKeyCall(keyId),
		out,
		fmt.Sprintf("key %d disabled", keyId),
	)
}
