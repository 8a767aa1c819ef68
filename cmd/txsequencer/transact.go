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
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blinklabs-io/txsequencer/ledger"
)

type transactFlags struct {
	flagset  *flag.FlagSet
	version  uint
	keyId    uint
	dataHex  string
	dataFile string
}

func newTransactFlags() *transactFlags {
	f := &transactFlags{
		flagset: flag.NewFlagSet("transact", flag.ContinueOnError),
	}
	f.flagset.UintVar(&f.version, "version", 0, "transaction format version")
	f.flagset.UintVar(&f.keyId, "key-id", 0, "encryption key id (0 for unencrypted)")
	f.flagset.StringVar(&f.dataHex, "data", "", "hex-encoded payload")
	f.flagset.StringVar(&f.dataFile, "data-file", "", "file containing the raw payload")
	return f
}

func (f *transactFlags) payload() ([]byte, error) {
	switch {
	case f.dataHex != "" && f.dataFile != "":
		return nil, errors.New("only one of -data or -data-file may be specified")
	case f.dataFile != "":
		return os.ReadFile(f.dataFile)
	default:
		return hex.DecodeString(strings.TrimPrefix(f.dataHex, "0x"))
	}
}

func cmdTransact(f *globalFlags, args []string, out io.Writer) error {
	transactFlags := newTransactFlags()
	transactFlags.flagset.SetOutput(out)
	if err := transactFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	version, err := uint32Arg("version", transactFlags.version)
	if err != nil {
		return err
	}
	keyId, err := uint32Arg("key-id", transactFlags.keyId)
	if err != nil {
		return err
	}
	data, err := transactFlags.payload()
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	return withApp(f, func(ctx context.Context, a *app) error {
		result, err := a.submit(ctx, f, ledger.NewTransactCall(version, keyId, data))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "accepted: %s\n", result.Record)
		return nil
	})
}

func uint32Arg(name string, value uint) (uint32, error) {
	if uint64(value) > uint64(^uint32(0)) {
		return 0, fmt.Errorf("-%s out of range: %d", name, value)
	}
	return uint32(value), nil
}
