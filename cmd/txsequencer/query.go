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
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
)

func cmdStatus(f *globalFlags, args []string, out io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	return withApp(f, func(_ context.Context, a *app) error {
		maxSize, err := a.ledger.MaxTransactionSize()
		if err != nil {
			return err
		}
		lastTxId, err := a.ledger.LastTransactionId()
		if err != nil {
			return err
		}
		entries, err := a.ledger.Keys().Entries()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "max-transaction-size: %d\n", maxSize)
		fmt.Fprintf(out, "last-transaction-id: %d\n", lastTxId)
		fmt.Fprintf(out, "versions: %v\n", a.ledger.SupportedVersions())
		for _, keyId := range slices.Sorted(maps.Keys(entries)) {
			fmt.Fprintf(out, "key %d: enabled=%t\n", keyId, entries[keyId])
		}
		return nil
	})
}

type eventsFlags struct {
	flagset *flag.FlagSet
	after   uint64
	limit   int
}

func newEventsFlags() *eventsFlags {
	f := &eventsFlags{
		flagset: flag.NewFlagSet("events", flag.ContinueOnError),
	}
	f.flagset.Uint64Var(&f.after, "after", 0, "only show records with a greater tx id")
	f.flagset.IntVar(&f.limit, "limit", 100, "maximum number of records (0 for all)")
	return f
}

func cmdEvents(f *globalFlags, args []string, out io.Writer) error {
	eventsFlags := newEventsFlags()
	eventsFlags.flagset.SetOutput(out)
	if err := eventsFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	return withApp(f, func(_ context.Context, a *app) error {
		records, err := a.store.Events(eventsFlags.after, eventsFlags.limit)
		if err != nil {
			return err
		}
		for _, record := range records {
			fmt.Fprintf(out, "%s data=%x\n", record, record.Data)
		}
		return nil
	})
}
