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

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

type issueTokenFlags struct {
	flagset  *flag.FlagSet
	identity string
	admin    bool
}

func newIssueTokenFlags() *issueTokenFlags {
	f := &issueTokenFlags{
		flagset: flag.NewFlagSet("issue-token", flag.ContinueOnError),
	}
	f.flagset.StringVar(&f.identity, "identity", "", "bech32 caller identity (acct1...)")
	f.flagset.BoolVar(&f.admin, "admin", false, "grant administrative authority")
	return f
}

func cmdIssueToken(f *globalFlags, args []string, out io.Writer) error {
	tokenFlags := newIssueTokenFlags()
	tokenFlags.flagset.SetOutput(out)
	if err := tokenFlags.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse subcommand args: %w", err)
	}
	if tokenFlags.identity == "" && !tokenFlags.admin {
		return errors.New("you must specify -identity or -admin")
	}
	var identity common.Identity
	if tokenFlags.identity != "" {
		var err error
		identity, err = common.NewIdentityFromString(tokenFlags.identity)
		if err != nil {
			return err
		}
	}
	gate, err := newGate(f)
	if err != nil {
		return err
	}
	token, err := gate.Issue(identity, tokenFlags.admin)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
