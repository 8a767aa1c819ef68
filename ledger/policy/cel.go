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

package policy

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"

	"github.com/blinklabs-io/txsequencer/ledger"
	"github.com/blinklabs-io/txsequencer/ledger/common"
)

var _ ledger.AuthorityPolicy = (*CELPolicy)(nil)

// CELPolicy grants authority when a CEL expression evaluates to true
type CELPolicy struct {
	expression string
	program    celgo.Program
}

// NewCELPolicy compiles expression, for example
// `origin.kind == "root" || origin.identity in ["acct1..."]`
func NewCELPolicy(expression string) (*CELPolicy, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	env, err := celgo.NewEnv(
		celgo.Variable(
			VarOrigin,
			celgo.MapType(celgo.StringType, celgo.StringType),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build CEL environment: %w", err)
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("parse CEL expression: %w", issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("check CEL expression: %w", issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("build CEL program: %w", err)
	}
	return &CELPolicy{
		expression: expression,
		program:    prg,
	}, nil
}

func (p *CELPolicy) Authorize(origin common.Origin) error {
	out, _, err := p.program.Eval(map[string]any{
		VarOrigin: originFields(origin),
	})
	if err != nil {
		return fmt.Errorf("evaluate CEL expression: %w", err)
	}
	return resultAsBool(p.expression, out.Value())
}
