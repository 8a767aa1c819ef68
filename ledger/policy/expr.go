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

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/blinklabs-io/txsequencer/ledger"
	"github.com/blinklabs-io/txsequencer/ledger/common"
)

var _ ledger.AuthorityPolicy = (*ExprPolicy)(nil)

// ExprPolicy grants authority when an expr-lang expression evaluates to true
type ExprPolicy struct {
	expression string
	program    *exprvm.Program
}

// NewExprPolicy compiles expression, for example
// `origin.kind == "root" || origin.identity in ["acct1..."]`
func NewExprPolicy(expression string) (*ExprPolicy, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	program, err := exprlang.Compile(
		expression,
		exprlang.Env(exprEnv(common.NoneOrigin())),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile expr expression: %w", err)
	}
	return &ExprPolicy{
		expression: expression,
		program:    program,
	}, nil
}

func exprEnv(origin common.Origin) map[string]any {
	return map[string]any{
		VarOrigin: originFields(origin),
	}
}

func (p *ExprPolicy) Authorize(origin common.Origin) error {
	result, err := exprlang.Run(p.program, exprEnv(origin))
	if err != nil {
		return fmt.Errorf("evaluate expr expression: %w", err)
	}
	return resultAsBool(p.expression, result)
}
