/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cppcond

import (
	"fmt"

	"go.uber.org/zap"
)

// defined handles `defined NAME` and `defined ( NAME )`. The result tests
// presence in the environment, not the stored value.
func (r *run) defined(kw Token) error {
	if !r.operand {
		return NewUnexpectedTokenError(kw, "expected an operator")
	}

	tok := r.advance()
	parens := tok.Kind == TokenLParen
	if parens {
		tok = r.advance()
	}
	if tok.Kind != TokenIdent {
		return NewMalformedDefinedError(tok.Pos, fmt.Sprintf("expected a macro name, got %s", tok))
	}
	name := tok.Text

	if parens {
		if closing := r.advance(); closing.Kind != TokenRParen {
			return NewMalformedDefinedError(closing.Pos, fmt.Sprintf("expected ) after defined(%s, got %s", name, closing))
		}
	}

	_, ok := r.env.Lookup(name)
	v, err := r.drainUnary(Bool(ok))
	if err != nil {
		return err
	}
	if r.trace {
		r.log.Debug("defined", zap.String("name", name), zap.Bool("present", ok), zap.Stringer("value", v))
	}

	r.stack.push(entry{kind: entryValue, val: v, pos: kw.Pos})
	r.cursor = r.stack.pending()
	r.operand = false
	return nil
}

// drainUnary applies the prefix operators sitting directly on top of the
// stack to v, nearest first, as in !!defined(X).
func (r *run) drainUnary(v Value) (Value, error) {
	for {
		top, ok := r.stack.peek(0)
		if !ok || top.kind != entryOperator || top.op.Arity != 1 {
			return v, nil
		}
		r.stack.pop()

		var err error
		if v, err = top.op.unary(v); err != nil {
			return Value{}, NewArithmeticError(top.pos, top.op.Symbol, err.Error())
		}
	}
}
