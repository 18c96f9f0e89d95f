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

// Package cppcond evaluates C preprocessor conditional expressions, the
// text that follows #if and #elif, against a table of macro values.
//
// Evaluation is a single shunting-yard pass over the token stream with one
// stack that holds both operands and pending operators:
//
//	v, err := cppcond.Evaluate("defined(DEBUG) && LEVEL > 2", cppcond.Macros{
//		"DEBUG": cppcond.Int(1),
//		"LEVEL": cppcond.Int(3),
//	})
//
// Macro bodies are never expanded; an identifier that is not in the table
// evaluates to 0.
package cppcond

import (
	"go.uber.org/zap"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for tracing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTrace logs the token stream, stack and pending operator at debug
// level while evaluating. It never changes a result.
func WithTrace(on bool) Option {
	return func(e *Evaluator) { e.trace = on }
}

// Evaluator evaluates expressions. It holds no per-call state and is safe
// for concurrent use.
type Evaluator struct {
	log   *zap.Logger
	trace bool
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = New()

// Evaluate evaluates expr against env with the default Evaluator.
func Evaluate(expr string, env Environment) (Value, error) {
	return defaultEvaluator.Evaluate(expr, env)
}

// Truthy reports whether expr evaluates to a nonzero value.
func Truthy(expr string, env Environment) (bool, error) {
	v, err := defaultEvaluator.Evaluate(expr, env)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// Evaluate evaluates expr against env. A nil env has no macros defined.
// On error the zero Value is returned.
func (e *Evaluator) Evaluate(expr string, env Environment) (Value, error) {
	toks, err := Scan(expr)
	if err != nil {
		if e.trace {
			e.log.Debug("scan failed", zap.String("expr", expr), zap.Int("tokens", len(toks)), zap.Error(err))
		}
		return Value{}, err
	}
	if env == nil {
		env = Macros(nil)
	}

	r := &run{
		log:     e.log,
		trace:   e.trace,
		env:     env,
		toks:    toks,
		stack:   newEvalStack(),
		operand: true,
	}
	if e.trace {
		names := make([]string, len(toks))
		for i, tok := range toks {
			names[i] = tok.GoString()
		}
		e.log.Debug("scanned", zap.String("expr", expr), zap.Strings("tokens", names))
	}

	v, err := r.exec()
	if err != nil {
		if e.trace {
			e.log.Debug("evaluation failed", zap.String("expr", expr), zap.Error(err))
		}
		return Value{}, err
	}
	if e.trace {
		e.log.Debug("evaluated", zap.String("expr", expr), zap.Stringer("value", v))
	}
	return v, nil
}

// run is the state of one evaluation.
type run struct {
	log   *zap.Logger
	trace bool

	env   Environment
	toks  []Token
	next  int
	stack *evalStack

	// cursor is the operator waiting for its right operand, nil when there
	// is none or when a "(" was opened after it.
	cursor *Operator

	// operand is true while the next token must start an operand.
	operand bool
}

// advance returns the next token; once the end marker is reached it keeps
// returning it.
func (r *run) advance() Token {
	tok := r.toks[r.next]
	if r.next < len(r.toks)-1 {
		r.next++
	}
	return tok
}

func (r *run) exec() (Value, error) {
	for {
		tok := r.advance()
		if r.trace {
			r.log.Debug("token",
				zap.String("tok", tok.GoString()),
				zap.Stringer("stack", r.stack),
				zap.String("pending", r.cursorSymbol()))
		}

		var err error
		switch tok.Kind {
		case TokenNumber:
			err = r.pushOperand(tok, Int(tok.Value))
		case TokenIdent:
			v, ok := r.env.Lookup(tok.Text)
			if !ok {
				v = Int(0)
			}
			err = r.pushOperand(tok, v)
		case TokenDefined:
			err = r.defined(tok)
		case TokenLParen:
			err = r.openGroup(tok)
		case TokenOperator:
			err = r.operator(tok)
		case TokenRParen:
			err = r.closeGroup(tok)
		case TokenEnd:
			return r.finish(tok)
		default:
			err = NewUnexpectedTokenError(tok, "unsupported token")
		}
		if err != nil {
			return Value{}, err
		}
	}
}

func (r *run) pushOperand(tok Token, v Value) error {
	if !r.operand {
		return NewUnexpectedTokenError(tok, "expected an operator")
	}
	r.stack.push(entry{kind: entryValue, val: v, pos: tok.Pos})
	r.operand = false
	return nil
}

func (r *run) openGroup(tok Token) error {
	if !r.operand {
		return NewUnexpectedTokenError(tok, "expected an operator")
	}
	r.stack.push(entry{kind: entryGroup, pos: tok.Pos})
	r.cursor = nil
	return nil
}

func (r *run) operator(tok Token) error {
	if r.operand {
		// Prefix position: push without reducing, prefix operators are
		// right associative.
		op, ok := unaryOperators[tok.Text]
		if !ok {
			return NewUnexpectedTokenError(tok, "expected an operand")
		}
		r.stack.push(entry{kind: entryOperator, op: op, pos: tok.Pos})
		r.cursor = op
		return nil
	}

	op, ok := binaryOperators[tok.Text]
	if !ok {
		return NewUnexpectedTokenError(tok, "not a binary operator")
	}
	if err := r.reduce(op.Rank); err != nil {
		return err
	}
	r.stack.push(entry{kind: entryOperator, op: op, pos: tok.Pos})
	r.cursor = op
	r.operand = true
	return nil
}

func (r *run) closeGroup(tok Token) error {
	if r.operand {
		return NewUnexpectedTokenError(tok, "expected an operand")
	}
	if err := r.reduce(rankEnd); err != nil {
		return err
	}

	top, _ := r.stack.pop()
	g, ok := r.stack.pop()
	if !ok || g.kind != entryGroup {
		return NewUnexpectedTokenError(tok, "no matching (")
	}
	r.stack.push(top)
	r.cursor = r.stack.pending()
	return nil
}

func (r *run) finish(tok Token) (Value, error) {
	if r.operand {
		return Value{}, NewUnexpectedTokenError(tok, "expected an operand")
	}
	if err := r.reduce(rankEnd); err != nil {
		return Value{}, err
	}

	if g, ok := r.stack.peek(1); ok && g.kind == entryGroup {
		return Value{}, NewUnexpectedTokenError(Token{Kind: TokenLParen, Text: "(", Pos: g.pos}, "( is never closed")
	}
	if r.stack.len() != 1 {
		return Value{}, NewInternalConsistencyError(r.stack.len(), "expected exactly one value after the end marker")
	}
	top, _ := r.stack.pop()
	if top.kind != entryValue {
		return Value{}, NewInternalConsistencyError(1, "final stack entry is not a value")
	}
	return top.val, nil
}

// reduce applies pending operators while rank does not exceed the rank of
// the pending one. It stops at a "(" marker or the bottom of the stack.
func (r *run) reduce(rank int) error {
	for r.cursor != nil && rank <= r.cursor.Rank {
		if err := r.reduceOnce(); err != nil {
			return err
		}
		r.cursor = r.stack.pending()
		if r.trace {
			r.log.Debug("reduced", zap.Stringer("stack", r.stack), zap.String("pending", r.cursorSymbol()))
		}
	}
	return nil
}

// reduceOnce pops one operator with its operands and pushes the result.
func (r *run) reduceOnce() error {
	right, ok := r.stack.pop()
	if !ok || right.kind != entryValue {
		return NewInternalConsistencyError(r.stack.len(), "reduction without a right operand")
	}
	opEntry, ok := r.stack.pop()
	if !ok || opEntry.kind != entryOperator {
		return NewInternalConsistencyError(r.stack.len(), "reduction without an operator")
	}
	op := opEntry.op

	var v Value
	var err error
	if op.Arity == 1 {
		v, err = op.unary(right.val)
	} else {
		left, ok := r.stack.pop()
		if !ok || left.kind != entryValue {
			return NewUnexpectedTokenError(Token{Kind: TokenOperator, Text: op.Symbol, Pos: opEntry.pos}, "missing left operand")
		}
		v, err = op.binary(left.val, right.val)
	}
	if err != nil {
		return NewArithmeticError(opEntry.pos, op.Symbol, err.Error())
	}
	r.stack.push(entry{kind: entryValue, val: v, pos: opEntry.pos})
	return nil
}

func (r *run) cursorSymbol() string {
	if r.cursor == nil {
		return ""
	}
	return r.cursor.Symbol
}
