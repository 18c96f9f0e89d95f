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
	"errors"
	"sort"
)

// Precedence ranks; a higher rank binds tighter.
const (
	rankNone           = 0
	rankEnd            = 1 // ")" and the end marker
	rankLogical        = 2 // && ||
	rankBitOr          = 3
	rankBitXor         = 4
	rankBitAnd         = 5
	rankEquality       = 6
	rankRelational     = 7
	rankShift          = 8
	rankAdditive       = 9
	rankMultiplicative = 10
	rankUnary          = 11
	rankGroup          = 12 // "(" marker
)

// Associativity of an operator.
type Associativity uint8

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// Operator describes one entry of the operator table.
type Operator struct {
	Symbol string
	Rank   int
	Arity  int
	Assoc  Associativity

	unary  func(x Value) (Value, error)
	binary func(x, y Value) (Value, error)
}

var (
	errDivideByZero  = errors.New("division by zero")
	errNegativeShift = errors.New("negative shift count")
)

func intOp(f func(x, y int64) int64) func(x, y Value) (Value, error) {
	return func(x, y Value) (Value, error) { return Int(f(x.Int(), y.Int())), nil }
}

func cmpOp(f func(x, y int64) bool) func(x, y Value) (Value, error) {
	return func(x, y Value) (Value, error) { return Bool(f(x.Int(), y.Int())), nil }
}

func binary(sym string, rank int, f func(x, y Value) (Value, error)) *Operator {
	return &Operator{Symbol: sym, Rank: rank, Arity: 2, Assoc: LeftAssoc, binary: f}
}

func unary(sym string, f func(x Value) (Value, error)) *Operator {
	return &Operator{Symbol: sym, Rank: rankUnary, Arity: 1, Assoc: RightAssoc, unary: f}
}

// The tables are built once and only read afterwards.
var binaryOperators = map[string]*Operator{
	"*": binary("*", rankMultiplicative, intOp(func(x, y int64) int64 { return x * y })),
	"/": binary("/", rankMultiplicative, func(x, y Value) (Value, error) {
		if y.Int() == 0 {
			return Value{}, errDivideByZero
		}
		// Go's integer division truncates toward zero, like C.
		return Int(x.Int() / y.Int()), nil
	}),
	"%": binary("%", rankMultiplicative, func(x, y Value) (Value, error) {
		if y.Int() == 0 {
			return Value{}, errDivideByZero
		}
		return Int(x.Int() % y.Int()), nil
	}),
	"+": binary("+", rankAdditive, intOp(func(x, y int64) int64 { return x + y })),
	"-": binary("-", rankAdditive, intOp(func(x, y int64) int64 { return x - y })),
	">>": binary(">>", rankShift, func(x, y Value) (Value, error) {
		if y.Int() < 0 {
			return Value{}, errNegativeShift
		}
		return Int(x.Int() >> uint64(y.Int())), nil
	}),
	"<<": binary("<<", rankShift, func(x, y Value) (Value, error) {
		if y.Int() < 0 {
			return Value{}, errNegativeShift
		}
		return Int(x.Int() << uint64(y.Int())), nil
	}),
	">":  binary(">", rankRelational, cmpOp(func(x, y int64) bool { return x > y })),
	"<":  binary("<", rankRelational, cmpOp(func(x, y int64) bool { return x < y })),
	">=": binary(">=", rankRelational, cmpOp(func(x, y int64) bool { return x >= y })),
	"<=": binary("<=", rankRelational, cmpOp(func(x, y int64) bool { return x <= y })),
	"==": binary("==", rankEquality, cmpOp(func(x, y int64) bool { return x == y })),
	"!=": binary("!=", rankEquality, cmpOp(func(x, y int64) bool { return x != y })),
	"&":  binary("&", rankBitAnd, intOp(func(x, y int64) int64 { return x & y })),
	"^":  binary("^", rankBitXor, intOp(func(x, y int64) int64 { return x ^ y })),
	"|":  binary("|", rankBitOr, intOp(func(x, y int64) int64 { return x | y })),
	"&&": binary("&&", rankLogical, func(x, y Value) (Value, error) {
		return Bool(x.Truthy() && y.Truthy()), nil
	}),
	"||": binary("||", rankLogical, func(x, y Value) (Value, error) {
		return Bool(x.Truthy() || y.Truthy()), nil
	}),
}

var unaryOperators = map[string]*Operator{
	"!": unary("!", func(x Value) (Value, error) { return Bool(!x.Truthy()), nil }),
	"-": unary("-", func(x Value) (Value, error) { return Int(-x.Int()), nil }),
	"+": unary("+", func(x Value) (Value, error) { return Int(x.Int()), nil }),
	"~": unary("~", func(x Value) (Value, error) { return Int(^x.Int()), nil }),
}

// Operators returns a copy of the operator table ordered by descending
// rank, then by symbol.
func Operators() []Operator {
	ops := make([]Operator, 0, len(binaryOperators)+len(unaryOperators))
	for _, op := range unaryOperators {
		ops = append(ops, *op)
	}
	for _, op := range binaryOperators {
		ops = append(ops, *op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Rank != ops[j].Rank {
			return ops[i].Rank > ops[j].Rank
		}
		if ops[i].Symbol != ops[j].Symbol {
			return ops[i].Symbol < ops[j].Symbol
		}
		return ops[i].Arity < ops[j].Arity
	})
	return ops
}
