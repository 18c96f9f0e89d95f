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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOperatorsOrdering(t *testing.T) {
	type row struct {
		Symbol string
		Rank   int
		Arity  int
	}
	var got []row
	for _, op := range Operators() {
		got = append(got, row{op.Symbol, op.Rank, op.Arity})
	}
	want := []row{
		{"!", rankUnary, 1}, {"+", rankUnary, 1}, {"-", rankUnary, 1}, {"~", rankUnary, 1},
		{"%", rankMultiplicative, 2}, {"*", rankMultiplicative, 2}, {"/", rankMultiplicative, 2},
		{"+", rankAdditive, 2}, {"-", rankAdditive, 2},
		{"<<", rankShift, 2}, {">>", rankShift, 2},
		{"<", rankRelational, 2}, {"<=", rankRelational, 2}, {">", rankRelational, 2}, {">=", rankRelational, 2},
		{"!=", rankEquality, 2}, {"==", rankEquality, 2},
		{"&", rankBitAnd, 2},
		{"^", rankBitXor, 2},
		{"|", rankBitOr, 2},
		{"&&", rankLogical, 2}, {"||", rankLogical, 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOperatorsIsACopy(t *testing.T) {
	ops := Operators()
	ops[0].Rank = rankNone
	if Operators()[0].Rank != rankUnary {
		t.Fatal("operator table changed through the returned slice")
	}
}

func TestOperatorRanksBetweenMarkers(t *testing.T) {
	for _, op := range Operators() {
		if op.Rank <= rankEnd || op.Rank >= rankGroup {
			t.Errorf("%s: rank %d outside (%d, %d)", op.Symbol, op.Rank, rankEnd, rankGroup)
		}
	}
}

func TestStackString(t *testing.T) {
	s := newEvalStack()
	s.push(entry{kind: entryGroup})
	s.push(entry{kind: entryValue, val: Int(4)})
	s.push(entry{kind: entryOperator, op: binaryOperators["*"]})
	s.push(entry{kind: entryOperator, op: unaryOperators["-"]})

	if got, want := s.String(), "[( 4 * -u]"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if op := s.pending(); op != unaryOperators["-"] {
		t.Errorf("pending: got %v", op)
	}

	s.push(entry{kind: entryValue, val: Int(2)})
	if op := s.pending(); op != unaryOperators["-"] {
		t.Errorf("pending under a value: got %v", op)
	}

	for s.len() > 2 {
		s.pop()
	}
	if op := s.pending(); op != nil {
		t.Errorf("pending behind a group: got %v", op)
	}
	if _, ok := s.peek(2); ok {
		t.Error("peek past the bottom succeeded")
	}
}
