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
	"strings"

	"github.com/edwingeng/deque"
)

type entryKind uint8

const (
	entryValue entryKind = iota
	entryOperator
	entryGroup // an open "("
)

// entry is one slot of the evaluation stack.
type entry struct {
	kind entryKind
	val  Value
	op   *Operator
	pos  int
}

func (e entry) String() string {
	switch e.kind {
	case entryValue:
		return e.val.String()
	case entryOperator:
		if e.op.Arity == 1 {
			return e.op.Symbol + "u"
		}
		return e.op.Symbol
	default:
		return "("
	}
}

// evalStack holds values, pending operators and group markers in a
// single sequence. It lives for one evaluation only.
type evalStack struct {
	dq deque.Deque
}

func newEvalStack() *evalStack {
	return &evalStack{dq: deque.NewDeque()}
}

func (s *evalStack) len() int { return s.dq.Len() }

func (s *evalStack) push(e entry) { s.dq.PushBack(e) }

func (s *evalStack) pop() (entry, bool) {
	if s.dq.Empty() {
		return entry{}, false
	}
	return s.dq.PopBack().(entry), true
}

// peek returns the entry depth slots below the top; peek(0) is the top.
func (s *evalStack) peek(depth int) (entry, bool) {
	n := s.dq.Len()
	if depth < 0 || depth >= n {
		return entry{}, false
	}
	return s.dq.Peek(n - 1 - depth).(entry), true
}

// pending returns the operator waiting for its right operand: the top
// entry if it is an operator, else the one just below a top value. A "("
// in that slot shields everything underneath.
func (s *evalStack) pending() *Operator {
	e, ok := s.peek(0)
	if ok && e.kind == entryValue {
		e, ok = s.peek(1)
	}
	if !ok || e.kind != entryOperator {
		return nil
	}
	return e.op
}

func (s *evalStack) String() string {
	parts := make([]string, s.dq.Len())
	for i := range parts {
		parts[i] = s.dq.Peek(i).(entry).String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
