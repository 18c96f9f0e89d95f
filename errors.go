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

import "fmt"

// LexError reports input the scanner could not tokenize.
type LexError struct {
	Pos       int    // offset of the first unrecognized byte
	Remainder string // unconsumed input starting at Pos
	Reason    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at position %d: %s (unscanned %q)", e.Pos, e.Reason, e.Remainder)
}

// NewLexError creates a LexError for input[pos:].
func NewLexError(input string, pos int, reason string) *LexError {
	return &LexError{Pos: pos, Remainder: input[pos:], Reason: reason}
}

// MalformedDefinedError reports a `defined` operator without a proper
// operand, or a `defined(` without its closing parenthesis.
type MalformedDefinedError struct {
	Pos    int
	Reason string
}

func (e *MalformedDefinedError) Error() string {
	return fmt.Sprintf("malformed defined at position %d: %s", e.Pos, e.Reason)
}

func NewMalformedDefinedError(pos int, reason string) *MalformedDefinedError {
	return &MalformedDefinedError{Pos: pos, Reason: reason}
}

// UnexpectedTokenError reports a token the evaluator cannot place:
// a missing operand, an unmatched parenthesis, or an operator used in the
// wrong position.
type UnexpectedTokenError struct {
	Pos    int
	Token  string
	Reason string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected %s at position %d: %s", e.Token, e.Pos, e.Reason)
}

func NewUnexpectedTokenError(tok Token, reason string) *UnexpectedTokenError {
	return &UnexpectedTokenError{Pos: tok.Pos, Token: tok.String(), Reason: reason}
}

// InternalConsistencyError reports a stack shape the evaluator should
// never reach.
type InternalConsistencyError struct {
	Depth  int // stack depth at the point of failure
	Reason string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency error (stack depth %d): %s", e.Depth, e.Reason)
}

func NewInternalConsistencyError(depth int, reason string) *InternalConsistencyError {
	return &InternalConsistencyError{Depth: depth, Reason: reason}
}

// ArithmeticError reports an operation with no defined integer result,
// such as division by zero.
type ArithmeticError struct {
	Pos    int
	Op     string
	Reason string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("arithmetic error at position %d: %s: %s", e.Pos, e.Op, e.Reason)
}

func NewArithmeticError(pos int, op, reason string) *ArithmeticError {
	return &ArithmeticError{Pos: pos, Op: op, Reason: reason}
}
