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

// TokenKind is the lexical class of a Token.
type TokenKind int

const (
	TokenEnd TokenKind = iota
	TokenIdent
	TokenNumber
	TokenOperator
	TokenLParen
	TokenRParen
	TokenDefined
)

func (k TokenKind) String() string {
	switch k {
	case TokenEnd:
		return "END"
	case TokenIdent:
		return "IDENT"
	case TokenNumber:
		return "NUMBER"
	case TokenOperator:
		return "OP"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenDefined:
		return "DEFINED"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexical element of an expression.
type Token struct {
	Kind  TokenKind
	Text  string // identifier name, operator symbol or literal digits
	Value int64  // numeric value of a TokenNumber
	Pos   int    // byte offset in the input
}

func (t Token) String() string {
	switch t.Kind {
	case TokenIdent, TokenNumber, TokenOperator:
		return t.Text
	case TokenEnd:
		return "end of expression"
	default:
		return t.Kind.String()
	}
}

// GoString keeps %#v output short in trace logs.
func (t Token) GoString() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Pos)
}
