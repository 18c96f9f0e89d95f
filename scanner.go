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
	"strconv"
	"strings"
)

// Two-character operators, tried before any single-character operator.
var longOperators = []string{"&&", "||", ">>", "<<", "<=", ">=", "==", "!="}

const shortOperators = "*/%+-!~<>&^|"

// Scan splits expr into tokens and appends a TokenEnd sentinel.
//
// A leading "#if" at offset 0 is skipped. On a lexical error Scan returns
// the tokens recognized so far together with a *LexError pointing at the
// first byte it could not consume.
func Scan(expr string) ([]Token, error) {
	toks := make([]Token, 0, 8)

	i := 0
	if strings.HasPrefix(expr, "#if") && (len(expr) == 3 || !isIdentPart(expr[3])) {
		i = 3
	}

	for i < len(expr) {
		ch := expr[i]
		switch {
		case isSpace(ch):
			i++

		case isIdentStart(ch):
			j := i + 1
			for j < len(expr) && isIdentPart(expr[j]) {
				j++
			}
			kind := TokenIdent
			if expr[i:j] == "defined" {
				kind = TokenDefined
			}
			toks = append(toks, Token{Kind: kind, Text: expr[i:j], Pos: i})
			i = j

		case isDigit(ch):
			j := i + 1
			for j < len(expr) && isDigit(expr[j]) {
				j++
			}
			n, err := strconv.ParseInt(expr[i:j], 10, 64)
			if err != nil {
				return toks, NewLexError(expr, i, "integer literal out of range")
			}
			toks = append(toks, Token{Kind: TokenNumber, Text: expr[i:j], Value: n, Pos: i})
			i = j

		case ch == '(':
			toks = append(toks, Token{Kind: TokenLParen, Text: "(", Pos: i})
			i++

		case ch == ')':
			toks = append(toks, Token{Kind: TokenRParen, Text: ")", Pos: i})
			i++

		default:
			op := matchOperator(expr[i:])
			if op == "" {
				return toks, NewLexError(expr, i, fmt.Sprintf("unrecognized character %q", ch))
			}
			toks = append(toks, Token{Kind: TokenOperator, Text: op, Pos: i})
			i += len(op)
		}
	}

	toks = append(toks, Token{Kind: TokenEnd, Pos: len(expr)})
	return toks, nil
}

func matchOperator(s string) string {
	for _, op := range longOperators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	if strings.IndexByte(shortOperators, s[0]) >= 0 {
		return s[:1]
	}
	return ""
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

// IsIdentifier reports whether s is a valid macro name.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
