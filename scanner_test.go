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
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func num(n int64, pos int) Token {
	return Token{Kind: TokenNumber, Text: strconv.FormatInt(n, 10), Value: n, Pos: pos}
}

func ident(name string, pos int) Token { return Token{Kind: TokenIdent, Text: name, Pos: pos} }

func op(sym string, pos int) Token { return Token{Kind: TokenOperator, Text: sym, Pos: pos} }

func lparen(pos int) Token { return Token{Kind: TokenLParen, Text: "(", Pos: pos} }

func rparen(pos int) Token { return Token{Kind: TokenRParen, Text: ")", Pos: pos} }

func end(pos int) Token { return Token{Kind: TokenEnd, Pos: pos} }

type scanTest struct {
	name   string
	input  string
	output []Token
}

var scanTests = []scanTest{
	{
		"empty",
		"",
		[]Token{end(0)},
	},
	{
		"whitespace only",
		" \t\n",
		[]Token{end(3)},
	},
	{
		"simple sum",
		"1 + 2",
		[]Token{num(1, 0), op("+", 2), num(2, 4), end(5)},
	},
	{
		"leading #if is stripped",
		"#if defined(A)",
		[]Token{
			{Kind: TokenDefined, Text: "defined", Pos: 4},
			lparen(11), ident("A", 12), rparen(13), end(14),
		},
	},
	{
		"#if without space",
		"#if(1)",
		[]Token{lparen(3), num(1, 4), rparen(5), end(6)},
	},
	{
		"long operators are greedy",
		"a&&b||c>>1<<2",
		[]Token{
			ident("a", 0), op("&&", 1), ident("b", 3), op("||", 4), ident("c", 6),
			op(">>", 7), num(1, 9), op("<<", 10), num(2, 12), end(13),
		},
	},
	{
		"comparison operators",
		"a<=b>=c==d!=e<f>g",
		[]Token{
			ident("a", 0), op("<=", 1), ident("b", 3), op(">=", 4), ident("c", 6),
			op("==", 7), ident("d", 9), op("!=", 10), ident("e", 12),
			op("<", 13), ident("f", 14), op(">", 15), ident("g", 16), end(17),
		},
	},
	{
		"single character bitwise operators",
		"x&y|z^w",
		[]Token{ident("x", 0), op("&", 1), ident("y", 2), op("|", 3), ident("z", 4), op("^", 5), ident("w", 6), end(7)},
	},
	{
		"stacked negation",
		"!!x",
		[]Token{op("!", 0), op("!", 1), ident("x", 2), end(3)},
	},
	{
		"defined prefix of a longer identifier",
		"definedX defined_ defined",
		[]Token{
			ident("definedX", 0), ident("defined_", 9),
			{Kind: TokenDefined, Text: "defined", Pos: 18}, end(25),
		},
	},
	{
		"identifiers with digits and underscores",
		"_A1 __linux__ x86_64",
		[]Token{ident("_A1", 0), ident("__linux__", 4), ident("x86_64", 14), end(20)},
	},
	{
		"number followed by identifier",
		"10abc",
		[]Token{num(10, 0), ident("abc", 2), end(5)},
	},
	{
		"largest literal",
		"9223372036854775807",
		[]Token{num(math.MaxInt64, 0), end(19)},
	},
	{
		"unary operators",
		"-~+1",
		[]Token{op("-", 0), op("~", 1), op("+", 2), num(1, 3), end(4)},
	},
}

func TestScan(t *testing.T) {
	for _, tt := range scanTests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scan(tt.input)
			if err != nil {
				t.Fatalf("scan error: %v", err)
			}
			if diff := cmp.Diff(tt.output, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type badScanTest struct {
	input     string
	pos       int
	remainder string
}

var badScanTests = []badScanTest{
	{"1 $ 2", 2, "$ 2"},
	{"a = b", 2, "= b"},
	{"#ifdef X", 0, "#ifdef X"},
	{" #if 1", 1, "#if 1"},
	{"1.5", 1, ".5"},
	{"'a'", 0, "'a'"},
	{"x ? 1 : 0", 2, "? 1 : 0"},
	{"a, b", 1, ", b"},
	{"99999999999999999999", 0, "99999999999999999999"},
}

func TestBadScan(t *testing.T) {
	for _, tt := range badScanTests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Scan(tt.input)
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %v", err)
			}
			if lexErr.Pos != tt.pos {
				t.Errorf("position: want %d, got %d", tt.pos, lexErr.Pos)
			}
			if diff := cmp.Diff(tt.remainder, lexErr.Remainder); diff != "" {
				t.Errorf("remainder mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanKeepsPartialTokens(t *testing.T) {
	toks, err := Scan("a + $")
	if err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff([]Token{ident("a", 0), op("+", 2)}, toks); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestScanProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("an identifier scans to one token", prop.ForAll(
		func(name string) bool {
			toks, err := Scan(name)
			if err != nil || len(toks) != 2 {
				return false
			}
			want := TokenIdent
			if name == "defined" {
				want = TokenDefined
			}
			return toks[0].Kind == want && toks[0].Text == name && toks[1].Kind == TokenEnd
		},
		gen.Identifier(),
	))

	properties.Property("a decimal literal keeps its value", prop.ForAll(
		func(n int64) bool {
			toks, err := Scan(strconv.FormatInt(n, 10))
			return err == nil && len(toks) == 2 && toks[0].Kind == TokenNumber && toks[0].Value == n
		},
		gen.Int64Range(0, math.MaxInt64),
	))

	properties.Property("whitespace between tokens does not matter", prop.ForAll(
		func(a, b int64, pad string) bool {
			tight, err1 := Scan(strconv.FormatInt(a, 10) + "+" + strconv.FormatInt(b, 10))
			loose, err2 := Scan(pad + strconv.FormatInt(a, 10) + pad + "+" + pad + strconv.FormatInt(b, 10) + pad)
			if err1 != nil || err2 != nil || len(tight) != len(loose) {
				return false
			}
			for i := range tight {
				if tight[i].Kind != loose[i].Kind || tight[i].Text != loose[i].Text {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 1<<40),
		gen.Int64Range(0, 1<<40),
		gen.OneConstOf("", " ", "\t", "  \t "),
	))

	properties.TestingRun(t)
}

func TestIsIdentifier(t *testing.T) {
	for s, want := range map[string]bool{
		"A":         true,
		"_":         true,
		"__linux__": true,
		"x86_64":    true,
		"":          false,
		"1A":        false,
		"A-B":       false,
		"A B":       false,
	} {
		if got := IsIdentifier(s); got != want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", s, got, want)
		}
	}
}
