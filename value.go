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

import "strconv"

// Kind tells which variant a Value holds.
type Kind uint8

const (
	KindInt Kind = iota
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is the result of an expression: either an integer or a boolean.
// Arithmetic and bitwise operators read a boolean as 0 or 1, logical
// operators read any nonzero integer as true.
//
// Values are comparable, so Int(3) == Int(3) and Bool(true) != Int(1).
type Value struct {
	kind Kind
	n    int64
}

// Int returns an integer Value.
func Int(n int64) Value { return Value{kind: KindInt, n: n} }

// Bool returns a boolean Value.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, n: 1}
	}
	return Value{kind: KindBool}
}

func (v Value) Kind() Kind { return v.kind }

// Int returns the integer reading of v; booleans become 0 or 1.
func (v Value) Int() int64 { return v.n }

// Truthy reports whether v is nonzero.
func (v Value) Truthy() bool { return v.n != 0 }

func (v Value) String() string {
	if v.kind == KindBool {
		return strconv.FormatBool(v.n != 0)
	}
	return strconv.FormatInt(v.n, 10)
}
