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
	"strings"
)

// Environment resolves macro names during evaluation. The evaluator only
// reads from it; a name Lookup does not find is undefined.
type Environment interface {
	Lookup(name string) (Value, bool)
}

// Macros is a map-backed Environment. A nil Macros is an empty table.
type Macros map[string]Value

func (m Macros) Lookup(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

// Clone returns a copy of m that can be changed without affecting m.
func (m Macros) Clone() Macros {
	c := make(Macros, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// EnvFunc adapts a lookup function to Environment.
type EnvFunc func(name string) (Value, bool)

func (f EnvFunc) Lookup(name string) (Value, bool) { return f(name) }

// ParseMacro parses a command-line style definition, "NAME" or
// "NAME=EXPR". A bare NAME is defined as 1; EXPR is evaluated against an
// empty environment.
func ParseMacro(s string) (string, Value, error) {
	name, body := s, "1"
	if i := strings.IndexByte(s, '='); i >= 0 {
		name, body = s[:i], s[i+1:]
	}
	name = strings.TrimSpace(name)
	if !IsIdentifier(name) {
		return "", Value{}, fmt.Errorf("invalid macro name %q", name)
	}
	if strings.TrimSpace(body) == "" {
		return "", Value{}, fmt.Errorf("macro %s: empty value", name)
	}
	v, err := Evaluate(body, nil)
	if err != nil {
		return "", Value{}, fmt.Errorf("macro %s: %w", name, err)
	}
	return name, v, nil
}
