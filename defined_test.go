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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinedCombinations(t *testing.T) {
	env := Macros{"a": Int(1), "c": Int(1)}

	tests := []struct {
		expr string
		want bool
	}{
		{"defined(a)", true},
		{"defined a", true},
		{"!defined(a)", false},
		{"defined(a) && defined b", false},
		{"defined(a) && !defined b", true},
		{"!defined(a) && defined b", false},
		{"!defined(a) && !defined b", false},
		{"defined(a) || defined b", true},
		{"defined(a) || !defined b", true},
		{"!defined(a) || defined b", false},
		{"!defined(a) || !defined b", true},
		{"defined a && defined b && defined c", false},
		{"defined a && !defined b && defined c", true},
		{"defined a || defined b || defined c", true},
		{"!defined a || defined b || !defined c", false},
		{"defined a && defined b || defined c", true},
		{"defined a || defined b && defined c", true},
		{"!defined a || defined b && defined c", false},
		{"defined(a) && defined(b) || !defined c && defined(d)", false},
		{"(defined a || defined b) && defined c", true},
		{"(defined a || defined b) && defined d", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr, env)
			require.NoError(t, err)
			assert.Equal(t, Bool(tt.want), got)
		})
	}
}

func TestDefinedTestsPresence(t *testing.T) {
	env := Macros{"ZERO": Int(0), "FALSE": Bool(false)}

	for _, expr := range []string{"defined ZERO", "defined(ZERO)", "defined(FALSE)", "defined ( ZERO )"} {
		got, err := Evaluate(expr, env)
		require.NoError(t, err, expr)
		assert.Equal(t, Bool(true), got, expr)
	}

	got, err := Evaluate("defined(ONE)", env)
	require.NoError(t, err)
	assert.Equal(t, Bool(false), got)
}

func TestDefinedWithPrefixOperators(t *testing.T) {
	env := Macros{"A": Int(5)}

	runEvalTests(t, []evalTest{
		{"!!defined(A)", Bool(true)},
		{"!!!defined(A)", Bool(false)},
		{"!defined B", Bool(true)},
		{"-defined(A)", Int(-1)},
		{"~defined(B)", Int(-1)},
		{"defined(A) && 3", Bool(true)},
		{"defined(A) + defined(B) + defined A", Int(2)},
		{"defined(A) * A", Int(5)},
		{"(defined(A))", Bool(true)},
		{"!(defined(A) && defined(B))", Bool(true)},
		{"1 + !defined(B) * 4", Int(5)},
		{"defined(A) == 1", Bool(true)},
	}, env)
}

func TestDefinedWithEnvFunc(t *testing.T) {
	var looked []string
	env := EnvFunc(func(name string) (Value, bool) {
		looked = append(looked, name)
		return Int(7), name == "HIT"
	})

	got, err := Evaluate("defined(HIT) && !defined MISS", env)
	require.NoError(t, err)
	assert.Equal(t, Bool(true), got)
	assert.Equal(t, []string{"HIT", "MISS"}, looked)
}
