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

func TestParseMacro(t *testing.T) {
	tests := []struct {
		in   string
		name string
		want Value
	}{
		{"DEBUG", "DEBUG", Int(1)},
		{"LEVEL=3", "LEVEL", Int(3)},
		{"NEG=-4", "NEG", Int(-4)},
		{" SPACED = 2 * 8 ", "SPACED", Int(16)},
		{"ON=1 == 1", "ON", Bool(true)},
		{"ZERO=0", "ZERO", Int(0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, v, err := ParseMacro(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestParseMacroErrors(t *testing.T) {
	for _, in := range []string{"", "=1", "1X", "A-B=2", "A=", "A=  ", "A=1 +", "A=$"} {
		t.Run(in, func(t *testing.T) {
			_, _, err := ParseMacro(in)
			assert.Error(t, err)
		})
	}

	_, _, err := ParseMacro("A=1 / 0")
	var arithErr *ArithmeticError
	assert.ErrorAs(t, err, &arithErr)
}

func TestMacrosClone(t *testing.T) {
	m := Macros{"A": Int(1)}
	c := m.Clone()
	c["B"] = Int(2)
	delete(c, "A")

	_, ok := m.Lookup("A")
	assert.True(t, ok)
	_, ok = m.Lookup("B")
	assert.False(t, ok)

	var empty Macros
	_, ok = empty.Lookup("A")
	assert.False(t, ok)
	assert.NotNil(t, empty.Clone())
}

func TestValue(t *testing.T) {
	assert.Equal(t, KindInt, Int(5).Kind())
	assert.Equal(t, KindBool, Bool(false).Kind())
	assert.Equal(t, int64(1), Bool(true).Int())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "-12", Int(-12).String())
	assert.True(t, Int(-1).Truthy())
	assert.False(t, Int(0).Truthy())
	assert.NotEqual(t, Int(1), Bool(true))
	assert.Equal(t, Int(0), Value{})
}
