package command

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestEnumValue(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name      string
		value     string
		expected  string
		expectErr bool
	}{
		{
			name:     "allowed value",
			value:    "debug",
			expected: "debug",
		},
		{
			name:      "disallowed value",
			value:     "verbose",
			expectErr: true,
		},
		{
			name:     "unset falls back to default",
			value:    "",
			expected: "info",
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := &EnumValue{
				Enum:    []string{"trace", "debug", "info", "error"},
				Default: "info",
			}

			if tc.value == "" {
				assert.Equal(t, tc.expected, e.String())
				return
			}

			err := e.Set(tc.value)
			if tc.expectErr {
				assert.Assert(t, err != nil)
				return
			}

			assert.NilError(t, err)
			assert.Equal(t, tc.expected, e.String())
		})
	}
}
