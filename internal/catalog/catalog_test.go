package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadValidatesEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.Len(t, c.Programs(), 4)

	program, ok := c.Get("csit")
	require.True(t, ok)
	require.Equal(t, "Bachelor of Science in Computer Science and IT", program.Name)
	require.Equal(t, 8, program.Semesters)
}

func TestDetect(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	cases := []struct {
		question string
		key      string
		found    bool
	}{
		{"How many semesters does CSIT have?", "csit", true},
		{"list students in BCA batch 2022", "bca", true},
		{"tell me about the computer science program", "csit", true},
		{"what about social work", "bsw", true},
		{"who is the principal", "", false},
		{"is bcash a program", "", false},
	}

	for _, tc := range cases {
		program, ok := c.Detect(tc.question)
		require.Equal(t, tc.found, ok, tc.question)
		if tc.found {
			require.Equal(t, tc.key, program.Key, tc.question)
		}
	}
}
