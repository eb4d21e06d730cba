package person

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNormalizePhone verifies canonicalization of user-supplied phone formats.
func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"0031 6 12345678": "+31612345678",
		"0612345678":      "+31612345678",
		"06-12 34 56 78":  "+31612345678",
		"+31612345678":    "+31612345678",
		"(06) 12345678":   "+31612345678",
		"31612345678":     "+31612345678",
		"004915123456789": "+4915123456789",
		"":                "",
		"abc":             "",
	}
	for raw, want := range cases {
		require.Equal(t, want, NormalizePhone(raw, "31"), "input %q", raw)
	}

	// Country code may be supplied with a leading plus.
	require.Equal(t, "+32475123456", NormalizePhone("0475 12 34 56", "+32"))
}
