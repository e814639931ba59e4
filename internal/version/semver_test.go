package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseSemver covers leading-v stripping, suffix tolerance and malformed inputs.
func TestParseSemver(t *testing.T) {
	t.Parallel()

	cases := map[string]Semver{
		"1.2.3":       {Major: 1, Minor: 2, Patch: 3},
		"v22.12.0":    {Major: 22, Minor: 12, Patch: 0},
		"V10.0.1":     {Major: 10, Minor: 0, Patch: 1},
		"1.2.3-rc.1":  {Major: 1, Minor: 2, Patch: 3},
		"2.0.0+build": {Major: 2, Minor: 0, Patch: 0},
		"1.2.3.4":     {Major: 1, Minor: 2, Patch: 3},
	}
	for input, want := range cases {
		got, err := ParseSemver(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "1.2", "a.b.c", "1.x.3", "..", "v"} {
		_, err := ParseSemver(input)
		require.Error(t, err, input)
	}
}

// TestSemverCompare ensures ordering is numeric per component, not lexicographic.
func TestSemverCompare(t *testing.T) {
	t.Parallel()

	nine, err := ParseSemver("9.0.0")
	require.NoError(t, err)

	ten, err := ParseSemver("10.0.0")
	require.NoError(t, err)

	require.Equal(t, -1, nine.Compare(ten))
	require.Equal(t, 1, ten.Compare(nine))
	require.Equal(t, 0, ten.Compare(ten))

	require.True(t, ten.AtLeast(nine))
	require.True(t, ten.AtLeast(ten))
	require.False(t, nine.AtLeast(ten))
}

// TestSemverMinimumRuntime mirrors the runtime minimum check: 22.11.9 does not
// satisfy a 22.12.0 minimum even though major and minor look close.
func TestSemverMinimumRuntime(t *testing.T) {
	t.Parallel()

	reported, err := ParseSemver("22.11.9")
	require.NoError(t, err)

	minimum, err := ParseSemver("22.12.0")
	require.NoError(t, err)

	require.False(t, reported.AtLeast(minimum))
	require.Equal(t, "22.11.9", reported.String())
}
