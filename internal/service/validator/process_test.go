package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchesTool(t *testing.T) {
	t.Parallel()

	require.True(t, matchesTool("openclaw", "openclaw"))
	require.True(t, matchesTool("OpenClaw.exe", "openclaw"))
	require.True(t, matchesTool("openclaw.cmd", "openclaw"))
	require.False(t, matchesTool("openclaw-bundler", "openclaw"))
	require.False(t, matchesTool("node", "openclaw"))
}
