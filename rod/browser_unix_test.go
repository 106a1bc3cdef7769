//go:build integration && !windows

package rod_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/coursegrab/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_Close_KillsLauncherProcess(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithHeadless(true))
	require.NoError(t, err)

	pid := manager.LauncherPID()
	require.NotZero(t, pid, "launcher PID should be set")

	// Signal 0 checks the process exists
	err = syscall.Kill(pid, syscall.Signal(0))
	require.NoError(t, err, "launcher process should be running before Close()")

	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close(), "Close should be idempotent")

	assert.Eventually(t, func() bool {
		return syscall.Kill(pid, syscall.Signal(0)) != nil
	}, 5*time.Second, 100*time.Millisecond, "launcher process should exit after Close()")
}
