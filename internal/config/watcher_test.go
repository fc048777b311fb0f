package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DetectsWrite(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(configFile, []byte("gateway:\n  port: 8090\n"), 0644))

	fired := make(chan struct{}, 1)
	w := NewWatcher(tempDir, 50*time.Millisecond)
	w.onChange = func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(configFile, []byte("gateway:\n  port: 9999\n"), 0644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("expected change notification")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	tempDir := t.TempDir()

	fired := make(chan struct{}, 1)
	w := NewWatcher(tempDir, 20*time.Millisecond)
	w.onChange = func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "other.yaml"), []byte("x: 1\n"), 0644))

	select {
	case <-fired:
		t.Fatal("unrelated file should not trigger a notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	w := NewWatcher(tempDir, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
