package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, DEBUG, ParseLevel("debug"))
	require.Equal(t, DEBUG, ParseLevel("DEBUG"))
	require.Equal(t, WARN, ParseLevel("warn"))
	require.Equal(t, ERROR, ParseLevel("ERROR"))
	require.Equal(t, INFO, ParseLevel(""))
	require.Equal(t, INFO, ParseLevel("garbage"))
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zebra.log")
	l, err := New(Config{Level: WARN, FilePath: path})
	require.NoError(t, err)
	defer l.Close()

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept", F("key", "value"))
	l.Error("also kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.NotContains(t, out, "dropped")
	require.Contains(t, out, "WARN kept key=value")
	require.Contains(t, out, "ERROR also kept")
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zebra.log")
	l, err := New(Config{Level: INFO, FilePath: path, MaxSize: 128, MaxBackups: 2})
	require.NoError(t, err)
	defer l.Close()

	for i := 0; i < 10; i++ {
		l.Info("a reasonably long log line to push the file over the size cap")
	}

	_, err = os.Stat(path + ".1")
	require.NoError(t, err, "expected a rotated backup")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Less(t, info.Size(), int64(256), "active file restarts small after rotation")
}

func TestNoFileConfigured(t *testing.T) {
	l, err := New(Config{Level: INFO})
	require.NoError(t, err)
	l.Info("goes nowhere")
	require.NoError(t, l.Close())
}
