package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestAnonymizeIP(t *testing.T) {
	cases := map[string]string{
		"192.168.1.47":                 "192.168.1.0",
		"::ffff:10.0.0.9":              "10.0.0.0",
		"2001:db8:85a3::8a2e:370:7334": "2001:db8:85a3::",
		"":                             "unknown",
		"unknown":                      "unknown",
		"not-an-ip":                    "invalid",
	}
	for in, want := range cases {
		assert.Equal(t, want, AnonymizeIP(in), "input %q", in)
	}
}

func TestNewLevels(t *testing.T) {
	log, err := New(Config{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = New(Config{Level: "bogus", Development: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	log, err := New(Config{Level: "info", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	log.Info("hello file")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}
