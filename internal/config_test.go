package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)

	config, err := LoadConfig()

	req.NoError(err)
	req.Equal("localhost:8888", config.Address())
	req.Equal(3, config.LimitComplaint)
	req.Equal(20, config.LimitMessage)
	req.Equal(240*time.Minute, config.BanWindow)
	req.Equal(60*time.Minute, config.RateWindow)
	req.Equal(time.Minute, config.DelayUnit)
	req.Equal(4096, config.MaxLineLength)
	req.Equal("*", config.CharacterReplacement)
	req.Empty(config.CensoredDir)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	req := require.New(t)

	// Given overridden limits
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("LIMIT_COMPLAINT", "5")
	t.Setenv("DELAY_UNIT", "1s")

	config, err := LoadConfig()

	req.NoError(err)
	req.Equal("0.0.0.0:9000", config.Address())
	req.Equal(5, config.LimitComplaint)
	req.Equal(time.Second, config.DelayUnit)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), ".env")
	req.NoError(os.WriteFile(path, []byte("LIMIT_MESSAGE=7\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("LIMIT_MESSAGE") })

	config, err := LoadConfig(path)

	req.NoError(err)
	req.Equal(7, config.LimitMessage)
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	req := require.New(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	req.Error(err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "no complaint limit", key: "LIMIT_COMPLAINT", value: "0"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "replacement too long", key: "CHARACTER_REPLACEMENT", value: "**"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "TRACE"},
		{name: "missing censored dir", key: "CENSORED_DIR", value: "/does/not/exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()

			req.Error(err)
		})
	}
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("€")
	req.NoError(err)
	req.Equal('€', r)

	_, err = CharacterRune("")
	req.Error(err)
}
