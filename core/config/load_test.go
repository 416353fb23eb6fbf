package config

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/jobsh/config.yaml", []byte(`
prompt_env: PS
default_prompt: "$ "
history_file: history
history_limit: 10
event_log: events.log
color: false
`), 0600))

	for _, path := range []string{"/etc/jobsh", "/etc/jobsh/config.yaml"} {
		t.Run(path, func(t *testing.T) {
			cfg, err := LoadFs(fs, path)
			require.NoError(t, err)

			assert.Equal(t, "PS", cfg.PromptEnv)
			assert.Equal(t, "$ ", cfg.DefaultPrompt)
			assert.Equal(t, 10, cfg.HistoryLimit)
			assert.False(t, cfg.Color)
		})
	}

	t.Run("files are relative to the config dir", func(t *testing.T) {
		cfg, err := LoadFs(fs, "/etc/jobsh")
		require.NoError(t, err)

		fd, err := cfg.OpenEventLog()
		require.NoError(t, err)
		_, err = fd.Write([]byte("{}\n"))
		require.NoError(t, err)
		require.NoError(t, fd.Close())

		contents, err := afero.ReadFile(fs, "/etc/jobsh/events.log")
		require.NoError(t, err)
		assert.Equal(t, "{}\n", string(contents))
	})
}

func TestLoadFs_errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "unknown/config.yaml", []byte("unknown_field: 1\n"), 0600))
	require.NoError(t, afero.WriteFile(fs, "invalid/config.yaml", []byte("prompt_env: \"\"\ndefault_prompt: x\n"), 0600))

	_, err := LoadFs(fs, "missing")
	assert.Error(t, err)

	_, err = LoadFs(fs, "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_field")

	_, err = LoadFs(fs, "invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt_env")
}

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	cfg, err := Initialize(tempDir, log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)
	assert.Equal(t, Default(), withoutFs(cfg))

	// Check that the config is valid
	_, err = Load(filepath.Join(tempDir, ConfigurationName))
	require.NoError(t, err)

	t.Run("OpenHistory", func(t *testing.T) {
		cfg.HistoryFile = "history"

		fd, err := cfg.CreateHistory()
		require.NoError(t, err)
		fd.WriteString("ls\n")
		fd.Close()

		fd, err = cfg.OpenHistory()
		require.NoError(t, err)
		defer fd.Close()
		contents, err := ioutil.ReadAll(fd)
		require.NoError(t, err)
		assert.Equal(t, "ls\n", string(contents))
	})

	t.Run("ReadEventLog", func(t *testing.T) {
		cfg.EventLog = "events.log"

		fd, err := cfg.OpenEventLog()
		require.NoError(t, err)
		fd.Close()

		fd, err = cfg.ReadEventLog()
		assert.NoError(t, err)
		fd.Close()
	})
}

func TestInitializeFs_keepsExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cfg/config.yaml", []byte("prompt_env: PS\ndefault_prompt: x\n"), 0600))

	cfg, err := InitializeFs(fs, "cfg", log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)

	assert.Equal(t, "PS", cfg.PromptEnv)
}

func withoutFs(c *Configuration) *Configuration {
	out := *c
	out.configFs = nil
	return &out
}
