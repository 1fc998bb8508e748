package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd(t *testing.T) {
	e := newEnv(t)
	want := filepath.Join(e.home, ".life", "config.toml")

	out := e.mustRun("config", "path")
	assert.Equal(t, want, strings.TrimSpace(out))

	show := e.json("config", "show")
	assert.Equal(t, "sqlite", show["storage.driver"])
	assert.Equal(t, "", show["calendar.timezone"])

	e.mustRun("config", "set", "calendar.timezone", "Asia/Tokyo")
	assert.Equal(t, "Asia/Tokyo", e.json("config", "show")["calendar.timezone"])

	_, err := e.run("config", "set", "no.such_key", "1")
	assert.Error(t, err)

	// Bad timezones fail validation when the config is next loaded.
	e.mustRun("config", "set", "calendar.timezone", "Mars/Olympus")
	_, err = e.run("habit", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus")
}
