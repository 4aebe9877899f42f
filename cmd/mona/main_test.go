package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mona/internal/release"
	"github.com/slipstream/mona/internal/resolver"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	names := make(map[string]bool)
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"serve", "poster", "fanart", "torrent-art"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCommand_Help(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "poster")
}

func TestPosterCommand_RequiresQuery(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"poster"})

	assert.Error(t, root.Execute())
}

func TestTorrentArtCommand_RejectsForeignURL(t *testing.T) {
	t.Chdir(t.TempDir())

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"torrent-art", "https://example.com/view/1"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid url")
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("MONA_SERVER_PORT=4321\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MONA_SERVER_PORT") })

	cfg, err := loadConfig(&globalOptions{envFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, 4321, cfg.Server.Port)

	_, err = loadConfig(&globalOptions{envFile: filepath.Join(dir, "absent.env")})
	assert.NoError(t, err, "a missing env file is not an error")
}

func TestPrintResult(t *testing.T) {
	q := release.Parsed{Title: "Show", Seasons: []string{"2"}, FileName: "Show S02"}
	art := resolver.Artwork{URL: "https://a/b.jpg", Source: resolver.SourceSeason}

	var plain bytes.Buffer
	require.NoError(t, printResult(&plain, q, art, true, nil, false))
	assert.Equal(t, "https://a/b.jpg\n", plain.String())

	var structured bytes.Buffer
	require.NoError(t, printResult(&structured, q, art, true, nil, true))
	var out resolveOutput
	require.NoError(t, json.Unmarshal(structured.Bytes(), &out))
	assert.Equal(t, "2", out.Season)
	assert.Equal(t, resolver.SourceSeason, out.Source)

	assert.ErrorIs(t, printResult(&plain, q, art, false, nil, false), errNotFound)
}
