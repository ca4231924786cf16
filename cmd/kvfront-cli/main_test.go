package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boldorider4/kvfront/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile, profile, endpoint, token = "", "", "", ""
	t.Setenv("KVFRONT_ENDPOINT", "")
	t.Setenv("KVFRONT_TOKEN", "")
	t.Setenv("KVFRONT_PROFILE", "")
	t.Setenv("KVFRONT_CONFIG", "")
	t.Cleanup(func() {
		cfgFile, profile, endpoint, token = "", "", "", ""
	})
}

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:8787", Token: "local-token", Default: true},
		{Name: "staging", Endpoint: "https://staging.example.com"},
	}}
	require.NoError(t, cf.Save(path))
	return path
}

func TestBuildConfig(t *testing.T) {
	t.Run("default profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, &clientcli.Config{Endpoint: "http://localhost:8787", Token: "local-token"}, cfg)
	})

	t.Run("profile from env", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		t.Setenv("KVFRONT_PROFILE", "staging")

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://staging.example.com", cfg.Endpoint)
		assert.Empty(t, cfg.Token)
	})

	t.Run("env overrides profile and flags override env", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		t.Setenv("KVFRONT_ENDPOINT", "http://env.example.com")
		t.Setenv("KVFRONT_TOKEN", "env-token")
		token = "flag-token"

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://env.example.com", cfg.Endpoint)
		assert.Equal(t, "flag-token", cfg.Token)
	})

	t.Run("unknown profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		profile = "missing"

		_, err := buildConfig()
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("missing default config file is ignored", func(t *testing.T) {
		resetFlags(t)
		t.Setenv("KVFRONT_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		endpoint = "http://flag.example.com"

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://flag.example.com", cfg.Endpoint)
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		resetFlags(t)
		cfgFile = filepath.Join(t.TempDir(), "absent.yaml")

		_, err := buildConfig()
		assert.ErrorContains(t, err, "read config file")
	})
}

func TestPutContent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "content.txt")
	require.NoError(t, writeFile(file, "from file"))

	tests := []struct {
		name    string
		args    []string
		file    string
		stdin   string
		want    string
		wantErr string
	}{
		{name: "argument", args: []string{"alpha", "hello"}, want: "hello"},
		{name: "file", args: []string{"alpha"}, file: file, want: "from file"},
		{name: "stdin", args: []string{"alpha"}, file: "-", stdin: "piped\n", want: "piped\n"},
		{name: "both", args: []string{"alpha", "hello"}, file: file, wantErr: "mutually exclusive"},
		{name: "none", args: []string{"alpha"}, wantErr: "content is required"},
		{name: "missing file", args: []string{"alpha"}, file: file + ".missing", wantErr: "read file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := putContent(tt.args, tt.file, strings.NewReader(tt.stdin))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
