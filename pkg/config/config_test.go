package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's own ama.yaml out of the test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("AMA_HOME", filepath.Join(dir, ".ama"))
	t.Chdir(dir)
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.True(t, config.Init.Commit)
	assert.Equal(t, "Amaterasu job repo init", config.Init.CommitMessage)
	assert.Equal(t, "master", config.Init.Branch)
	assert.Equal(t, OnExtraPrompt, config.Update.OnExtra)
	assert.Empty(t, config.Update.Ignore)
	assert.False(t, config.Update.RespectGitignore)
	assert.Empty(t, config.User.Name)
}

func TestLoadConfigFromFile(t *testing.T) {
	isolate(t)
	content := `
user:
  name: Naruto Uzumaki
  email: naruto@konoha.village
init:
  branch: main
update:
  ignore: ["*.md", ".gitkeep"]
  on_extra: keep
`
	require.NoError(t, os.WriteFile("ama.yaml", []byte(content), 0o644))

	config, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "Naruto Uzumaki", config.User.Name)
	assert.Equal(t, "naruto@konoha.village", config.User.Email)
	assert.Equal(t, "main", config.Init.Branch)
	assert.Equal(t, []string{"*.md", ".gitkeep"}, config.Update.Ignore)
	assert.Equal(t, OnExtraKeep, config.Update.OnExtra)
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	isolate(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("AMA_INIT_BRANCH", "develop")
	t.Setenv("AMA_UPDATE_ON_EXTRA", "delete")

	config, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "develop", config.Init.Branch)
	assert.Equal(t, OnExtraDelete, config.Update.OnExtra)
}

func TestLoadConfigRespectGitignore(t *testing.T) {
	isolate(t)
	t.Setenv("AMA_UPDATE_RESPECT_GITIGNORE", "true")

	config, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.True(t, config.Update.RespectGitignore)

	t.Setenv("AMA_UPDATE_RESPECT_GITIGNORE", "")
	require.NoError(t, os.WriteFile("ama.yaml", []byte("update:\n  respect_gitignore: true\n"), 0o644))
	fs := pflag.NewFlagSet("update", pflag.ContinueOnError)
	fs.Bool("respect-gitignore", false, "")
	require.NoError(t, fs.Parse([]string{"--respect-gitignore=false"}))

	config, err = LoadConfig("", fs)
	require.NoError(t, err)
	assert.False(t, config.Update.RespectGitignore, "the flag wins over the file")
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("ama.yaml", []byte("init:\n  commit_message: from file\n"), 0o644))

	fs := pflag.NewFlagSet("init", pflag.ContinueOnError)
	fs.String("message", "", "")
	fs.String("author-name", "", "")
	require.NoError(t, fs.Parse([]string{"--author-name", "Sasuke"}))

	config, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, "from file", config.Init.CommitMessage, "unchanged flag must not shadow the file")
	assert.Equal(t, "Sasuke", config.User.Name)
}

func TestLoadConfigRejectsUnknownOnExtra(t *testing.T) {
	isolate(t)
	t.Setenv("AMA_UPDATE_ON_EXTRA", "shred")

	_, err := LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update.on_extra")
}

func TestValidateBranch(t *testing.T) {
	c := Default()
	c.Init.Branch = "  "
	assert.Error(t, c.Validate())
}

func TestDefaultIsCopy(t *testing.T) {
	a := Default()
	a.Update.Ignore = append(a.Update.Ignore, "x")
	assert.Empty(t, Default().Update.Ignore)
}

func TestGetAmaHome(t *testing.T) {
	t.Setenv("AMA_HOME", "/opt/ama")
	home, err := GetAmaHome()
	require.NoError(t, err)
	assert.Equal(t, "/opt/ama", home)

	t.Setenv("AMA_HOME", "")
	t.Setenv("HOME", "/home/tester")
	home, err = GetAmaHome()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".ama"), home)
}
