package dispatch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/shintoio/ama/internal/manifest"
	"github.com/shintoio/ama/internal/prompt"
	"github.com/shintoio/ama/internal/repo"
	"github.com/shintoio/ama/internal/vcs"
	"github.com/shintoio/ama/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct{ err error }

func (h stubHandler) Handle() error { return h.err }

func withGlobalIdentity(t *testing.T, u vcs.User, err error) {
	t.Helper()
	orig := globalIdentity
	globalIdentity = func() (vcs.User, error) { return u, err }
	t.Cleanup(func() { globalIdentity = orig })
}

func TestDispatchUnknownCommand(t *testing.T) {
	err := Default().Dispatch("deploy", Args{})
	var unsupported *UnsupportedCommandError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "deploy", unsupported.Name)
	assert.Equal(t, `unsupported command "deploy"`, err.Error())
}

func TestDefaultCommands(t *testing.T) {
	assert.Equal(t, []string{CommandInit, CommandRun, CommandUpdate}, Default().Commands())
}

func TestRegisterDuplicate(t *testing.T) {
	d := New()
	factory := func(Args) (Handler, error) { return stubHandler{}, nil }
	require.NoError(t, d.Register("x", factory))
	assert.EqualError(t, d.Register("x", factory), "command x already registered")
}

func TestDispatchPassesArgsAndErrors(t *testing.T) {
	d := New()
	var got Args
	boom := errors.New("boom")
	require.NoError(t, d.Register("x", func(a Args) (Handler, error) {
		got = a
		return stubHandler{err: boom}, nil
	}))

	err := d.Dispatch("x", Args{Path: "some/where"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "some/where", got.Path)
	assert.NotNil(t, got.Config, "a default configuration is filled in")
	assert.NotNil(t, got.In)
	assert.NotNil(t, got.Out)
}

func TestDispatchFactoryError(t *testing.T) {
	d := New()
	boom := errors.New("bad args")
	require.NoError(t, d.Register("x", func(Args) (Handler, error) { return nil, boom }))
	assert.ErrorIs(t, d.Dispatch("x", Args{}), boom)
}

func TestInitCommand(t *testing.T) {
	withGlobalIdentity(t, vcs.User{Name: "Global Name", Email: "global@example.com"}, nil)
	root := filepath.Join(t.TempDir(), "daily-etl")
	var out bytes.Buffer

	cfg := config.Default()
	cfg.User.Email = "configured@example.com"
	err := Default().Dispatch(CommandInit, Args{
		Path:   root,
		Config: cfg,
		In:     strings.NewReader("\nsasuke@konoha.village\n"),
		Out:    &out,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), `Your name [Global Name]: `)
	assert.Contains(t, out.String(), `Your email [configured@example.com]: `)
	assert.Contains(t, out.String(), "Init complete")
	assert.Contains(t, out.String(), "Global Name <sasuke@konoha.village>")

	r, err := git.PlainOpen(root)
	require.NoError(t, err)
	head, err := r.Head()
	require.NoError(t, err)
	commit, err := r.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Global Name", commit.Author.Name)
	assert.Equal(t, "sasuke@konoha.village", commit.Author.Email)
	assert.Equal(t, cfg.Init.CommitMessage, commit.Message)

	data, err := os.ReadFile(filepath.Join(root, repo.ManifestFile))
	require.NoError(t, err)
	m, err := manifest.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "daily-etl", m.JobName)
}

func TestInitCommandAssumeYes(t *testing.T) {
	withGlobalIdentity(t, vcs.User{}, errors.New("no global config"))
	root := t.TempDir()

	cfg := config.Default()
	cfg.User = config.UserConfig{Name: "Ci Bot", Email: "ci@example.com"}
	err := Default().Dispatch(CommandInit, Args{
		Path:      root,
		AssumeYes: true,
		JobName:   "nightly",
		Config:    cfg,
		In:        strings.NewReader(""),
		Out:       &bytes.Buffer{},
	})
	require.NoError(t, err)

	r, err := git.PlainOpen(root)
	require.NoError(t, err)
	head, err := r.Head()
	require.NoError(t, err)
	commit, err := r.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Ci Bot", commit.Author.Name)
}

func TestInitCommandMissingIdentity(t *testing.T) {
	withGlobalIdentity(t, vcs.User{}, nil)
	root := t.TempDir()

	err := Default().Dispatch(CommandInit, Args{
		Path:      root,
		AssumeYes: true,
		Out:       &bytes.Buffer{},
	})
	var idErr *vcs.IdentityError
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, "Username is required!", err.Error())

	_, statErr := os.Stat(filepath.Join(root, ".git"))
	assert.True(t, os.IsNotExist(statErr), "no repository is initialized without an author")
}

func TestInitCommandNoCommit(t *testing.T) {
	withGlobalIdentity(t, vcs.User{}, errors.New("must not be read"))
	root := t.TempDir()
	cfg := config.Default()
	cfg.Init.Commit = false
	var out bytes.Buffer

	err := Default().Dispatch(CommandInit, Args{Path: root, Config: cfg, Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "skipped")

	_, statErr := os.Stat(filepath.Join(root, ".git"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInitCommandMissingParent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing", "job")
	err := Default().Dispatch(CommandInit, Args{Path: root, Out: &bytes.Buffer{}})
	var pathErr *repo.PathError
	assert.ErrorAs(t, err, &pathErr)
}

func scaffoldedRepo(t *testing.T, sources ...string) string {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Init.Commit = false
	require.NoError(t, Default().Dispatch(CommandInit, Args{Path: root, Config: cfg, Out: &bytes.Buffer{}}))
	for _, s := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(root, repo.SrcDir, s), []byte("x"), 0o644))
	}
	return root
}

func srcEntries(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, repo.SrcDir))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUpdateCommandPrompts(t *testing.T) {
	root := scaffoldedRepo(t, "old.sql", "stale.py")
	var out bytes.Buffer

	err := Default().Dispatch(CommandUpdate, Args{
		Path: root,
		In:   strings.NewReader("x\nd\nk\n"),
		Out:  &out,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out.String(), "is in src/ but not in maki.yml"), "invalid answers are asked again")
	assert.Equal(t, []string{"stale.py", "start.scala"}, srcEntries(t, root))
	assert.Contains(t, out.String(), "Update complete")
	assert.Contains(t, out.String(), "start.scala")
}

func TestUpdateCommandOnExtra(t *testing.T) {
	tests := []struct {
		mode string
		want []string
	}{
		{config.OnExtraKeep, []string{"a.r", "b.r", "start.scala"}},
		{config.OnExtraDelete, []string{"start.scala"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			root := scaffoldedRepo(t, "a.r", "b.r")
			cfg := config.Default()
			cfg.Update.OnExtra = tt.mode

			err := Default().Dispatch(CommandUpdate, Args{
				Path:   root,
				Config: cfg,
				In:     strings.NewReader(""),
				Out:    &bytes.Buffer{},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, srcEntries(t, root))
		})
	}
}

func TestUpdateCommandIgnore(t *testing.T) {
	root := scaffoldedRepo(t, "README.md")
	cfg := config.Default()
	cfg.Update.Ignore = []string{"*.md"}

	err := Default().Dispatch(CommandUpdate, Args{Path: root, Config: cfg, In: strings.NewReader(""), Out: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "start.scala"}, srcEntries(t, root))
}

func TestUpdateCommandRespectGitignore(t *testing.T) {
	for _, respect := range []bool{false, true} {
		t.Run(fmt.Sprint(respect), func(t *testing.T) {
			root := scaffoldedRepo(t, "b.scala")
			require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.scala\n"), 0o644))
			cfg := config.Default()
			cfg.Update.OnExtra = config.OnExtraDelete
			cfg.Update.RespectGitignore = respect

			err := Default().Dispatch(CommandUpdate, Args{Path: root, Config: cfg, In: strings.NewReader(""), Out: &bytes.Buffer{}})
			require.NoError(t, err)
			if respect {
				assert.Equal(t, []string{"b.scala", "start.scala"}, srcEntries(t, root))
			} else {
				assert.Equal(t, []string{"start.scala"}, srcEntries(t, root))
			}
		})
	}
}

func TestUpdateCommandEndOfInput(t *testing.T) {
	root := scaffoldedRepo(t, "extra.py")

	err := Default().Dispatch(CommandUpdate, Args{Path: root, In: strings.NewReader(""), Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, prompt.ErrNoInput)
}

func TestUpdateCommandNotARepository(t *testing.T) {
	err := Default().Dispatch(CommandUpdate, Args{Path: t.TempDir(), Out: &bytes.Buffer{}})
	var structErr *repo.StructureError
	require.ErrorAs(t, err, &structErr)
	assert.Len(t, structErr.Violations, 3)
}

func TestUpdateCommandUnknownMode(t *testing.T) {
	cfg := config.Default()
	cfg.Update.OnExtra = "shred"
	err := Default().Dispatch(CommandUpdate, Args{Path: t.TempDir(), Config: cfg})
	assert.Error(t, err)
}

func TestRunCommandIsNoop(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Default().Dispatch(CommandRun, Args{Path: root}))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSummaryLine(t *testing.T) {
	assert.Equal(t, "Kept:       none", summaryLine("Kept", joinNames(nil)))
	assert.Equal(t, "Init complete", summaryTitle(CommandInit))
	assert.Equal(t, "1 file", countFiles(1))
	assert.Equal(t, "0 files", countFiles(0))
}
