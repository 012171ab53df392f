// Package scaffold lays out a new job repository and records it in version
// control.
package scaffold

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/shintoio/ama/internal/assets"
	"github.com/shintoio/ama/internal/repo"
	"github.com/shintoio/ama/internal/vcs"
	"github.com/shintoio/ama/pkg/logger"
	"github.com/shintoio/ama/pkg/safeio"
	"gopkg.in/yaml.v3"
)

// DefaultMessage is the initial commit message.
const DefaultMessage = "Amaterasu job repo init"

// Options controls a scaffold run.
type Options struct {
	// JobName is rendered into maki.yml. Empty means the base name of the root.
	JobName string

	// Commit turns on the Init/StageAll/Commit sequence.
	Commit      bool
	Message     string
	Initializer vcs.Initializer

	// Author is called once, before the repository is initialized, and only
	// when Commit is set.
	Author func() (vcs.User, error)
}

// Result describes what a scaffold run did.
type Result struct {
	Root      string
	JobName   string
	Written   []string
	Skipped   []string
	Committed bool
	Author    vcs.User
}

type file struct {
	path     string
	template string
}

var files = []file{
	{path: repo.ManifestFile, template: assets.ManifestTemplate},
	{path: filepath.Join(repo.DefaultEnvDir, repo.JobFile), template: assets.JobTemplate},
	{path: filepath.Join(repo.DefaultEnvDir, repo.SparkConfFile), template: assets.SparkTemplate},
}

// Scaffold creates the repository layout under root, writes every template
// that is not there yet and, when opts.Commit is set, initializes and commits
// the repository. Files that already exist are never rewritten. Errors from
// the initializer are returned as they are.
func Scaffold(root string, opts Options) (*Result, error) {
	return scaffold(osfs.New(root), root, opts)
}

func scaffold(fs billy.Filesystem, root string, opts Options) (*Result, error) {
	res := &Result{Root: root, JobName: opts.JobName}
	if res.JobName == "" {
		res.JobName = filepath.Base(root)
	}

	for _, dir := range repo.RequiredDirs {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	ctx := map[string]string{"jobName": res.JobName}
	for _, f := range files {
		written, err := writeTemplate(fs, f, ctx)
		if err != nil {
			return res, err
		}
		if written {
			logger.Debug("Wrote file", logger.String("file", f.path))
			res.Written = append(res.Written, f.path)
		} else {
			logger.Debug("File exists, leaving it alone", logger.String("file", f.path))
			res.Skipped = append(res.Skipped, f.path)
		}
	}

	if !opts.Commit {
		return res, nil
	}
	if err := commit(root, opts, res); err != nil {
		return res, err
	}
	return res, nil
}

func writeTemplate(fs billy.Filesystem, f file, ctx map[string]string) (bool, error) {
	src, err := assets.GetTemplate(f.template)
	if err != nil {
		return false, fmt.Errorf("loading template %s: %w", f.template, err)
	}
	tpl, err := raymond.Parse(string(src))
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", f.template, err)
	}
	tpl.RegisterHelpers(templateHelpers)
	out, err := tpl.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("rendering %s: %w", f.template, err)
	}
	written, err := safeio.WriteFileIfAbsent(fs, f.path, []byte(out))
	if err != nil {
		return false, fmt.Errorf("writing %s: %w", f.path, err)
	}
	return written, nil
}

// templateHelpers quote values so that any job name renders as a YAML string.
var templateHelpers = map[string]interface{}{
	"yaml":     yamlString,
	"yamlJoin": yamlJoin,
}

// yamlString encodes s as a double-quoted YAML scalar.
func yamlString(s string) string {
	out, err := yaml.Marshal(&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: s})
	if err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(string(out), "\n")
}

func yamlJoin(prefix, value, suffix string) string {
	return yamlString(prefix + value + suffix)
}

func commit(root string, opts Options, res *Result) error {
	if opts.Initializer == nil {
		return fmt.Errorf("commit requested without an initializer")
	}
	message := opts.Message
	if message == "" {
		message = DefaultMessage
	}

	var author vcs.User
	if opts.Author != nil {
		u, err := opts.Author()
		if err != nil {
			return err
		}
		author = u
	}

	if err := opts.Initializer.Init(root); err != nil {
		return err
	}
	if err := opts.Initializer.StageAll(); err != nil {
		return err
	}
	if err := opts.Initializer.Commit(author, message); err != nil {
		return err
	}

	logger.Info("Committed job repository",
		logger.String("author", author.Name),
		logger.String("message", message))
	res.Committed = true
	res.Author = author
	return nil
}
