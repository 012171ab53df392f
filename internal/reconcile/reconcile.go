// Package reconcile brings the files under src/ in line with maki.yml.
//
// Sources the manifest declares but src/ lacks are created empty. Files in
// src/ the manifest does not declare ("extras") are kept or deleted one at a
// time, as a Decider answers, until the Decider answers "all" or the extras
// run out. Nothing is rolled back: a filesystem error stops reconciliation
// and leaves whatever was already done in place.
package reconcile

import (
	"fmt"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/shintoio/ama/internal/manifest"
	"github.com/shintoio/ama/internal/prompt"
	"github.com/shintoio/ama/internal/repo"
	"github.com/shintoio/ama/pkg/ignore"
	"github.com/shintoio/ama/pkg/logger"
	"github.com/shintoio/ama/pkg/safeio"
)

// Report lists what a reconciliation changed, each list in lexical order.
type Report struct {
	Created []string
	Kept    []string
	Deleted []string
}

// Reconciler reconciles one repository. fs must be rooted at the repository.
type Reconciler struct {
	fs               billy.Filesystem
	decider          prompt.Decider
	ignore           []string
	respectGitIgnore bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// RespectGitIgnore makes files ignored by the repository's .gitignore,
// .git/info/exclude and .amaignore rules invisible to reconciliation. Off by
// default: every file in src/ the manifest does not declare is an extra.
func RespectGitIgnore(on bool) Option {
	return func(r *Reconciler) { r.respectGitIgnore = on }
}

// New returns a Reconciler. Files in src/ matching any ignore pattern
// (doublestar syntax, matched against the bare file name) are never treated
// as extras.
func New(fs billy.Filesystem, decider prompt.Decider, ignore []string, opts ...Option) (*Reconciler, error) {
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	r := &Reconciler{fs: fs, decider: decider, ignore: ignore}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Reconcile runs the full reconciliation. It fails with *repo.StructureError
// when required directories are missing and with *manifest.Error when
// maki.yml cannot be used; both are checked before anything is written.
func (r *Reconciler) Reconcile() (*Report, error) {
	if err := repo.CheckStructure(r.fs); err != nil {
		return nil, err
	}

	onDisk, err := r.diskSources()
	if err != nil {
		return nil, err
	}

	var gitIgnore *ignore.Matcher
	if r.respectGitIgnore {
		if gitIgnore, err = ignore.NewMatcher(r.fs); err != nil {
			return nil, err
		}
	}

	m, err := manifest.Load(r.fs, repo.ManifestFile)
	if err != nil {
		return nil, err
	}

	missing, extras := Diff(m.Sources(), onDisk)
	extras = r.withoutIgnored(extras, gitIgnore)
	logger.Debug("Computed source diff",
		logger.Strings("missing", missing),
		logger.Strings("extras", extras))

	report := &Report{}
	for _, name := range missing {
		if err := safeio.CreateEmpty(r.fs, srcPath(name)); err != nil {
			return report, fmt.Errorf("creating %s: %w", srcPath(name), err)
		}
		logger.Info("Created source file", logger.String("file", name))
		report.Created = append(report.Created, name)
	}

	if err := r.resolveExtras(extras, report); err != nil {
		return report, err
	}
	return report, nil
}

// diskSources lists the regular files directly under src/.
func (r *Reconciler) diskSources() ([]string, error) {
	entries, err := r.fs.ReadDir(repo.SrcDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", repo.SrcDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// withoutIgnored drops names matched by a configured glob or, when gitIgnore
// is non-nil, by the repository's ignore files.
func (r *Reconciler) withoutIgnored(names []string, gitIgnore *ignore.Matcher) []string {
	kept := names[:0]
	for _, name := range names {
		if r.ignored(name) || (gitIgnore != nil && gitIgnore.IsIgnored(srcPath(name))) {
			logger.Debug("Ignoring source file", logger.String("file", name))
			continue
		}
		kept = append(kept, name)
	}
	return kept
}

func (r *Reconciler) ignored(name string) bool {
	for _, pattern := range r.ignore {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Diff returns declared minus onDisk and onDisk minus declared, both sorted.
// Duplicates collapse.
func Diff(declared, onDisk []string) (missing, extras []string) {
	declaredSet := toSet(declared)
	diskSet := toSet(onDisk)
	for name := range declaredSet {
		if _, ok := diskSet[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range diskSet {
		if _, ok := declaredSet[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(extras)
	return missing, extras
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func srcPath(name string) string {
	return path.Join(repo.SrcDir, name)
}
