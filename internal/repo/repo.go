// Package repo locates job repositories on disk and describes their layout.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/shintoio/ama/pkg/safeio"
)

// Paths relative to the repository root.
const (
	SrcDir        = "src"
	EnvDir        = "env"
	DefaultEnv    = "default"
	ManifestFile  = "maki.yml"
	JobFile       = "job.yml"
	SparkConfFile = "spark.yml"
)

// DefaultEnvDir is env/default relative to the root.
var DefaultEnvDir = filepath.Join(EnvDir, DefaultEnv)

// RequiredDirs are checked, in order, before a repository is reconciled.
var RequiredDirs = []string{SrcDir, EnvDir, DefaultEnvDir}

// PathError reports a root path that cannot be used because neither it nor
// its parent exists.
type PathError struct {
	Path   string
	Parent string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("the base path %q doesn't exist (needed for %s)", e.Parent, e.Path)
}

// Resolve turns a user-supplied path into an absolute repository root. The
// root itself may be missing; its parent may not.
func Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if exists(abs) {
		return abs, nil
	}
	parent := filepath.Dir(abs)
	if !exists(parent) {
		return "", &PathError{Path: abs, Parent: parent}
	}
	return abs, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Violation is one missing piece of the canonical layout.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// StructureError lists every layout violation found in a repository.
type StructureError struct {
	Root       string
	Violations []Violation
}

func (e *StructureError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s is not a job repository: %s", e.Root, strings.Join(parts, "; "))
}

// CheckStructure verifies that fs, rooted at a repository, holds every
// RequiredDirs entry. All violations are collected before returning.
func CheckStructure(fs billy.Filesystem) error {
	var violations []Violation
	for _, dir := range RequiredDirs {
		if !safeio.IsDir(fs, dir) {
			violations = append(violations, Violation{
				Path:    filepath.ToSlash(dir),
				Message: "required directory is missing",
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return &StructureError{Root: fs.Root(), Violations: violations}
}
