// Package manifest reads and validates maki.yml, the declarative job
// definition at the root of every job repository.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// FileName is the manifest's name relative to the repository root.
const FileName = "maki.yml"

// Manifest is a validated job definition.
type Manifest struct {
	JobName string `yaml:"job-name"`
	Flow    []Step `yaml:"flow"`
}

// Step is one pipeline stage.
type Step struct {
	Name   string `yaml:"name"`
	Runner Runner `yaml:"runner"`
	File   string `yaml:"file"`
}

// Runner names the execution group and source language of a step.
type Runner struct {
	Group string `yaml:"group"`
	Type  string `yaml:"type"`
}

// Sources returns the distinct step files in lexical order.
func (m *Manifest) Sources() []string {
	seen := make(map[string]struct{}, len(m.Flow))
	out := make([]string, 0, len(m.Flow))
	for _, step := range m.Flow {
		if _, ok := seen[step.File]; ok {
			continue
		}
		seen[step.File] = struct{}{}
		out = append(out, step.File)
	}
	sort.Strings(out)
	return out
}

// Error reports a manifest that is absent, empty, unparsable or
// schema-invalid. Schema failures carry no per-step detail.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid manifest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads path from fs, validates it and decodes it.
func Load(fs billy.Filesystem, path string) (*Manifest, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &Error{Path: path, Reason: "file not found"}
		}
		return nil, &Error{Path: path, Reason: "unreadable", Err: err}
	}
	m, err := Parse(data)
	if err != nil {
		var merr *Error
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return m, nil
}

// Parse validates and decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Path: FileName, Reason: "not valid YAML", Err: err}
	}
	if isEmpty(doc) {
		return nil, &Error{Path: FileName, Reason: "document is empty"}
	}
	if !Validate(doc) {
		return nil, &Error{Path: FileName, Reason: "does not match the manifest schema"}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &Error{Path: FileName, Reason: "not valid YAML", Err: err}
	}
	// Step files live directly under src/.
	for _, src := range m.Sources() {
		if !isPlainName(src) {
			return nil, &Error{Path: FileName, Reason: fmt.Sprintf("step file %q is not a plain file name", src)}
		}
	}
	return &m, nil
}

func isPlainName(name string) bool {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return false
	}
	return name == filepath.Base(name)
}
