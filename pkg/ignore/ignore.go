// Package ignore provides gitignore-based file filtering using go-git
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the ama-specific ignore file read from the repository root.
const FileName = ".amaignore"

// Matcher provides gitignore-based file filtering
type Matcher struct {
	matcher gitignore.Matcher
	count   int
}

// NewMatcher creates a matcher for the repository fs is rooted at, with
// layered ignore files:
// 1. .git/info/exclude and every .gitignore in the tree (foundation)
// 2. .amaignore at the root (repo overrides)
func NewMatcher(fs billy.Filesystem) (*Matcher, error) {
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return nil, fmt.Errorf("reading gitignore patterns: %w", err)
	}

	amaPatterns, err := readIgnoreFile(fs, FileName)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, amaPatterns...)

	return &Matcher{
		matcher: gitignore.NewMatcher(patterns),
		count:   len(patterns),
	}, nil
}

// readIgnoreFile reads patterns from a text file (like .amaignore)
func readIgnoreFile(fs billy.Filesystem, name string) ([]gitignore.Pattern, error) {
	f, err := fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return patterns, nil
}

// Len reports how many patterns were loaded.
func (m *Matcher) Len() int {
	return m.count
}

// IsIgnored checks if a file path, slash-separated and relative to the
// repository root, should be ignored
func (m *Matcher) IsIgnored(path string) bool {
	parts := splitPath(path)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, false)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return []string{}
	}

	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")

	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}

	return result
}
