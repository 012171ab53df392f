// Package vcs initializes job repositories under version control and works
// out who the initial commit is attributed to.
package vcs

// User is a commit author identity. ama never persists it.
type User struct {
	Name  string
	Email string
}

// Initializer creates a repository, stages the working tree and records a
// commit. Implementations are used once per scaffolded repository.
type Initializer interface {
	Init(path string) error
	StageAll() error
	Commit(author User, message string) error
}
