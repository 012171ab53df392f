package vcs

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/config"
)

// Asker confirms a value with the user, returning def on empty input.
type Asker interface {
	AskDefault(label, def string) (string, error)
}

// IdentityError reports an author field that has no value anywhere.
type IdentityError struct {
	Field string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("%s is required!", e.Field)
}

// GlobalIdentity reads user.name and user.email from the global git
// configuration. It is only called when a commit is about to be made.
func GlobalIdentity() (User, error) {
	cfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		return User{}, fmt.Errorf("reading global git config: %w", err)
	}
	return User{Name: cfg.User.Name, Email: cfg.User.Email}, nil
}

// Merge returns u with empty fields filled from fallback.
func (u User) Merge(fallback User) User {
	if strings.TrimSpace(u.Name) == "" {
		u.Name = fallback.Name
	}
	if strings.TrimSpace(u.Email) == "" {
		u.Email = fallback.Email
	}
	return u
}

// ResolveAuthor confirms each field of defaults with asker. A nil asker
// accepts the defaults as they are. Either way both fields must end up
// non-empty.
func ResolveAuthor(defaults User, asker Asker) (User, error) {
	name, err := confirm(asker, "Your name", "Username", defaults.Name)
	if err != nil {
		return User{}, err
	}
	email, err := confirm(asker, "Your email", "Email", defaults.Email)
	if err != nil {
		return User{}, err
	}
	return User{Name: name, Email: email}, nil
}

func confirm(asker Asker, label, field, def string) (string, error) {
	value := def
	if asker != nil {
		answer, err := asker.AskDefault(label, def)
		if err != nil {
			return "", err
		}
		value = answer
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &IdentityError{Field: field}
	}
	return value, nil
}
