package dispatch

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/shintoio/ama/internal/prompt"
	"github.com/shintoio/ama/internal/reconcile"
	"github.com/shintoio/ama/internal/repo"
	"github.com/shintoio/ama/internal/scaffold"
	"github.com/shintoio/ama/internal/vcs"
	"github.com/shintoio/ama/pkg/ascii"
	"github.com/shintoio/ama/pkg/config"
	"github.com/shintoio/ama/pkg/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Built-in command names.
const (
	CommandInit   = "init"
	CommandUpdate = "update"
	CommandRun    = "run"
)

const summaryValueWidth = 60

// Swapped in tests.
var (
	globalIdentity = vcs.GlobalIdentity
	newInitializer = func(branch string) vcs.Initializer { return vcs.NewGitInitializer(branch) }
)

type initCommand struct{ args Args }

func newInit(args Args) (Handler, error) { return &initCommand{args: args}, nil }

func (c *initCommand) Handle() error {
	root, err := repo.Resolve(c.args.Path)
	if err != nil {
		return err
	}
	cfg := c.args.Config

	res, err := scaffold.Scaffold(root, scaffold.Options{
		JobName:     c.args.JobName,
		Commit:      cfg.Init.Commit,
		Message:     cfg.Init.CommitMessage,
		Initializer: newInitializer(cfg.Init.Branch),
		Author:      c.author,
	})
	if err != nil {
		return err
	}

	lines := []string{
		summaryTitle(CommandInit),
		summaryLine("Repository", res.Root),
		summaryLine("Job name", res.JobName),
		summaryLine("Written", countFiles(len(res.Written))),
		summaryLine("Unchanged", countFiles(len(res.Skipped))),
	}
	if res.Committed {
		lines = append(lines, summaryLine("Author", fmt.Sprintf("%s <%s>", res.Author.Name, res.Author.Email)))
	} else {
		lines = append(lines, summaryLine("Commit", "skipped"))
	}
	ascii.DrawBox(c.args.Out, lines)
	return nil
}

// author starts from the configured identity, fills the gaps from global git
// configuration and lets the user confirm both fields.
func (c *initCommand) author() (vcs.User, error) {
	cfg := c.args.Config
	defaults := vcs.User{Name: cfg.User.Name, Email: cfg.User.Email}

	global, err := globalIdentity()
	if err != nil {
		logger.Warn("Could not read global git identity", logger.Err(err))
	}
	defaults = defaults.Merge(global)

	var asker vcs.Asker
	if !c.args.AssumeYes {
		asker = prompt.New(c.args.In, c.args.Out)
	}
	return vcs.ResolveAuthor(defaults, asker)
}

type updateCommand struct {
	args    Args
	decider prompt.Decider
}

func newUpdate(args Args) (Handler, error) {
	decider, err := deciderFor(args)
	if err != nil {
		return nil, err
	}
	return &updateCommand{args: args, decider: decider}, nil
}

func deciderFor(args Args) (prompt.Decider, error) {
	switch args.Config.Update.OnExtra {
	case config.OnExtraKeep:
		return prompt.Fixed(prompt.KeepAll), nil
	case config.OnExtraDelete:
		return prompt.Fixed(prompt.DeleteAll), nil
	case config.OnExtraPrompt, "":
		return prompt.New(args.In, args.Out), nil
	}
	return nil, fmt.Errorf("unknown on-extra mode %q", args.Config.Update.OnExtra)
}

func (c *updateCommand) Handle() error {
	root, err := repo.Resolve(c.args.Path)
	if err != nil {
		return err
	}

	r, err := reconcile.New(osfs.New(root), c.decider, c.args.Config.Update.Ignore,
		reconcile.RespectGitIgnore(c.args.Config.Update.RespectGitignore))
	if err != nil {
		return err
	}
	report, err := r.Reconcile()
	if err != nil {
		return err
	}

	ascii.DrawBox(c.args.Out, []string{
		summaryTitle(CommandUpdate),
		summaryLine("Repository", root),
		summaryLine("Created", joinNames(report.Created)),
		summaryLine("Kept", joinNames(report.Kept)),
		summaryLine("Deleted", joinNames(report.Deleted)),
	})
	return nil
}

type runCommand struct{ args Args }

func newRun(args Args) (Handler, error) { return &runCommand{args: args}, nil }

// Handle does nothing yet; running pipelines is out of ama's hands.
func (c *runCommand) Handle() error {
	logger.Warn("run is not implemented; nothing was executed", logger.String("repository", c.args.Path))
	return nil
}

func summaryTitle(command string) string {
	return cases.Title(language.English).String(command) + " complete"
}

func summaryLine(label, value string) string {
	return fmt.Sprintf("%-11s %s", label+":", ascii.TruncateForBox(value, summaryValueWidth))
}

func countFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
