package cmd

import (
	"github.com/shintoio/ama/internal/dispatch"
	"github.com/shintoio/ama/internal/ops"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a job repository",
	Long: `Create src/, env/default/, maki.yml and the default environment files under
path (default: the current directory), then commit them to a new git repository.

Existing files are never overwritten, so init is safe to re-run. The commit
author defaults to user.name/user.email from ama.yaml, then from the global git
configuration, and is confirmed interactively unless --yes is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	if err := ops.RegisterCommand("init", ops.GroupRepository, initCmd, "Create a job repository"); err != nil {
		panic(err)
	}

	initCmd.Flags().String("name", "", "Job name written to maki.yml (default: directory name)")
	initCmd.Flags().String("message", "", "Initial commit message")
	initCmd.Flags().String("branch", "", "Branch receiving the initial commit")
	initCmd.Flags().String("author-name", "", "Commit author name")
	initCmd.Flags().String("author-email", "", "Commit author email")
	initCmd.Flags().Bool("no-commit", false, "Only lay out files; do not create a git repository")
	initCmd.Flags().BoolP("yes", "y", false, "Accept the author identity without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if noCommit, _ := cmd.Flags().GetBool("no-commit"); noCommit {
		cfg.Init.Commit = false
	}

	a := dispatchArgs(cmd, args, cfg)
	a.JobName, _ = cmd.Flags().GetString("name")
	a.AssumeYes, _ = cmd.Flags().GetBool("yes")
	return dispatch.Default().Dispatch(dispatch.CommandInit, a)
}
