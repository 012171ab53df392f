package cmd

import (
	"github.com/shintoio/ama/internal/dispatch"
	"github.com/shintoio/ama/internal/ops"
	"github.com/shintoio/ama/pkg/config"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Bring src/ in line with maki.yml",
	Long: `Check the repository layout, create an empty file in src/ for every step
file maki.yml declares but src/ lacks, and ask what to do with every file in
src/ that maki.yml does not declare:

   k    keep this file
   d    delete this file
   kA   keep this file and all remaining ones
   dA   delete this file and all remaining ones

--keep-all, --delete-all and --on-extra answer without asking.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	if err := ops.RegisterCommand("update", ops.GroupRepository, updateCmd, "Bring src/ in line with maki.yml"); err != nil {
		panic(err)
	}

	updateCmd.Flags().StringSlice("ignore", nil, "Glob of src/ files never treated as extras (repeatable)")
	updateCmd.Flags().Bool("respect-gitignore", false, "Also skip src/ files matched by .gitignore, .git/info/exclude or .amaignore")
	updateCmd.Flags().String("on-extra", "", "What to do with undeclared files: prompt, keep or delete")
	updateCmd.Flags().Bool("keep-all", false, "Keep every undeclared file (same as --on-extra keep)")
	updateCmd.Flags().Bool("delete-all", false, "Delete every undeclared file (same as --on-extra delete)")
	updateCmd.MarkFlagsMutuallyExclusive("keep-all", "delete-all", "on-extra")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if keepAll, _ := cmd.Flags().GetBool("keep-all"); keepAll {
		cfg.Update.OnExtra = config.OnExtraKeep
	}
	if deleteAll, _ := cmd.Flags().GetBool("delete-all"); deleteAll {
		cfg.Update.OnExtra = config.OnExtraDelete
	}
	return dispatch.Default().Dispatch(dispatch.CommandUpdate, dispatchArgs(cmd, args, cfg))
}
