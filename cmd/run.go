package cmd

import (
	"github.com/shintoio/ama/internal/dispatch"
	"github.com/shintoio/ama/internal/ops"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [repository]",
	Short: "Run a job (not implemented)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return dispatch.Default().Dispatch(dispatch.CommandRun, dispatchArgs(cmd, args, cfg))
	},
}

func init() {
	if err := ops.RegisterCommand("run", ops.GroupRepository, runCmd, "Run a job (not implemented)"); err != nil {
		panic(err)
	}
}
