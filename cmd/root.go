package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/shintoio/ama/internal/dispatch"
	"github.com/shintoio/ama/internal/manifest"
	"github.com/shintoio/ama/internal/ops"
	"github.com/shintoio/ama/internal/prompt"
	"github.com/shintoio/ama/internal/repo"
	"github.com/shintoio/ama/pkg/buildinfo"
	"github.com/shintoio/ama/pkg/config"
	"github.com/shintoio/ama/pkg/exitcode"
	"github.com/shintoio/ama/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance.
// Tests use it to build isolated command trees.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ama",
		Short: "Scaffold and reconcile Amaterasu job repositories",
		Long: `ama creates job repositories (src/, env/default/, maki.yml) and keeps
src/ in line with the steps declared in maki.yml.

Examples:
   ama init my-job       # Scaffold and commit a new job repository
   ama update my-job     # Create sources maki.yml declares, decide on the rest
   ama version           # Show version`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default is ./ama.yaml or $HOME/ama.yaml)")

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("ama {{.Version}}\n")

	// Grouped help by command group (Repository → Support)
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if c != c.Root() {
			c.Println(c.UsageString())
			return
		}
		reg := ops.GetRegistry()
		c.Println(c.Long)
		c.Println()
		c.Println("Repository Commands:")
		for _, r := range reg.GetCommandsByGroup(ops.GroupRepository) {
			c.Printf("  %-12s %s\n", r.Name, r.Description)
		}
		c.Println()
		c.Println("Support Commands:")
		for _, r := range reg.GetCommandsByGroup(ops.GroupSupport) {
			c.Printf("  %-12s %s\n", r.Name, r.Description)
		}
		c.Println()
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(initCmd)
	cmd.AddCommand(updateCmd)
	cmd.AddCommand(runCmd)
	cmd.AddCommand(versionCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command and exits with the code matching the error.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// configError marks failures to load configuration or set up logging.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	var (
		pathErr        *repo.PathError
		structErr      *repo.StructureError
		manifestErr    *manifest.Error
		unsupportedErr *dispatch.UnsupportedCommandError
		cfgErr         *configError
	)
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &pathErr):
		return exitcode.FileSystemError
	case errors.As(err, &structErr), errors.As(err, &manifestErr):
		return exitcode.ValidationError
	case errors.As(err, &unsupportedErr), errors.As(err, &cfgErr):
		return exitcode.ConfigError
	case errors.Is(err, os.ErrPermission):
		return exitcode.PermissionError
	case errors.Is(err, prompt.ErrNoInput):
		return exitcode.Interrupted
	}
	return exitcode.GeneralError
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) error {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "ama",
		Output:    cmd.ErrOrStderr(),
	}
	if err := logger.Initialize(cfg); err != nil {
		return &configError{err: fmt.Errorf("failed to initialize logger: %w", err)}
	}
	return nil
}

// loadConfig reads ama.yaml, AMA_* variables and the command's own flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, &configError{err: err}
	}
	return cfg, nil
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func dispatchArgs(cmd *cobra.Command, args []string, cfg *config.Config) dispatch.Args {
	return dispatch.Args{
		Path:   pathArg(args),
		Config: cfg,
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
	}
}
