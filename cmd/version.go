package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/shintoio/ama/internal/ops"
	"github.com/shintoio/ama/pkg/buildinfo"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ama version",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	if err := ops.RegisterCommand("version", ops.GroupSupport, versionCmd, "Show ama version"); err != nil {
		panic(err)
	}
	versionCmd.Flags().Bool("extended", false, "Show detailed build information")
	versionCmd.Flags().String("format", "text", "Output format (text|json)")
}

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	info := versionInfo{
		Version:   buildinfo.Version(),
		GitCommit: buildinfo.GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "text":
	default:
		return fmt.Errorf("unsupported format %q (want text or json)", format)
	}

	fmt.Fprintf(out, "ama %s\n", info.Version)
	if !extended {
		return nil
	}
	commit := info.GitCommit
	if commit == "" {
		commit = "unknown"
	} else if len(commit) > 8 {
		commit = commit[:8]
	}
	fmt.Fprintf(out, "Git commit: %s\n", commit)
	fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	return nil
}
