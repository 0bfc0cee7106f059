package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adoscan/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "adoscan",
	Short: "Inventory Azure DevOps organizations via the REST API",
	Long: `adoscan inventories Azure DevOps organizations via the REST API and
exports flat records.

adoscan is read-only: it lists projects, repositories, pull requests,
pipelines, and variable groups, and never mutates state.

Examples:
	# Show available commands and global flags
	adoscan --help

	# Inventory active pull requests across an organization
	adoscan scan prs --org my-org

	# Inventory variable groups and export CSV
	adoscan scan vargroups --org my-org --out groups.csv

	# Print build info
	adoscan version

Output:
	By default, commands write human-readable output to stdout.
	Scan commands support structured output via --out and --console-format.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every Azure DevOps API call with latency)")
	rootCmd.PersistentFlags().StringVar(&configPath, flags.FlagConfig, "", "Path to a YAML defaults file (default: ~/.adoscan.yaml)")
}

var configPath string

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
