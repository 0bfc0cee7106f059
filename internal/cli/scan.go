package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"adoscan/internal/azdo"
	"adoscan/internal/config"
	"adoscan/internal/engine"
	"adoscan/internal/flags"
)

var cfg = config.New()

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Inventory resources across an organization",
	Long: `Inventory resources across every matching project of an organization.

A scan enumerates the organization's projects (optionally filtered by
wildcard --project patterns), fans out one task per child resource with a
bounded worker pool, and aggregates the results into one flat collection.
A failure on one child never aborts its siblings; failures are counted in
the final summary.

Authentication:
  adoscan uses an Azure DevOps personal access token. It prefers --pat,
  then the ADO_PAT env var, then AZURE_DEVOPS_EXT_PAT.

Output:
	Console output is controlled by --console-format (default: text).
	--out writes the aggregated records to a file; the format is inferred
	from the extension (.csv, .json, .ndjson, .xml) or forced with
	--out-format.

Exit codes:
	0 = run completed
	1 = run completed but every child task failed
	2 = fatal error (scan did not run)

Examples:
  # Token via environment variable
  export ADO_PAT="<your_token>"
  adoscan scan prs --org my-org

  # Only projects with a prefix, exported to CSV
  adoscan scan prs --org my-org --project "Platform*" --out prs.csv

  # Machine-readable stream
  adoscan scan vargroups --org my-org --no-console --console-format ndjson
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var scanPRsCmd = &cobra.Command{
	Use:   "prs",
	Short: "Inventory pull requests across projects",
	Long: `Inventory pull requests across every matching project.

One task is dispatched per git repository; each task lists that
repository's pull requests and flattens them into records with
organization/project/repository provenance.

Examples:
  adoscan scan prs --org my-org
  adoscan scan prs --org my-org --status completed --include-drafts
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runScan(cmd, engine.ScanPullRequests)
	},
}

var scanVarGroupsCmd = &cobra.Command{
	Use:   "vargroups",
	Short: "Inventory variable groups across projects",
	Long: `Inventory variable groups across every matching project.

One task is dispatched per project; each task lists the project's variable
groups and expands them into one record per variable. Secret values are
always masked; --include-secrets controls whether secret variables appear
as rows at all.

Examples:
  adoscan scan vargroups --org my-org
  adoscan scan vargroups --org my-org --include-secrets --out groups.csv
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runScan(cmd, engine.ScanVariableGroups)
	},
}

func runScan(cmd *cobra.Command, kind engine.ScanKind) {
	if err := applyFileDefaults(cmd, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	pat, _, err := azdo.ResolvePAT(cfg.Auth.PAT)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve personal access token: %v\n", err)
		os.Exit(2)
	}
	if strings.TrimSpace(pat) == "" {
		fmt.Fprintln(os.Stderr, "Error: a personal access token is required (set --pat or the ADO_PAT env var)")
		os.Exit(2)
	}

	client, err := azdo.NewClient(cfg.Targeting.Organization, pat, azdo.WithVerbose(cfg.Runtime.Verbose, nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create Azure DevOps client: %v\n", err)
		os.Exit(2)
	}

	eng := engine.NewEngine(client)
	os.Exit(eng.Run(context.Background(), cfg, kind))
}

// applyFileDefaults merges the optional YAML defaults file into cfg for
// every field whose flag was not set on the command line.
func applyFileDefaults(cmd *cobra.Command, cfg *config.Config) error {
	path := configPath
	explicit := path != ""
	if path == "" {
		path = config.DefaultFilePath()
	}
	if path == "" {
		return nil
	}

	fc, err := config.LoadFile(path, explicit)
	if err != nil {
		return err
	}

	changed := func(name string) bool {
		return cmd != nil && cmd.Flags().Changed(name)
	}

	if fc.Organization != "" && !changed(flags.FlagOrg) {
		cfg.Targeting.Organization = fc.Organization
	}
	if len(fc.Projects) > 0 && !changed(flags.FlagProject) {
		cfg.Targeting.Projects = fc.Projects
	}
	if fc.Throttle > 0 && !changed(flags.FlagThrottle) {
		cfg.Runtime.Throttle = fc.Throttle
	}
	if fc.Out != "" && !changed(flags.FlagOut) {
		cfg.Output.Out = fc.Out
	}
	if fc.ConsoleFormat != "" && !changed(flags.FlagConsoleFormat) {
		cfg.Output.ConsoleFormat = fc.ConsoleFormat
	}
	if !changed(flags.FlagTimeout) {
		timeout, err := fc.ParseTimeout()
		if err != nil {
			return err
		}
		if timeout > 0 {
			cfg.Runtime.Timeout = timeout
		}
	}
	return nil
}

func addScanFlags(cmd *cobra.Command) {
	// Targeting
	cmd.Flags().StringVar(&cfg.Targeting.Organization, flags.FlagOrg, "", "Azure DevOps organization to scan (name or URL)")
	cmd.Flags().StringSliceVar(&cfg.Targeting.Projects, flags.FlagProject, nil, "Project name pattern(s), wildcard, case-insensitive (repeatable; comma-separated accepted; default all)")

	// Auth
	cmd.Flags().StringVar(&cfg.Auth.PAT, flags.FlagPAT, "", "Personal access token (default: ADO_PAT or AZURE_DEVOPS_EXT_PAT env var)")

	// Output
	cmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write aggregated records to this path (.csv, .json, .ndjson, .xml)")
	cmd.Flags().StringVar(&cfg.Output.Emit, flags.FlagEmit, "", "Also stream the run to stdout for piping: json|ndjson")
	cmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Output format for --out: csv|json|ndjson|xml (default: inferred from file extension)")
	cmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	cmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --out)")

	// Runtime
	cmd.Flags().IntVar(&cfg.Runtime.Throttle, flags.FlagThrottle, config.DefaultThrottle, "Concurrent child tasks, 1-20 (default: 10)")
	cmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Wall-clock budget for the whole run (default: 10m)")
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.AddCommand(scanPRsCmd)
	scanCmd.AddCommand(scanVarGroupsCmd)

	addScanFlags(scanPRsCmd)
	scanPRsCmd.Flags().StringVar(&cfg.Targeting.Status, flags.FlagStatus, "active", "Pull request status filter: active|completed|abandoned|all (default: active)")
	scanPRsCmd.Flags().BoolVar(&cfg.Targeting.IncludeDrafts, flags.FlagIncludeDrafts, false, "Include draft pull requests")

	addScanFlags(scanVarGroupsCmd)
	scanVarGroupsCmd.Flags().BoolVar(&cfg.Targeting.IncludeSecrets, flags.FlagIncludeSecrets, false, "Include secret variables as rows (values stay masked)")
}
