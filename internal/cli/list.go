package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"adoscan/internal/azdo"
	"adoscan/internal/engine"
	"adoscan/internal/flags"
)

// newListClient validates the shared config and builds a client for the
// read-only listing commands.
func newListClient(cmd *cobra.Command) (*azdo.Client, error) {
	if err := applyFileDefaults(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pat, _, err := azdo.ResolvePAT(cfg.Auth.PAT)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve personal access token: %w", err)
	}
	if strings.TrimSpace(pat) == "" {
		return nil, fmt.Errorf("a personal access token is required (set --pat or the ADO_PAT env var)")
	}

	return azdo.NewClient(cfg.Targeting.Organization, pat, azdo.WithVerbose(cfg.Runtime.Verbose, nil))
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects in the organization",
	Long: `List the organization's projects.

Only well-formed projects are shown. The --project wildcard patterns apply.

Examples:
  adoscan projects --org my-org
  adoscan projects --org my-org --project "Platform*"
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newListClient(cmd)
		if err != nil {
			return err
		}

		projects, err := engine.DiscoverProjects(cmd.Context(), client, cfg.Targeting.Projects)
		if err != nil {
			return err
		}

		for _, p := range projects {
			printProjectHeading(cmd.OutOrStdout(), p.Name)
			if p.Description != "" {
				fmt.Fprintln(cmd.OutOrStdout(), p.Description)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d projects\n", len(projects))
		return nil
	},
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List git repositories across projects",
	Long: `List the git repositories of every matching project.

Disabled repositories are excluded.

Examples:
  adoscan repos --org my-org
  adoscan repos --org my-org --project MyProject
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newListClient(cmd)
		if err != nil {
			return err
		}

		projects, err := engine.DiscoverProjects(cmd.Context(), client, cfg.Targeting.Projects)
		if err != nil {
			return err
		}

		total := 0
		for _, p := range projects {
			repos, err := client.ListRepositories(cmd.Context(), p.Name)
			if err != nil {
				return fmt.Errorf("failed to list repositories for %s: %w", p.Name, err)
			}
			printProjectHeading(cmd.OutOrStdout(), p.Name)
			for _, r := range repos {
				if r.IsDisabled {
					continue
				}
				total++
				branch := strings.TrimPrefix(r.DefaultBranch, "refs/heads/")
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (default: %s)\n", r.Name, branch)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d repositories\n", total)
		return nil
	},
}

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "List build pipelines across projects",
	Long: `List the build (pipeline) definitions of every matching project.

Examples:
  adoscan pipelines --org my-org
  adoscan pipelines --org my-org --project "Platform*"
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newListClient(cmd)
		if err != nil {
			return err
		}

		projects, err := engine.DiscoverProjects(cmd.Context(), client, cfg.Targeting.Projects)
		if err != nil {
			return err
		}

		total := 0
		for _, p := range projects {
			defs, err := client.ListBuildDefinitions(cmd.Context(), p.Name)
			if err != nil {
				return fmt.Errorf("failed to list pipelines for %s: %w", p.Name, err)
			}
			printProjectHeading(cmd.OutOrStdout(), p.Name)
			for _, d := range defs {
				total++
				name := d.Name
				if d.Path != "" && d.Path != "\\" {
					name = d.Path + "\\" + d.Name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (queue: %s)\n", name, d.QueueStatus)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d pipelines\n", total)
		return nil
	},
}

func printProjectHeading(w io.Writer, name string) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "PROJECT: %s\n", name)
	fmt.Fprintln(w, "----------------------------------------")
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Targeting.Organization, flags.FlagOrg, "", "Azure DevOps organization (name or URL)")
	cmd.Flags().StringSliceVar(&cfg.Targeting.Projects, flags.FlagProject, nil, "Project name pattern(s), wildcard, case-insensitive (repeatable; comma-separated accepted; default all)")
	cmd.Flags().StringVar(&cfg.Auth.PAT, flags.FlagPAT, "", "Personal access token (default: ADO_PAT or AZURE_DEVOPS_EXT_PAT env var)")
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(pipelinesCmd)
	addListFlags(projectsCmd)
	addListFlags(reposCmd)
	addListFlags(pipelinesCmd)
}
