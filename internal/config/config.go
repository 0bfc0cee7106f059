package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Targeting Targeting
	Auth      Auth
	Output    Output
	Runtime   Runtime
}

type Targeting struct {
	// Organization is the Azure DevOps organization to scan (name or URL;
	// see --org).
	Organization string

	// Projects filters projects by name using wildcard patterns (see
	// --project). Case-insensitive; '*' matches any run of characters.
	// Empty means all projects.
	Projects []string

	// Status is the pull request status filter (see --status).
	// Allowed values: active, completed, abandoned, all.
	Status string

	// IncludeDrafts includes draft pull requests in the inventory (see
	// --include-drafts).
	IncludeDrafts bool

	// IncludeSecrets includes secret variables as rows in the variable
	// group inventory (see --include-secrets). Secret values are always
	// masked regardless.
	IncludeSecrets bool
}

type Auth struct {
	// PAT is the personal access token (see --pat). If empty, it is
	// resolved from the ADO_PAT or AZURE_DEVOPS_EXT_PAT env vars.
	PAT string
}

type Output struct {
	// Out writes the aggregated records to this path (see --out). The
	// format is inferred from the extension: .csv, .json, .ndjson, .xml.
	Out string

	// OutFormat overrides the format inferred from the --out extension
	// (see --out-format). Allowed values: csv, json, ndjson, xml.
	OutFormat string

	// Emit additionally streams the run to stdout for piping into other
	// tools (see --emit). Allowed values: json, ndjson. Empty disables it.
	Emit string

	// ConsoleFormat controls the console sink (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Throttle is the maximum number of concurrently executing child
	// tasks (see --throttle). Must be between 1 and 20.
	Throttle int

	// Timeout is the wall-clock budget for the whole run (see --timeout).
	// Must be > 0 and at most 60 minutes.
	Timeout time.Duration

	// Verbose enables per-request API logging (see --verbose).
	Verbose bool
}

const (
	DefaultThrottle = 10
	DefaultTimeout  = 10 * time.Minute
	MaxThrottle     = 20
	MaxTimeout      = 60 * time.Minute
)

func New() *Config {
	return &Config{
		Targeting: Targeting{
			Status: "active",
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Throttle: DefaultThrottle,
			Timeout:  DefaultTimeout,
		},
	}
}

func (c *Config) Validate() error {
	c.Targeting.Projects = splitCommaList(c.Targeting.Projects)

	if c.Targeting.Organization == "" {
		return errors.New("--org is required")
	}
	org, err := normalizeOrgSelector(c.Targeting.Organization)
	if err != nil {
		return fmt.Errorf("invalid --org value: %w", err)
	}
	c.Targeting.Organization = org

	c.Targeting.Status = normalizeEnumValue(c.Targeting.Status)
	if c.Targeting.Status == "" {
		c.Targeting.Status = "active"
	}
	switch c.Targeting.Status {
	case "active", "completed", "abandoned", "all":
	default:
		return fmt.Errorf("unsupported --status: %s (must be one of: active, completed, abandoned, all)", c.Targeting.Status)
	}

	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = "text"
	}
	switch c.Output.ConsoleFormat {
	case "text", "json", "ndjson":
	default:
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	c.Output.Emit = normalizeEnumValue(c.Output.Emit)
	switch c.Output.Emit {
	case "", "json", "ndjson":
	default:
		return fmt.Errorf("unsupported --emit format: %s (must be one of: json, ndjson)", c.Output.Emit)
	}

	if c.Runtime.Throttle < 1 || c.Runtime.Throttle > MaxThrottle {
		return fmt.Errorf("--throttle must be between 1 and %d", MaxThrottle)
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}
	if c.Runtime.Timeout > MaxTimeout {
		return fmt.Errorf("--timeout must be at most %s", MaxTimeout)
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".csv":
				c.Output.OutFormat = "csv"
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			case ".xml":
				c.Output.OutFormat = "xml"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else {
			switch c.Output.OutFormat {
			case "csv", "json", "ndjson", "xml":
			default:
				return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
			}
		}
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeOrgSelector(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	// Accept a raw organization name, or an Azure DevOps URL like:
	//   https://dev.azure.com/<org>
	//   dev.azure.com/<org>
	//   https://<org>.visualstudio.com
	if strings.HasPrefix(raw, "dev.azure.com/") {
		raw = "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%q", raw)
		}
		host := strings.ToLower(u.Hostname())
		if host == "dev.azure.com" {
			parts := strings.FieldsFunc(strings.Trim(u.Path, "/"), func(r rune) bool { return r == '/' })
			if len(parts) == 0 {
				return "", fmt.Errorf("%q", raw)
			}
			return parts[0], nil
		}
		if org, ok := strings.CutSuffix(host, ".visualstudio.com"); ok && org != "" {
			return org, nil
		}
		return "", fmt.Errorf("%q", raw)
	}

	// Basic sanity: reject org/project-like inputs.
	if strings.Contains(raw, "/") {
		return "", fmt.Errorf("%q", raw)
	}
	return raw, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
