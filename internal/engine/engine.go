package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"adoscan/internal/azdo"
	"adoscan/internal/config"
	"adoscan/internal/inventory"
	"adoscan/internal/output"
)

// ScanKind selects which inventory a run collects.
type ScanKind string

const (
	ScanPullRequests   ScanKind = "pull requests"
	ScanVariableGroups ScanKind = "variable groups"
)

func exitCodeForRun(fatal bool, targets, succeeded int) int {
	// Exit code contract:
	// 0 = run completed (per-target failures allowed while any target succeeded)
	// 1 = run completed but every target failed
	// 2 = fatal error (run did not complete)
	if fatal {
		return 2
	}
	if targets > 0 && succeeded == 0 {
		return 1
	}
	return 0
}

type Engine struct {
	Client *azdo.Client

	// schedulerExecute is a test seam for streaming execution.
	// If nil, Engine uses a real Scheduler.
	schedulerExecute func(ctx context.Context, targets []Target, work WorkFunc) (<-chan TaskResult, <-chan error)

	// emitWriter receives the --emit stream. If nil, stdout is used.
	emitWriter io.Writer
}

func NewEngine(client *azdo.Client) *Engine {
	return &Engine{Client: client}
}

func (e *Engine) setupOutputManager(cfg *config.Config, kind ScanKind) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Emit != "" {
		w := e.emitWriter
		if w == nil {
			w = os.Stdout
		}
		es, err := output.NewEmitSink(w, cfg.Output.Emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat,
			output.WithCSVHeader(headerForKind(kind)))
		if err != nil {
			// Export failure never invalidates the run; the in-memory
			// records still flow to the remaining sinks.
			fmt.Fprintf(os.Stderr, "Warning: cannot write output file: %v\n", err)
		} else if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// headerForKind returns the CSV column set of a scan kind, so an export
// with zero records still gets its header row.
func headerForKind(kind ScanKind) []string {
	switch kind {
	case ScanPullRequests:
		return inventory.PullRequestRecord{}.Header()
	case ScanVariableGroups:
		return inventory.VariableGroupRecord{}.Header()
	}
	return nil
}

func (e *Engine) targetLabel(kind ScanKind) string {
	if kind == ScanPullRequests {
		return "repositories"
	}
	return "projects"
}

func (e *Engine) buildWork(cfg *config.Config, kind ScanKind) WorkFunc {
	org := e.Client.Organization()
	switch kind {
	case ScanPullRequests:
		return func(ctx context.Context, t Target) ([]inventory.Record, error) {
			prs, err := e.Client.ListPullRequests(ctx, t.Project.Name, t.Repo.ID, cfg.Targeting.Status)
			if err != nil {
				return nil, err
			}
			return inventory.PullRequestRecords(org, t.Project.Name, t.Repo.Name, prs, cfg.Targeting.IncludeDrafts), nil
		}
	case ScanVariableGroups:
		return func(ctx context.Context, t Target) ([]inventory.Record, error) {
			groups, err := e.Client.ListVariableGroups(ctx, t.Project.Name)
			if err != nil {
				return nil, err
			}
			return inventory.VariableGroupRecords(org, t.Project.Name, groups, cfg.Targeting.IncludeSecrets), nil
		}
	default:
		return func(ctx context.Context, t Target) ([]inventory.Record, error) {
			return nil, fmt.Errorf("unknown scan kind %q", kind)
		}
	}
}

func (e *Engine) discoverTargets(ctx context.Context, cfg *config.Config, kind ScanKind) ([]Target, error) {
	projects, err := DiscoverProjects(ctx, e.Client, cfg.Targeting.Projects)
	if err != nil {
		return nil, err
	}
	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stderr, "Found %d projects.\n", len(projects))
	}

	if kind == ScanPullRequests {
		return DiscoverRepoTargets(ctx, e.Client, projects, cfg.Runtime.Throttle)
	}
	return ProjectTargets(projects), nil
}

func (e *Engine) executeStream(ctx context.Context, cfg *config.Config, targets []Target, work WorkFunc) (<-chan TaskResult, <-chan error) {
	if e.schedulerExecute != nil {
		return e.schedulerExecute(ctx, targets, work)
	}

	scheduler, err := NewScheduler(cfg.Runtime.Throttle, cfg.Runtime.Timeout)
	if err != nil {
		resCh := make(chan TaskResult)
		errCh := make(chan error, 1)
		close(resCh)
		errCh <- err
		close(errCh)
		return resCh, errCh
	}
	return scheduler.Execute(ctx, targets, work)
}

// Run executes one inventory scan end to end: discover projects, expand to
// targets, dispatch, aggregate, write sinks. It returns the process exit
// code.
func (e *Engine) Run(ctx context.Context, cfg *config.Config, kind ScanKind) int {
	if !cfg.Output.NoConsole {
		fmt.Fprintln(os.Stderr, "Discovering projects...")
	}
	targets, err := e.discoverTargets(ctx, cfg, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering targets: %v\n", err)
		return exitCodeForRun(true, 0, 0)
	}
	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stderr, "Scanning %s across %d %s...\n", kind, len(targets), e.targetLabel(kind))
	}

	outMgr, err := e.setupOutputManager(cfg, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, 0, 0)
	}
	closeSinks := func() {
		if err := outMgr.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error writing output: %v\n", err)
		}
	}

	runID := uuid.NewString()
	_ = outMgr.Write(output.Event{Type: "run.started", RunID: runID, Targets: len(targets)})

	resCh, errCh := e.executeStream(ctx, cfg, targets, e.buildWork(cfg, kind))

	var progress *output.ProgressReporter
	if !cfg.Output.NoConsole {
		progress = output.NewProgressReporter(os.Stderr)
	}

	results := make([]TaskResult, 0, len(targets))
	for res := range resCh {
		results = append(results, res)
		ev := output.Event{Type: "target.finished", RunID: runID, Target: res.Target.Key()}
		if res.Err != nil {
			ev.Error = res.Err.Error()
			ev.Denied = azdo.IsPermissionDenied(res.Err)
		}
		_ = outMgr.Write(ev)
		progress.Report(len(results), len(targets), e.targetLabel(kind))
	}

	var schedErr error
	// Drain scheduler errors; only one fatal error matters.
	for err := range errCh {
		if err != nil {
			schedErr = err
		}
	}
	if schedErr != nil {
		fmt.Fprintf(os.Stderr, "Error: scan aborted: %v\n", schedErr)
		closeSinks()
		return exitCodeForRun(true, 0, 0)
	}

	records, summary := Aggregate(runID, results)
	for _, r := range records {
		_ = outMgr.Write(r)
	}

	code := exitCodeForRun(false, summary.TotalTargets, summary.Succeeded)
	_ = outMgr.Write(output.Event{
		Type:      "run.finished",
		RunID:     runID,
		Targets:   summary.TotalTargets,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Records:   summary.TotalRecords,
		ExitCode:  code,
	})
	closeSinks()
	return code
}
