package ui

import (
	"io"
	"path"

	"github.com/twangodev/gemote/internal/reconcile"
	"github.com/twangodev/gemote/internal/repos/remotes"
	"github.com/twangodev/gemote/internal/repos/shared"
)

const (
	planMessage               = "PLAN-SYNC-REMOTE: %s %s\n"
	nodeErrorMessage          = "SYNC-REMOTE-SKIP: %s (error: %v)\n"
	rootExtraRemoteWarning    = "warning: remote '%s' exists locally but not in config\n"
	nestedExtraRemoteWarning  = "warning: remote '%s' exists locally in %s but not in config\n"
	missingSubmoduleWarning   = "warning: submodule '%s' is declared in config but was not found\n"
	ignoredSubmoduleNote      = "note: submodule '%s' is configured but not synced; use --recursive\n"
	alreadyInSyncMessage      = "Already in sync. No changes needed.\n"
	dryRunFooterMessage       = "(dry run: no changes applied)\n"
	syncCompleteMessage       = "Sync complete.\n"
	syncPartialFailureMessage = "Sync finished with %d failed action(s).\n"
	savedConfigurationMessage = "Saved remote configuration to %s\n"
)

// ReportPrinter renders reconciliation reports as text lines.
type ReportPrinter struct {
	output      shared.Reporter
	errorOutput shared.Reporter
}

// NewReportPrinter constructs a printer writing results to output and warnings to errorOutput.
func NewReportPrinter(output io.Writer, errorOutput io.Writer) *ReportPrinter {
	return &ReportPrinter{output: shared.NewWriterReporter(output), errorOutput: shared.NewWriterReporter(errorOutput)}
}

// PrintPlan renders the planned actions together with warnings. Dry runs and applies render identical plans.
func (printer *ReportPrinter) PrintPlan(report reconcile.Report) {
	for _, node := range report.Nodes {
		if node.Err != nil {
			printer.errorOutput.Printf(nodeErrorMessage, node.DisplayPath(), node.Err)
			continue
		}
		for _, action := range node.Actions {
			printer.output.Printf(planMessage, node.DisplayPath(), action)
		}
		for _, extraRemote := range node.ExtraRemotes {
			if extraRemote.Outcome != reconcile.ExtraRemoteWarned {
				continue
			}
			if len(node.Path) == 0 {
				printer.errorOutput.Printf(rootExtraRemoteWarning, extraRemote.Name)
				continue
			}
			printer.errorOutput.Printf(nestedExtraRemoteWarning, extraRemote.Name, node.Path)
		}
		for _, missingPath := range node.MissingSubmodules {
			printer.errorOutput.Printf(missingSubmoduleWarning, path.Join(node.Path, missingPath))
		}
	}
	for _, ignoredPath := range report.IgnoredSubmodules {
		printer.errorOutput.Printf(ignoredSubmoduleNote, ignoredPath)
	}
}

// PrintSummary renders the closing line of a sync run. Runs with repositories that could not be
// read never claim to be in sync or complete.
func (printer *ReportPrinter) PrintSummary(report reconcile.Report, result remotes.ApplyResult) {
	nodesFailed := len(report.FailedNodes()) > 0
	switch {
	case !report.HasActions():
		if !nodesFailed {
			printer.output.Printf(alreadyInSyncMessage)
		}
	case !result.Applied:
		printer.output.Printf(dryRunFooterMessage)
	case result.Failed():
		printer.output.Printf(syncPartialFailureMessage, len(result.Errors()))
	case !nodesFailed:
		printer.output.Printf(syncCompleteMessage)
	}
}

// PrintSaved confirms that a configuration file was written.
func (printer *ReportPrinter) PrintSaved(configurationPath string) {
	printer.output.Printf(savedConfigurationMessage, configurationPath)
}
