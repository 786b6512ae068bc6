package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twangodev/gemote/internal/reconcile"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/remotes"
	"github.com/twangodev/gemote/internal/repos/shared"
	"github.com/twangodev/gemote/internal/ui"
)

const (
	printerTestUpstreamURLConstant = "https://github.com/upstream/project.git"
	printerTestRootConstant        = "/tmp/project"
	printerTestCoreConstant        = "/tmp/project/libs/core"
)

func printerTestReport() reconcile.Report {
	return reconcile.Report{
		Nodes: []reconcile.NodeReport{
			{
				Repository:        printerTestRootConstant,
				Actions:           []shared.Action{shared.NewAddRemoteAction("upstream", printerTestUpstreamURLConstant, "")},
				ExtraRemotes:      []reconcile.ExtraRemote{{Name: "fork", Outcome: reconcile.ExtraRemoteWarned}, {Name: "mirror", Outcome: reconcile.ExtraRemoteIgnored}},
				MissingSubmodules: []string{"vendor/gone"},
			},
			{
				Path:         "libs/core",
				Repository:   printerTestCoreConstant,
				ExtraRemotes: []reconcile.ExtraRemote{{Name: "backup", Outcome: reconcile.ExtraRemoteWarned}},
			},
			{
				Path:       "libs/broken",
				Repository: "/tmp/project/libs/broken",
				Err:        repoerrors.RepoAccessError{Repository: "/tmp/project/libs/broken", Operation: "read remotes", Cause: errors.New("boom")},
			},
		},
	}
}

func TestReportPrinterPrintsPlanAndWarnings(testInstance *testing.T) {
	var output bytes.Buffer
	var errorOutput bytes.Buffer
	printer := ui.NewReportPrinter(&output, &errorOutput)

	printer.PrintPlan(printerTestReport())

	require.Equal(testInstance, "PLAN-SYNC-REMOTE: . add remote upstream ("+printerTestUpstreamURLConstant+")\n", output.String())
	require.Equal(testInstance,
		"warning: remote 'fork' exists locally but not in config\n"+
			"warning: submodule 'vendor/gone' is declared in config but was not found\n"+
			"warning: remote 'backup' exists locally in libs/core but not in config\n"+
			"SYNC-REMOTE-SKIP: libs/broken (error: repository /tmp/project/libs/broken: read remotes: boom)\n",
		errorOutput.String(),
	)
}

func TestReportPrinterPrintsIgnoredSubmodules(testInstance *testing.T) {
	var output bytes.Buffer
	var errorOutput bytes.Buffer
	printer := ui.NewReportPrinter(&output, &errorOutput)

	printer.PrintPlan(reconcile.Report{
		Nodes:             []reconcile.NodeReport{{Repository: printerTestRootConstant}},
		IgnoredSubmodules: []string{"libs/core"},
	})

	require.Empty(testInstance, output.String())
	require.Equal(testInstance, "note: submodule 'libs/core' is configured but not synced; use --recursive\n", errorOutput.String())
}

func TestReportPrinterPrintsSummary(testInstance *testing.T) {
	planned := printerTestReport()
	plannedWithoutFailures := reconcile.Report{Nodes: planned.Nodes[:2]}
	unreadableOnly := reconcile.Report{Nodes: []reconcile.NodeReport{{Repository: printerTestRootConstant}, planned.Nodes[2]}}
	failure := repoerrors.MutationError{Repository: printerTestRootConstant, Action: planned.Nodes[0].Actions[0], Cause: errors.New("rejected")}

	testCases := []struct {
		name           string
		report         reconcile.Report
		result         remotes.ApplyResult
		expectedOutput string
	}{
		{
			name:           "in_sync",
			report:         reconcile.Report{Nodes: []reconcile.NodeReport{{Repository: printerTestRootConstant}}},
			result:         remotes.ApplyResult{Applied: true},
			expectedOutput: "Already in sync. No changes needed.\n",
		},
		{
			name:           "dry_run",
			report:         planned,
			result:         remotes.ApplyResult{Outcomes: []remotes.ActionOutcome{{Status: remotes.OutcomePlanned}}},
			expectedOutput: "(dry run: no changes applied)\n",
		},
		{
			name:           "applied",
			report:         plannedWithoutFailures,
			result:         remotes.ApplyResult{Applied: true, Outcomes: []remotes.ActionOutcome{{Status: remotes.OutcomeApplied}}},
			expectedOutput: "Sync complete.\n",
		},
		{
			name:   "applied_with_unreadable_repository",
			report: planned,
			result: remotes.ApplyResult{Applied: true, Outcomes: []remotes.ActionOutcome{{Status: remotes.OutcomeApplied}}},
		},
		{
			name:   "nothing_planned_with_unreadable_repository",
			report: unreadableOnly,
			result: remotes.ApplyResult{Applied: true},
		},
		{
			name:           "partial_failure",
			report:         planned,
			result:         remotes.ApplyResult{Applied: true, Outcomes: []remotes.ActionOutcome{{Status: remotes.OutcomeFailed, Err: failure}}},
			expectedOutput: "Sync finished with 1 failed action(s).\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			ui.NewReportPrinter(&output, nil).PrintSummary(testCase.report, testCase.result)
			require.Equal(testInstance, testCase.expectedOutput, output.String())
		})
	}
}
