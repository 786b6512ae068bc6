package remotes

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/twangodev/gemote/internal/reconcile"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/shared"
)

const (
	successMessage = "SYNC-REMOTE-DONE: %s %s\n"
	failureMessage = "SYNC-REMOTE-SKIP: %s %s (error: %v)\n"

	applyingActionLogMessageConstant = "Applying remote action"
	actionFailedLogMessageConstant   = "Remote action failed"
	pathLogFieldConstant             = "path"
	repositoryLogFieldConstant       = "repository"
	actionLogFieldConstant           = "action"
)

var (
	// ErrRemoteMutatorNotConfigured indicates an apply was requested without a remote mutator.
	ErrRemoteMutatorNotConfigured = errors.New("remote mutator not configured")
	// ErrUnsupportedAction indicates an action kind the applier cannot execute.
	ErrUnsupportedAction = errors.New("unsupported remote action")
)

// Mode selects whether actions are executed or only previewed.
type Mode int

// Supported application modes.
const (
	ModeDryRun Mode = iota
	ModeApply
)

// OutcomeStatus describes what happened to one planned action.
type OutcomeStatus string

// Possible action outcomes.
const (
	OutcomePlanned OutcomeStatus = "planned"
	OutcomeApplied OutcomeStatus = "applied"
	OutcomeFailed  OutcomeStatus = "failed"
)

// ActionOutcome is the result of one planned action.
type ActionOutcome struct {
	Path       string
	Repository string
	Action     shared.Action
	Status     OutcomeStatus
	Err        error
}

// ApplyResult aggregates the outcomes of an application run in report order.
type ApplyResult struct {
	Applied  bool
	Outcomes []ActionOutcome
}

// Failed reports whether any action could not be applied.
func (result ApplyResult) Failed() bool {
	return len(result.Errors()) > 0
}

// Errors returns the mutation failures in execution order.
func (result ApplyResult) Errors() []error {
	failures := []error{}
	for _, outcome := range result.Outcomes {
		if outcome.Status == OutcomeFailed {
			failures = append(failures, outcome.Err)
		}
	}
	return failures
}

// Dependencies captures collaborators required to apply reports.
type Dependencies struct {
	Mutator  shared.RemoteMutator
	Reporter shared.Reporter
	Logger   *zap.Logger
}

// Applier executes or previews reconciliation reports.
type Applier struct {
	dependencies Dependencies
}

// NewApplier constructs an Applier from the provided dependencies.
func NewApplier(dependencies Dependencies) *Applier {
	if dependencies.Reporter == nil {
		dependencies.Reporter = shared.NewWriterReporter(nil)
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Applier{dependencies: dependencies}
}

// Apply walks the report nodes in order and their actions in plan order.
//
// In dry-run mode nothing is mutated and every action is reported as planned.
// In apply mode a failing action is recorded and processing continues with the
// next one; nothing is retried or rolled back. Nodes that could not be
// evaluated are skipped.
func (applier *Applier) Apply(executionContext context.Context, report reconcile.Report, mode Mode) (ApplyResult, error) {
	if mode == ModeApply && applier.dependencies.Mutator == nil {
		return ApplyResult{}, ErrRemoteMutatorNotConfigured
	}

	result := ApplyResult{Applied: mode == ModeApply, Outcomes: []ActionOutcome{}}
	for _, node := range report.Nodes {
		if node.Err != nil {
			continue
		}
		for _, action := range node.Actions {
			outcome := ActionOutcome{Path: node.Path, Repository: node.Repository, Action: action, Status: OutcomePlanned}
			if mode == ModeApply {
				outcome = applier.applyAction(executionContext, node, outcome)
			}
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}
	return result, nil
}

func (applier *Applier) applyAction(executionContext context.Context, node reconcile.NodeReport, outcome ActionOutcome) ActionOutcome {
	applier.dependencies.Logger.Debug(
		applyingActionLogMessageConstant,
		zap.String(pathLogFieldConstant, node.DisplayPath()),
		zap.String(repositoryLogFieldConstant, node.Repository),
		zap.Stringer(actionLogFieldConstant, outcome.Action),
	)

	mutationError := applier.execute(executionContext, node.Repository, outcome.Action)
	if mutationError != nil {
		outcome.Status = OutcomeFailed
		outcome.Err = repoerrors.MutationError{Repository: node.Repository, Action: outcome.Action, Cause: mutationError}
		applier.dependencies.Logger.Debug(
			actionFailedLogMessageConstant,
			zap.String(repositoryLogFieldConstant, node.Repository),
			zap.Stringer(actionLogFieldConstant, outcome.Action),
			zap.Error(mutationError),
		)
		applier.dependencies.Reporter.Printf(failureMessage, node.DisplayPath(), outcome.Action, mutationError)
		return outcome
	}

	outcome.Status = OutcomeApplied
	applier.dependencies.Reporter.Printf(successMessage, node.DisplayPath(), outcome.Action)
	return outcome
}

func (applier *Applier) execute(executionContext context.Context, repository string, action shared.Action) error {
	mutator := applier.dependencies.Mutator
	switch action.Kind {
	case shared.ActionAddRemote:
		if addError := mutator.AddRemote(executionContext, repository, action.Name, action.FetchURL); addError != nil {
			return addError
		}
		if len(action.PushURL) > 0 {
			return mutator.SetPushURL(executionContext, repository, action.Name, action.PushURL)
		}
		return nil
	case shared.ActionSetFetchURL:
		return mutator.SetFetchURL(executionContext, repository, action.Name, action.FetchURL)
	case shared.ActionSetPushURL:
		return mutator.SetPushURL(executionContext, repository, action.Name, action.PushURL)
	case shared.ActionRemove:
		return mutator.RemoveRemote(executionContext, repository, action.Name)
	default:
		return ErrUnsupportedAction
	}
}
