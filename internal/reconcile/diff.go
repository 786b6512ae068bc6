package reconcile

import (
	"fmt"
	"sort"

	"github.com/twangodev/gemote/internal/manifest"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/shared"
)

const (
	duplicateRemoteReasonTemplateConstant   = "duplicate remote %q"
	invalidRemoteNameReasonConstant         = "invalid remote name"
	unsupportedPolicyReasonTemplateConstant = "unsupported extra_remotes policy %d"
)

// Diff computes the actions that bring the current remotes in line with the declared node.
//
// Declared remotes are visited in byte-wise name order. A missing remote is
// added, a differing fetch URL is replaced, and the push URL is replaced or
// cleared when the effective push URL after the fetch update differs from the
// declared one. Local remotes without a declaration are then classified by the
// node's policy; under ExtraRemotesRemove each one gets a removal action.
// Removals always follow additions and updates.
func Diff(current []shared.RemoteState, desired manifest.Node) (Plan, error) {
	if validationError := validateDeclarations(desired); validationError != nil {
		return Plan{}, validationError
	}

	currentByName := make(map[string]shared.RemoteState, len(current))
	for _, state := range current {
		currentByName[state.Name] = state
	}

	plan := Plan{Actions: []shared.Action{}, ExtraRemotes: []ExtraRemote{}}
	declaredNames := make(map[string]struct{}, len(desired.Remotes))

	for _, declaration := range desired.SortedRemotes() {
		declaredNames[declaration.Name] = struct{}{}

		state, exists := currentByName[declaration.Name]
		if !exists {
			plan.Actions = append(plan.Actions, shared.NewAddRemoteAction(declaration.Name, declaration.FetchURL, declaration.PushURL))
			continue
		}

		if state.FetchURL != declaration.FetchURL {
			plan.Actions = append(plan.Actions, shared.NewSetFetchURLAction(declaration.Name, declaration.FetchURL))
		}

		effectivePushURL := declaration.FetchURL
		if state.PushURLConfigured {
			effectivePushURL = state.PushURL
		}
		if effectivePushURL != declaration.EffectivePushURL() {
			plan.Actions = append(plan.Actions, shared.NewSetPushURLAction(declaration.Name, declaration.PushURL))
		}
	}

	extraNames := make([]string, 0)
	for name := range currentByName {
		if _, declared := declaredNames[name]; !declared {
			extraNames = append(extraNames, name)
		}
	}
	sort.Strings(extraNames)

	for _, name := range extraNames {
		switch desired.Settings.ExtraRemotes {
		case manifest.ExtraRemotesWarn:
			plan.ExtraRemotes = append(plan.ExtraRemotes, ExtraRemote{Name: name, Outcome: ExtraRemoteWarned})
		case manifest.ExtraRemotesRemove:
			plan.ExtraRemotes = append(plan.ExtraRemotes, ExtraRemote{Name: name, Outcome: ExtraRemoteRemoved})
			plan.Actions = append(plan.Actions, shared.NewRemoveRemoteAction(name))
		default:
			plan.ExtraRemotes = append(plan.ExtraRemotes, ExtraRemote{Name: name, Outcome: ExtraRemoteIgnored})
		}
	}

	return plan, nil
}

func validateDeclarations(desired manifest.Node) error {
	if !desired.Settings.ExtraRemotes.IsValid() {
		return repoerrors.ConfigError{Reason: fmt.Sprintf(unsupportedPolicyReasonTemplateConstant, int(desired.Settings.ExtraRemotes))}
	}

	seen := make(map[string]struct{}, len(desired.Remotes))
	for _, declaration := range desired.Remotes {
		if _, nameError := shared.NewRemoteName(declaration.Name); nameError != nil {
			return repoerrors.ConfigError{Reason: invalidRemoteNameReasonConstant, Cause: nameError}
		}
		if _, duplicate := seen[declaration.Name]; duplicate {
			return repoerrors.ConfigError{Reason: fmt.Sprintf(duplicateRemoteReasonTemplateConstant, declaration.Name)}
		}
		seen[declaration.Name] = struct{}{}
	}
	return nil
}
