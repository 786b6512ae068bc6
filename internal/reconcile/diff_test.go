package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twangodev/gemote/internal/manifest"
	"github.com/twangodev/gemote/internal/reconcile"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/shared"
)

const (
	diffTestOriginURLConstant   = "https://github.com/org/repo.git"
	diffTestUpstreamURLConstant = "https://github.com/upstream/repo.git"
	diffTestPushURLConstant     = "git@github.com:org/repo.git"
	diffTestStaleURLConstant    = "https://old.example.com/repo.git"
)

func TestDiffPlansActions(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		current              []shared.RemoteState
		desired              manifest.Node
		expectedActions      []shared.Action
		expectedExtraRemotes []reconcile.ExtraRemote
	}{
		{
			name:    "adds_missing_remotes_in_name_order",
			current: []shared.RemoteState{{Name: "origin", FetchURL: diffTestOriginURLConstant}},
			desired: manifest.Node{Remotes: []manifest.RemoteDeclaration{
				{Name: "upstream", FetchURL: diffTestUpstreamURLConstant},
				{Name: "origin", FetchURL: diffTestOriginURLConstant},
			}},
			expectedActions:      []shared.Action{shared.NewAddRemoteAction("upstream", diffTestUpstreamURLConstant, "")},
			expectedExtraRemotes: []reconcile.ExtraRemote{},
		},
		{
			name:                 "updates_fetch_url",
			current:              []shared.RemoteState{{Name: "origin", FetchURL: diffTestStaleURLConstant}},
			desired:              manifest.Node{Remotes: []manifest.RemoteDeclaration{{Name: "origin", FetchURL: diffTestOriginURLConstant}}},
			expectedActions:      []shared.Action{shared.NewSetFetchURLAction("origin", diffTestOriginURLConstant)},
			expectedExtraRemotes: []reconcile.ExtraRemote{},
		},
		{
			name:    "stale_fetch_url_with_matching_explicit_push",
			current: []shared.RemoteState{{Name: "origin", FetchURL: diffTestStaleURLConstant, PushURL: diffTestPushURLConstant, PushURLConfigured: true}},
			desired: manifest.Node{Remotes: []manifest.RemoteDeclaration{
				{Name: "origin", FetchURL: diffTestOriginURLConstant, PushURL: diffTestPushURLConstant},
			}},
			expectedActions:      []shared.Action{shared.NewSetFetchURLAction("origin", diffTestOriginURLConstant)},
			expectedExtraRemotes: []reconcile.ExtraRemote{},
		},
		{
			name:    "sets_declared_push_url",
			current: []shared.RemoteState{{Name: "origin", FetchURL: diffTestOriginURLConstant}},
			desired: manifest.Node{Remotes: []manifest.RemoteDeclaration{
				{Name: "origin", FetchURL: diffTestOriginURLConstant, PushURL: diffTestPushURLConstant},
			}},
			expectedActions:      []shared.Action{shared.NewSetPushURLAction("origin", diffTestPushURLConstant)},
			expectedExtraRemotes: []reconcile.ExtraRemote{},
		},
		{
			name:                 "clears_push_url_not_declared",
			current:              []shared.RemoteState{{Name: "origin", FetchURL: diffTestOriginURLConstant, PushURL: diffTestPushURLConstant, PushURLConfigured: true}},
			desired:              manifest.Node{Remotes: []manifest.RemoteDeclaration{{Name: "origin", FetchURL: diffTestOriginURLConstant}}},
			expectedActions:      []shared.Action{shared.NewSetPushURLAction("origin", "")},
			expectedExtraRemotes: []reconcile.ExtraRemote{},
		},
		{
			name:                 "explicit_push_equal_to_fetch_is_in_sync",
			current:              []shared.RemoteState{{Name: "origin", FetchURL: diffTestOriginURLConstant, PushURL: diffTestOriginURLConstant, PushURLConfigured: true}},
			desired:              manifest.Node{Remotes: []manifest.RemoteDeclaration{{Name: "origin", FetchURL: diffTestOriginURLConstant}}},
			expectedActions:      []shared.Action{},
			expectedExtraRemotes: []reconcile.ExtraRemote{},
		},
		{
			name: "ignores_extra_remotes_by_default",
			current: []shared.RemoteState{
				{Name: "origin", FetchURL: diffTestOriginURLConstant},
				{Name: "fork", FetchURL: diffTestStaleURLConstant},
			},
			desired:              manifest.Node{Remotes: []manifest.RemoteDeclaration{{Name: "origin", FetchURL: diffTestOriginURLConstant}}},
			expectedActions:      []shared.Action{},
			expectedExtraRemotes: []reconcile.ExtraRemote{{Name: "fork", Outcome: reconcile.ExtraRemoteIgnored}},
		},
		{
			name:                 "warns_about_extra_remotes",
			current:              []shared.RemoteState{{Name: "fork", FetchURL: diffTestStaleURLConstant}},
			desired:              manifest.Node{Settings: manifest.Settings{ExtraRemotes: manifest.ExtraRemotesWarn}},
			expectedActions:      []shared.Action{},
			expectedExtraRemotes: []reconcile.ExtraRemote{{Name: "fork", Outcome: reconcile.ExtraRemoteWarned}},
		},
		{
			name: "removals_follow_updates",
			current: []shared.RemoteState{
				{Name: "zeta", FetchURL: diffTestStaleURLConstant},
				{Name: "alpha", FetchURL: diffTestStaleURLConstant},
				{Name: "origin", FetchURL: diffTestStaleURLConstant},
			},
			desired: manifest.Node{
				Settings: manifest.Settings{ExtraRemotes: manifest.ExtraRemotesRemove},
				Remotes: []manifest.RemoteDeclaration{
					{Name: "upstream", FetchURL: diffTestUpstreamURLConstant},
					{Name: "origin", FetchURL: diffTestOriginURLConstant},
				},
			},
			expectedActions: []shared.Action{
				shared.NewSetFetchURLAction("origin", diffTestOriginURLConstant),
				shared.NewAddRemoteAction("upstream", diffTestUpstreamURLConstant, ""),
				shared.NewRemoveRemoteAction("alpha"),
				shared.NewRemoveRemoteAction("zeta"),
			},
			expectedExtraRemotes: []reconcile.ExtraRemote{
				{Name: "alpha", Outcome: reconcile.ExtraRemoteRemoved},
				{Name: "zeta", Outcome: reconcile.ExtraRemoteRemoved},
			},
		},
		{
			name:                 "empty_declaration_and_no_remotes",
			current:              nil,
			desired:              manifest.Node{},
			expectedActions:      []shared.Action{},
			expectedExtraRemotes: []reconcile.ExtraRemote{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			plan, diffError := reconcile.Diff(testCase.current, testCase.desired)
			require.NoError(testInstance, diffError)
			require.Equal(testInstance, testCase.expectedActions, plan.Actions)
			require.Equal(testInstance, testCase.expectedExtraRemotes, plan.ExtraRemotes)
		})
	}
}

func TestDiffRejectsInvalidDeclarations(testInstance *testing.T) {
	testCases := []struct {
		name    string
		desired manifest.Node
	}{
		{
			name: "duplicate_names",
			desired: manifest.Node{Remotes: []manifest.RemoteDeclaration{
				{Name: "origin", FetchURL: diffTestOriginURLConstant},
				{Name: "origin", FetchURL: diffTestUpstreamURLConstant},
			}},
		},
		{
			name:    "blank_name",
			desired: manifest.Node{Remotes: []manifest.RemoteDeclaration{{Name: " ", FetchURL: diffTestOriginURLConstant}}},
		},
		{
			name:    "unknown_policy",
			desired: manifest.Node{Settings: manifest.Settings{ExtraRemotes: manifest.ExtraRemotesPolicy(9)}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, diffError := reconcile.Diff(nil, testCase.desired)
			var configError repoerrors.ConfigError
			require.ErrorAs(testInstance, diffError, &configError)
		})
	}
}

func TestDiffIsIdempotentAfterApplyingPlan(testInstance *testing.T) {
	desired := manifest.Node{
		Settings: manifest.Settings{ExtraRemotes: manifest.ExtraRemotesRemove},
		Remotes: []manifest.RemoteDeclaration{
			{Name: "origin", FetchURL: diffTestOriginURLConstant, PushURL: diffTestPushURLConstant},
			{Name: "upstream", FetchURL: diffTestUpstreamURLConstant},
		},
	}
	current := []shared.RemoteState{
		{Name: "origin", FetchURL: diffTestStaleURLConstant},
		{Name: "upstream", FetchURL: diffTestUpstreamURLConstant, PushURL: diffTestStaleURLConstant, PushURLConfigured: true},
		{Name: "fork", FetchURL: diffTestStaleURLConstant},
	}

	plan, diffError := reconcile.Diff(current, desired)
	require.NoError(testInstance, diffError)
	require.NotEmpty(testInstance, plan.Actions)

	repeated, repeatError := reconcile.Diff(current, desired)
	require.NoError(testInstance, repeatError)
	require.Equal(testInstance, plan, repeated)

	applied := simulateActions(current, plan.Actions)
	settled, settledError := reconcile.Diff(applied, desired)
	require.NoError(testInstance, settledError)
	require.Empty(testInstance, settled.Actions)
}

// simulateActions mirrors how git mutates remote configuration for each action kind.
func simulateActions(current []shared.RemoteState, actions []shared.Action) []shared.RemoteState {
	states := map[string]shared.RemoteState{}
	order := []string{}
	for _, state := range current {
		states[state.Name] = state
		order = append(order, state.Name)
	}

	for _, action := range actions {
		switch action.Kind {
		case shared.ActionAddRemote:
			state := shared.RemoteState{Name: action.Name, FetchURL: action.FetchURL, PushURL: action.FetchURL}
			if len(action.PushURL) > 0 {
				state.PushURL = action.PushURL
				state.PushURLConfigured = true
			}
			states[action.Name] = state
			order = append(order, action.Name)
		case shared.ActionSetFetchURL:
			state := states[action.Name]
			state.FetchURL = action.FetchURL
			states[action.Name] = state
		case shared.ActionSetPushURL:
			state := states[action.Name]
			state.PushURL = action.PushURL
			state.PushURLConfigured = len(action.PushURL) > 0
			if !state.PushURLConfigured {
				state.PushURL = state.FetchURL
			}
			states[action.Name] = state
		case shared.ActionRemove:
			delete(states, action.Name)
		}
	}

	result := []shared.RemoteState{}
	for _, name := range order {
		if state, exists := states[name]; exists {
			result = append(result, state)
		}
	}
	return result
}
