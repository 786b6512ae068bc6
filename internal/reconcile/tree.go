package reconcile

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/twangodev/gemote/internal/manifest"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/shared"
)

const (
	// DefaultMaxDepthConstant bounds recursion when Options.MaxDepth is not positive.
	DefaultMaxDepthConstant = 32
	// DefaultConcurrencyConstant bounds sibling evaluation when Options.Concurrency is not positive.
	DefaultConcurrencyConstant = 1

	readRemotesOperationConstant        = "read remotes"
	discoverSubmodulesOperationConstant = "discover submodules"
	descendOperationConstant            = "descend into submodule"

	reconcilingNodeMessageConstant  = "Reconciling repository"
	reconciledNodeMessageConstant   = "Planned repository changes"
	nodeFailedMessageConstant       = "Skipping repository after failure"
	capturingNodeMessageConstant    = "Capturing repository remotes"
	pathFieldNameConstant           = "path"
	repositoryFieldNameConstant     = "repository"
	actionCountFieldNameConstant    = "actions"
	submoduleCountFieldNameConstant = "submodules"
)

var (
	// ErrRemoteReaderNotConfigured indicates the reconciler was built without a remote reader.
	ErrRemoteReaderNotConfigured = errors.New("remote reader not configured")
	// ErrDiscovererNotConfigured indicates recursion was requested without a submodule discoverer.
	ErrDiscovererNotConfigured = errors.New("submodule discoverer not configured")
	// ErrSubmoduleCycle indicates a nested repository resolves to one of its ancestors.
	ErrSubmoduleCycle = errors.New("submodule cycle detected")
	// ErrMaxDepthExceeded indicates nesting deeper than the configured limit.
	ErrMaxDepthExceeded = errors.New("maximum submodule depth exceeded")
)

// Options tune a reconciliation run.
type Options struct {
	Recursive   bool
	MaxDepth    int
	Concurrency int
}

// Dependencies supplies the collaborators used by the reconciler.
type Dependencies struct {
	Reader     shared.RemoteReader
	Discoverer shared.SubmoduleDiscoverer
	Logger     *zap.Logger
}

// Reconciler walks repository trees and plans remote changes.
type Reconciler struct {
	reader     shared.RemoteReader
	discoverer shared.SubmoduleDiscoverer
	logger     *zap.Logger
}

// NewReconciler constructs a reconciler from its dependencies.
func NewReconciler(dependencies Dependencies) (*Reconciler, error) {
	if dependencies.Reader == nil {
		return nil, ErrRemoteReaderNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{reader: dependencies.Reader, discoverer: dependencies.Discoverer, logger: logger}, nil
}

// Reconcile plans the changes for the repository and, when recursive, its nested repositories.
//
// The configuration is validated before any repository is read. Failures
// reading or discovering the root are returned as errors; failures below the
// root are attached to the affected node and stop only that branch. Siblings
// may be evaluated concurrently but the report order never depends on it.
func (reconciler *Reconciler) Reconcile(executionContext context.Context, repository string, config manifest.Node, options Options) (Report, error) {
	if validationError := config.Validate(""); validationError != nil {
		return Report{}, validationError
	}
	options = normalizeOptions(options)
	if options.Recursive && reconciler.discoverer == nil {
		return Report{}, ErrDiscovererNotConfigured
	}

	root := filepath.Clean(repository)
	report := Report{Nodes: []NodeReport{}, IgnoredSubmodules: []string{}}

	rootReport, planError := reconciler.planNode(executionContext, "", root, config)
	if planError != nil {
		return Report{}, planError
	}

	if !options.Recursive {
		report.Nodes = append(report.Nodes, rootReport)
		for cleanedPath := range config.NormalizedSubmodules() {
			report.IgnoredSubmodules = append(report.IgnoredSubmodules, cleanedPath)
		}
		sort.Strings(report.IgnoredSubmodules)
		return report, nil
	}

	submodules, discoveryError := reconciler.discover(executionContext, root)
	if discoveryError != nil {
		return Report{}, discoveryError
	}

	children, missing := pairSubmodules(submodules, config)
	rootReport.MissingSubmodules = missing
	report.Nodes = append(report.Nodes, rootReport)

	descendants := reconciler.reconcileChildren(executionContext, "", children, []string{root}, 1, options)
	report.Nodes = append(report.Nodes, descendants...)
	return report, nil
}

type pairedSubmodule struct {
	submodule shared.Submodule
	config    manifest.Node
}

// pairSubmodules matches discovered repositories with their declarations. Discovered
// repositories without a declaration get a node with no remotes that keeps the parent's
// settings; declarations without a repository are returned as missing paths.
func pairSubmodules(submodules []shared.Submodule, config manifest.Node) ([]pairedSubmodule, []string) {
	declared := config.NormalizedSubmodules()
	matched := make(map[string]struct{}, len(declared))

	paired := make([]pairedSubmodule, 0, len(submodules))
	for _, submodule := range submodules {
		childConfig := manifest.Node{Settings: config.Settings}
		if cleanedPath, pathError := manifest.NormalizeSubmodulePath(submodule.Path); pathError == nil {
			if declaredConfig, exists := declared[cleanedPath]; exists {
				childConfig = declaredConfig
				matched[cleanedPath] = struct{}{}
			}
		}
		paired = append(paired, pairedSubmodule{submodule: submodule, config: childConfig})
	}

	missing := []string{}
	for cleanedPath := range declared {
		if _, found := matched[cleanedPath]; !found {
			missing = append(missing, cleanedPath)
		}
	}
	sort.Strings(missing)
	return paired, missing
}

func (reconciler *Reconciler) reconcileChildren(executionContext context.Context, parentPath string, children []pairedSubmodule, ancestors []string, depth int, options Options) []NodeReport {
	branches := make([][]NodeReport, len(children))

	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(options.Concurrency)
	for childIndex := range children {
		child := children[childIndex]
		group.Go(func() error {
			branches[childIndex] = reconciler.reconcileBranch(groupContext, path.Join(parentPath, child.submodule.Path), child, ancestors, depth, options)
			return nil
		})
	}
	_ = group.Wait()

	nodes := []NodeReport{}
	for _, branch := range branches {
		nodes = append(nodes, branch...)
	}
	return nodes
}

func (reconciler *Reconciler) reconcileBranch(executionContext context.Context, nodePath string, child pairedSubmodule, ancestors []string, depth int, options Options) []NodeReport {
	repository := filepath.Clean(child.submodule.Repository)

	if guardError := guardDescent(repository, ancestors, depth, options.MaxDepth); guardError != nil {
		return []NodeReport{reconciler.failedNode(nodePath, repository, guardError)}
	}

	nodeReport, planError := reconciler.planNode(executionContext, nodePath, repository, child.config)
	if planError != nil {
		return []NodeReport{reconciler.failedNode(nodePath, repository, planError)}
	}

	submodules, discoveryError := reconciler.discover(executionContext, repository)
	if discoveryError != nil {
		return []NodeReport{reconciler.failedNode(nodePath, repository, discoveryError)}
	}

	grandchildren, missing := pairSubmodules(submodules, child.config)
	nodeReport.MissingSubmodules = missing

	nodes := []NodeReport{nodeReport}
	branchAncestors := append(append([]string{}, ancestors...), repository)
	nodes = append(nodes, reconciler.reconcileChildren(executionContext, nodePath, grandchildren, branchAncestors, depth+1, options)...)
	return nodes
}

func (reconciler *Reconciler) planNode(executionContext context.Context, nodePath string, repository string, config manifest.Node) (NodeReport, error) {
	reconciler.logger.Debug(reconcilingNodeMessageConstant, zap.String(pathFieldNameConstant, nodePath), zap.String(repositoryFieldNameConstant, repository))

	states, readError := reconciler.reader.ReadRemotes(executionContext, repository)
	if readError != nil {
		return NodeReport{}, accessError(repository, readRemotesOperationConstant, readError)
	}

	plan, diffError := Diff(states, config)
	if diffError != nil {
		return NodeReport{}, diffError
	}

	reconciler.logger.Debug(
		reconciledNodeMessageConstant,
		zap.String(pathFieldNameConstant, nodePath),
		zap.String(repositoryFieldNameConstant, repository),
		zap.Int(actionCountFieldNameConstant, len(plan.Actions)),
	)

	return NodeReport{
		Path:              nodePath,
		Repository:        repository,
		Actions:           plan.Actions,
		ExtraRemotes:      plan.ExtraRemotes,
		MissingSubmodules: []string{},
	}, nil
}

func (reconciler *Reconciler) discover(executionContext context.Context, repository string) ([]shared.Submodule, error) {
	submodules, discoveryError := reconciler.discoverer.DiscoverSubmodules(executionContext, repository)
	if discoveryError != nil {
		return nil, accessError(repository, discoverSubmodulesOperationConstant, discoveryError)
	}
	return submodules, nil
}

func (reconciler *Reconciler) failedNode(nodePath string, repository string, failure error) NodeReport {
	reconciler.logger.Debug(nodeFailedMessageConstant, zap.String(pathFieldNameConstant, nodePath), zap.String(repositoryFieldNameConstant, repository), zap.Error(failure))
	return NodeReport{
		Path:              nodePath,
		Repository:        repository,
		Actions:           []shared.Action{},
		ExtraRemotes:      []ExtraRemote{},
		MissingSubmodules: []string{},
		Err:               failure,
	}
}

func guardDescent(repository string, ancestors []string, depth int, maxDepth int) error {
	for _, ancestor := range ancestors {
		if ancestor == repository {
			return repoerrors.RepoAccessError{Repository: repository, Operation: descendOperationConstant, Cause: ErrSubmoduleCycle}
		}
	}
	if depth > maxDepth {
		return repoerrors.RepoAccessError{Repository: repository, Operation: descendOperationConstant, Cause: ErrMaxDepthExceeded}
	}
	return nil
}

func accessError(repository string, operation string, cause error) error {
	var existing repoerrors.RepoAccessError
	if errors.As(cause, &existing) {
		return cause
	}
	var configError repoerrors.ConfigError
	if errors.As(cause, &configError) {
		return cause
	}
	return repoerrors.RepoAccessError{Repository: repository, Operation: operation, Cause: cause}
}

func normalizeOptions(options Options) Options {
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepthConstant
	}
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrencyConstant
	}
	return options
}
