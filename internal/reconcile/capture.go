package reconcile

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/twangodev/gemote/internal/manifest"
	"github.com/twangodev/gemote/internal/repos/shared"
)

// Capture snapshots the remotes of the repository and, when recursive, of its nested repositories.
//
// Unlike Reconcile, any failure aborts the capture so that a partial tree is
// never saved.
func (reconciler *Reconciler) Capture(executionContext context.Context, repository string, options Options) (manifest.StateTree, error) {
	options = normalizeOptions(options)
	if options.Recursive && reconciler.discoverer == nil {
		return manifest.StateTree{}, ErrDiscovererNotConfigured
	}

	root := filepath.Clean(repository)
	return reconciler.captureNode(executionContext, "", root, nil, 0, options)
}

func (reconciler *Reconciler) captureNode(executionContext context.Context, nodePath string, repository string, ancestors []string, depth int, options Options) (manifest.StateTree, error) {
	if depth > 0 {
		if guardError := guardDescent(repository, ancestors, depth, options.MaxDepth); guardError != nil {
			return manifest.StateTree{}, guardError
		}
	}

	states, readError := reconciler.reader.ReadRemotes(executionContext, repository)
	if readError != nil {
		return manifest.StateTree{}, accessError(repository, readRemotesOperationConstant, readError)
	}
	tree := manifest.StateTree{Remotes: states}
	if !options.Recursive {
		return tree, nil
	}

	submodules, discoveryError := reconciler.discover(executionContext, repository)
	if discoveryError != nil {
		return manifest.StateTree{}, discoveryError
	}

	reconciler.logger.Debug(
		capturingNodeMessageConstant,
		zap.String(pathFieldNameConstant, nodePath),
		zap.String(repositoryFieldNameConstant, repository),
		zap.Int(submoduleCountFieldNameConstant, len(submodules)),
	)

	if len(submodules) == 0 {
		return tree, nil
	}

	branchAncestors := append(append([]string{}, ancestors...), repository)
	tree.Submodules = make(map[string]manifest.StateTree, len(submodules))
	var treeMutex sync.Mutex

	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(options.Concurrency)
	for _, submodule := range submodules {
		group.Go(func() error {
			childTree, captureError := reconciler.captureChild(groupContext, nodePath, submodule, branchAncestors, depth+1, options)
			if captureError != nil {
				return captureError
			}
			treeMutex.Lock()
			tree.Submodules[childTree.key] = childTree.tree
			treeMutex.Unlock()
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return manifest.StateTree{}, waitError
	}
	return tree, nil
}

type capturedChild struct {
	key  string
	tree manifest.StateTree
}

func (reconciler *Reconciler) captureChild(executionContext context.Context, parentPath string, submodule shared.Submodule, ancestors []string, depth int, options Options) (capturedChild, error) {
	key, pathError := manifest.NormalizeSubmodulePath(submodule.Path)
	if pathError != nil {
		return capturedChild{}, accessError(submodule.Repository, discoverSubmodulesOperationConstant, pathError)
	}
	childPath := key
	if len(parentPath) > 0 {
		childPath = parentPath + "/" + key
	}
	tree, captureError := reconciler.captureNode(executionContext, childPath, filepath.Clean(submodule.Repository), ancestors, depth, options)
	if captureError != nil {
		return capturedChild{}, captureError
	}
	return capturedChild{key: key, tree: tree}, nil
}
