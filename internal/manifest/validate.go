package manifest

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
	"github.com/twangodev/gemote/internal/repos/shared"
)

const (
	submoduleLocationTemplateConstant        = "submodules[%q]"
	remoteLocationTemplateConstant           = "remotes[%d]"
	locationSeparatorConstant                = "."
	duplicateRemoteReasonTemplateConstant    = "duplicate remote %q"
	invalidRemoteNameReasonConstant          = "invalid remote name"
	emptyFetchURLReasonTemplateConstant      = "remote %q has no url"
	invalidPolicyReasonTemplateConstant      = "unsupported extra_remotes policy %d"
	invalidSubmodulePathReasonConstant       = "invalid submodule path"
	duplicateSubmoduleReasonTemplateConstant = "submodule path %q duplicates %q"
	emptySubmodulePathMessageConstant        = "submodule path must not be empty"
	absoluteSubmodulePathMessageConstant     = "submodule path must be relative"
	escapingSubmodulePathMessageConstant     = "submodule path must stay inside the repository"
	parentDirectorySegmentConstant           = ".."
	currentDirectorySegmentConstant          = "."
	pathSeparatorConstant                    = "/"
)

var (
	// ErrSubmodulePathEmpty indicates a blank submodule key.
	ErrSubmodulePathEmpty = errors.New(emptySubmodulePathMessageConstant)
	// ErrSubmodulePathAbsolute indicates a submodule key that is not relative.
	ErrSubmodulePathAbsolute = errors.New(absoluteSubmodulePathMessageConstant)
	// ErrSubmodulePathEscapes indicates a submodule key leaving the parent repository.
	ErrSubmodulePathEscapes = errors.New(escapingSubmodulePathMessageConstant)
)

// NormalizeSubmodulePath cleans a relative submodule path into forward-slash form.
func NormalizeSubmodulePath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", ErrSubmodulePathEmpty
	}

	slashed := filepath.ToSlash(trimmed)
	if strings.HasPrefix(slashed, pathSeparatorConstant) || filepath.IsAbs(trimmed) || filepath.VolumeName(trimmed) != "" {
		return "", ErrSubmodulePathAbsolute
	}

	cleaned := path.Clean(slashed)
	if cleaned == currentDirectorySegmentConstant {
		return "", ErrSubmodulePathEmpty
	}
	if cleaned == parentDirectorySegmentConstant || strings.HasPrefix(cleaned, parentDirectorySegmentConstant+pathSeparatorConstant) {
		return "", ErrSubmodulePathEscapes
	}
	return cleaned, nil
}

// Validate checks the whole tree and returns the first violation as a ConfigError.
// The source argument names the document in error messages.
func (node Node) Validate(source string) error {
	return node.validate(source, "")
}

func (node Node) validate(source string, location string) error {
	if !node.Settings.ExtraRemotes.IsValid() {
		return configError(source, location, fmt.Sprintf(invalidPolicyReasonTemplateConstant, int(node.Settings.ExtraRemotes)), nil)
	}

	seenRemotes := make(map[string]struct{}, len(node.Remotes))
	for index, declaration := range node.Remotes {
		if _, nameError := shared.NewRemoteName(declaration.Name); nameError != nil {
			return configError(source, joinLocation(location, fmt.Sprintf(remoteLocationTemplateConstant, index)), invalidRemoteNameReasonConstant, nameError)
		}
		if _, duplicate := seenRemotes[declaration.Name]; duplicate {
			return configError(source, location, fmt.Sprintf(duplicateRemoteReasonTemplateConstant, declaration.Name), nil)
		}
		seenRemotes[declaration.Name] = struct{}{}
		if len(strings.TrimSpace(declaration.FetchURL)) == 0 {
			return configError(source, location, fmt.Sprintf(emptyFetchURLReasonTemplateConstant, declaration.Name), nil)
		}
	}

	normalizedKeys := make(map[string]string, len(node.Submodules))
	for _, submodulePath := range node.SubmodulePaths() {
		submoduleLocation := joinLocation(location, fmt.Sprintf(submoduleLocationTemplateConstant, submodulePath))
		normalized, pathError := NormalizeSubmodulePath(submodulePath)
		if pathError != nil {
			return configError(source, submoduleLocation, invalidSubmodulePathReasonConstant, pathError)
		}
		if previous, duplicate := normalizedKeys[normalized]; duplicate {
			return configError(source, location, fmt.Sprintf(duplicateSubmoduleReasonTemplateConstant, submodulePath, previous), nil)
		}
		normalizedKeys[normalized] = submodulePath

		if childError := node.Submodules[submodulePath].validate(source, submoduleLocation); childError != nil {
			return childError
		}
	}
	return nil
}

// NormalizedSubmodules re-keys the submodule map by normalized path. Invalid keys are dropped;
// call Validate first to reject them.
func (node Node) NormalizedSubmodules() map[string]Node {
	normalized := make(map[string]Node, len(node.Submodules))
	for _, submodulePath := range node.SubmodulePaths() {
		cleaned, pathError := NormalizeSubmodulePath(submodulePath)
		if pathError != nil {
			continue
		}
		if _, exists := normalized[cleaned]; exists {
			continue
		}
		normalized[cleaned] = node.Submodules[submodulePath]
	}
	return normalized
}

func joinLocation(parent string, child string) string {
	if len(parent) == 0 {
		return child
	}
	return parent + locationSeparatorConstant + child
}

func configError(source string, location string, reason string, cause error) error {
	return repoerrors.ConfigError{
		Location: strings.TrimSpace(source + " " + location),
		Reason:   reason,
		Cause:    cause,
	}
}
