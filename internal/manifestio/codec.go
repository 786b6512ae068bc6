package manifestio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/twangodev/gemote/internal/manifest"
	repoerrors "github.com/twangodev/gemote/internal/repos/errors"
)

const (
	// DocumentHeaderConstant prefixes every saved document.
	DocumentHeaderConstant = "# Gemote configuration file\n# See: https://github.com/twangodev/gemote\n#\n# -*- mode: toml -*-\n# vim: set ft=toml:\n\n"

	parseFailureReasonConstant                = "failed to parse"
	parsePositionReasonTemplateConstant       = "failed to parse at line %d, column %d"
	unknownFieldsReasonConstant               = "unknown fields"
	invalidPolicyReasonConstant               = "invalid extra_remotes value"
	encodeFailureErrorTemplateConstant        = "encode configuration: %w"
	documentSettingsLocationConstant          = "settings"
	submoduleSettingsLocationTemplateConstant = "submodules[%q].settings"
)

type nodeDocument struct {
	Settings   settingsDocument          `toml:"settings"`
	Remotes    map[string]remoteDocument `toml:"remotes"`
	Submodules map[string]nodeDocument   `toml:"submodules,omitempty"`
}

// settingsDocument keeps extra_remotes as a pointer so an absent key is told apart from an empty value.
type settingsDocument struct {
	ExtraRemotes *string `toml:"extra_remotes,omitempty"`
}

type remoteDocument struct {
	URL     string `toml:"url"`
	PushURL string `toml:"push_url,omitempty"`
}

// Unmarshal decodes and validates a document. The source names the document in errors.
func Unmarshal(source string, content []byte) (manifest.Node, error) {
	decoder := toml.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields()

	var document nodeDocument
	if decodeError := decoder.Decode(&document); decodeError != nil {
		return manifest.Node{}, describeDecodeError(source, decodeError)
	}

	node, conversionError := document.toNode(source, "")
	if conversionError != nil {
		return manifest.Node{}, conversionError
	}
	if validationError := node.Validate(source); validationError != nil {
		return manifest.Node{}, validationError
	}
	return node, nil
}

// Marshal encodes a node, header included. Remote and submodule tables are ordered by key.
func Marshal(node manifest.Node) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteString(DocumentHeaderConstant)

	encoder := toml.NewEncoder(&buffer)
	encoder.SetIndentTables(false)
	if encodeError := encoder.Encode(fromNode(node)); encodeError != nil {
		return nil, fmt.Errorf(encodeFailureErrorTemplateConstant, encodeError)
	}
	return buffer.Bytes(), nil
}

func (document nodeDocument) toNode(source string, location string) (manifest.Node, error) {
	policy, policyError := document.Settings.policy()
	if policyError != nil {
		settingsLocation := documentSettingsLocationConstant
		if len(location) > 0 {
			settingsLocation = fmt.Sprintf(submoduleSettingsLocationTemplateConstant, location)
		}
		return manifest.Node{}, repoerrors.ConfigError{Location: source + " " + settingsLocation, Reason: invalidPolicyReasonConstant, Cause: policyError}
	}

	node := manifest.Node{Settings: manifest.Settings{ExtraRemotes: policy}}
	for name, remote := range document.Remotes {
		node.Remotes = append(node.Remotes, manifest.RemoteDeclaration{Name: name, FetchURL: remote.URL, PushURL: remote.PushURL})
	}
	if len(node.Remotes) > 1 {
		node.Remotes = node.SortedRemotes()
	}

	for submodulePath, childDocument := range document.Submodules {
		child, childError := childDocument.toNode(source, submodulePath)
		if childError != nil {
			return manifest.Node{}, childError
		}
		if node.Submodules == nil {
			node.Submodules = map[string]manifest.Node{}
		}
		node.Submodules[submodulePath] = child
	}
	return node, nil
}

func (settings settingsDocument) policy() (manifest.ExtraRemotesPolicy, error) {
	if settings.ExtraRemotes == nil {
		return manifest.ExtraRemotesIgnore, nil
	}
	return manifest.ParseExtraRemotesPolicy(*settings.ExtraRemotes)
}

func fromNode(node manifest.Node) nodeDocument {
	policyText := node.Settings.ExtraRemotes.String()
	document := nodeDocument{
		Settings: settingsDocument{ExtraRemotes: &policyText},
		Remotes:  make(map[string]remoteDocument, len(node.Remotes)),
	}
	for _, declaration := range node.Remotes {
		document.Remotes[declaration.Name] = remoteDocument{URL: declaration.FetchURL, PushURL: declaration.PushURL}
	}
	for submodulePath, child := range node.Submodules {
		if document.Submodules == nil {
			document.Submodules = map[string]nodeDocument{}
		}
		document.Submodules[submodulePath] = fromNode(child)
	}
	return document
}

func describeDecodeError(source string, decodeError error) error {
	var strictMissingError *toml.StrictMissingError
	if errors.As(decodeError, &strictMissingError) {
		return repoerrors.ConfigError{Location: source, Reason: unknownFieldsReasonConstant, Cause: errors.New(strictMissingError.String())}
	}

	var positionedError *toml.DecodeError
	if errors.As(decodeError, &positionedError) {
		row, column := positionedError.Position()
		return repoerrors.ConfigError{Location: source, Reason: fmt.Sprintf(parsePositionReasonTemplateConstant, row, column), Cause: decodeError}
	}

	return repoerrors.ConfigError{Location: source, Reason: parseFailureReasonConstant, Cause: decodeError}
}
