package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/twangodev/gemote/internal/reconcile"
	"github.com/twangodev/gemote/internal/repos/remotes"
)

// OutputFormat selects how sync reports are rendered.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

const (
	unsupportedOutputFormatTemplateConstant = "unsupported output format %q (expected text, json, or yaml)"
	jsonIndentConstant                      = "  "
	yamlIndentConstant                      = 2
)

// ErrUnsupportedOutputFormat indicates an unknown output format name.
var ErrUnsupportedOutputFormat = errors.New("unsupported output format")

// ParseOutputFormat converts a user supplied format name. Empty selects text.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case "", OutputFormatText:
		return OutputFormatText, nil
	case OutputFormatJSON, OutputFormatYAML:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedOutputFormatTemplateConstant+": %w", raw, ErrUnsupportedOutputFormat)
	}
}

type reportDocument struct {
	DryRun            bool           `json:"dry_run" yaml:"dry_run"`
	Nodes             []nodeDocument `json:"nodes" yaml:"nodes"`
	IgnoredSubmodules []string       `json:"ignored_submodules,omitempty" yaml:"ignored_submodules,omitempty"`
}

type nodeDocument struct {
	Path              string                `json:"path" yaml:"path"`
	Repository        string                `json:"repository" yaml:"repository"`
	Actions           []actionDocument      `json:"actions" yaml:"actions"`
	ExtraRemotes      []extraRemoteDocument `json:"extra_remotes,omitempty" yaml:"extra_remotes,omitempty"`
	MissingSubmodules []string              `json:"missing_submodules,omitempty" yaml:"missing_submodules,omitempty"`
	Error             string                `json:"error,omitempty" yaml:"error,omitempty"`
}

type actionDocument struct {
	Kind        string `json:"kind" yaml:"kind"`
	Remote      string `json:"remote" yaml:"remote"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	PushURL     string `json:"push_url,omitempty" yaml:"push_url,omitempty"`
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status" yaml:"status"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

type extraRemoteDocument struct {
	Name    string `json:"name" yaml:"name"`
	Outcome string `json:"outcome" yaml:"outcome"`
}

// ReportEncoder writes machine-readable sync reports.
type ReportEncoder struct {
	format OutputFormat
}

// NewReportEncoder constructs an encoder for the json or yaml format.
func NewReportEncoder(format OutputFormat) (*ReportEncoder, error) {
	if format != OutputFormatJSON && format != OutputFormatYAML {
		return nil, fmt.Errorf(unsupportedOutputFormatTemplateConstant+": %w", string(format), ErrUnsupportedOutputFormat)
	}
	return &ReportEncoder{format: format}, nil
}

// Encode writes the report and the application outcomes to the writer.
func (encoder *ReportEncoder) Encode(writer io.Writer, report reconcile.Report, result remotes.ApplyResult) error {
	document := buildReportDocument(report, result)
	switch encoder.format {
	case OutputFormatJSON:
		jsonEncoder := json.NewEncoder(writer)
		jsonEncoder.SetIndent("", jsonIndentConstant)
		return jsonEncoder.Encode(document)
	default:
		yamlEncoder := yaml.NewEncoder(writer)
		yamlEncoder.SetIndent(yamlIndentConstant)
		if encodeError := yamlEncoder.Encode(document); encodeError != nil {
			return encodeError
		}
		return yamlEncoder.Close()
	}
}

// buildReportDocument pairs every action with its outcome. Outcomes follow the
// report order and skip failed nodes, so a single cursor suffices.
func buildReportDocument(report reconcile.Report, result remotes.ApplyResult) reportDocument {
	document := reportDocument{DryRun: !result.Applied, Nodes: []nodeDocument{}, IgnoredSubmodules: report.IgnoredSubmodules}
	outcomeIndex := 0

	for _, node := range report.Nodes {
		nodeDoc := nodeDocument{
			Path:              node.DisplayPath(),
			Repository:        node.Repository,
			Actions:           []actionDocument{},
			MissingSubmodules: node.MissingSubmodules,
		}
		if node.Err != nil {
			nodeDoc.Error = node.Err.Error()
			document.Nodes = append(document.Nodes, nodeDoc)
			continue
		}

		for _, action := range node.Actions {
			actionDoc := actionDocument{
				Kind:        string(action.Kind),
				Remote:      action.Name,
				URL:         action.FetchURL,
				PushURL:     action.PushURL,
				Description: action.String(),
				Status:      string(remotes.OutcomePlanned),
			}
			if outcomeIndex < len(result.Outcomes) {
				outcome := result.Outcomes[outcomeIndex]
				actionDoc.Status = string(outcome.Status)
				if outcome.Err != nil {
					actionDoc.Error = outcome.Err.Error()
				}
				outcomeIndex++
			}
			nodeDoc.Actions = append(nodeDoc.Actions, actionDoc)
		}
		for _, extraRemote := range node.ExtraRemotes {
			nodeDoc.ExtraRemotes = append(nodeDoc.ExtraRemotes, extraRemoteDocument{Name: extraRemote.Name, Outcome: string(extraRemote.Outcome)})
		}
		document.Nodes = append(document.Nodes, nodeDoc)
	}
	return document
}
