// Package output renders build reports, parse results and directory trees.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/disiqueira/gotree/v3"

	"github.com/temirov/treegen/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	xmlHeader            = xml.Header
	xmlParseRootElement  = "lines"
	directorySuffix      = "/"
	previewHeader        = "--- Dry run preview ---"
	createdLineFormat    = "Created %s: %s\n"
	failedLineFormat     = "Failed %s: %s (%s)\n"
	diagnosticLineFormat = "%s line %d: %s\n"
	parsedLineFormat     = "%d\tdepth=%d\t%s\t%s\n"
	skippedParseFormat   = "%d\tskipped\t%q\t%s\n"
	warningLabel         = "Warning"
	skippedLabel         = "Skipped"
	failureLabel         = "Failed"
	directoryKindLabel   = "dir"
	fileKindLabel        = "file"
	unsupportedFormat    = "unsupported format %q"
)

// RenderTree draws node in the connector style accepted by the build command.
// Directory names carry a trailing slash so the rendering can be built again.
func RenderTree(node *types.TreeOutputNode) string {
	if node == nil {
		return ""
	}
	tree := gotree.New(nodeLabel(node))
	addChildren(tree, node.Children)
	return tree.Print()
}

func addChildren(parent gotree.Tree, children []*types.TreeOutputNode) {
	for _, child := range children {
		if child == nil {
			continue
		}
		branch := parent.Add(nodeLabel(child))
		addChildren(branch, child.Children)
	}
}

func nodeLabel(node *types.TreeOutputNode) string {
	if node.Type == types.NodeTypeDirectory {
		return strings.TrimSuffix(node.Name, directorySuffix) + directorySuffix
	}
	return node.Name
}

// WriteTree renders node to writer in the requested format.
func WriteTree(writer io.Writer, node *types.TreeOutputNode, format string) error {
	switch format {
	case types.FormatRaw:
		_, writeError := io.WriteString(writer, RenderTree(node))
		return writeError
	case types.FormatJSON:
		return writeJSON(writer, node)
	case types.FormatXML:
		return writeXML(writer, node)
	default:
		return fmt.Errorf(unsupportedFormat, format)
	}
}

// WriteBuildReport renders report to writer in the requested format.
func WriteBuildReport(writer io.Writer, report types.BuildReport, format string) error {
	switch format {
	case types.FormatRaw:
		return writeBuildReportRaw(writer, report)
	case types.FormatJSON:
		return writeJSON(writer, report)
	case types.FormatXML:
		return writeXML(writer, report)
	default:
		return fmt.Errorf(unsupportedFormat, format)
	}
}

// WriteParseOutputs renders parse results to writer in the requested format.
func WriteParseOutputs(writer io.Writer, outputs []types.ParseOutput, format string) error {
	switch format {
	case types.FormatRaw:
		for _, parseOutput := range outputs {
			if parseOutput.Error != "" {
				fmt.Fprintf(writer, skippedParseFormat, parseOutput.Number, parseOutput.Text, parseOutput.Error)
				continue
			}
			kind := fileKindLabel
			if parseOutput.IsDirectory {
				kind = directoryKindLabel
			}
			fmt.Fprintf(writer, parsedLineFormat, parseOutput.Number, parseOutput.Depth, kind, parseOutput.Name)
		}
		return nil
	case types.FormatJSON:
		if outputs == nil {
			outputs = []types.ParseOutput{}
		}
		return writeJSON(writer, outputs)
	case types.FormatXML:
		wrapper := struct {
			XMLName xml.Name            `xml:""`
			Lines   []types.ParseOutput `xml:"line"`
		}{XMLName: xml.Name{Local: xmlParseRootElement}, Lines: outputs}
		return writeXML(writer, wrapper)
	default:
		return fmt.Errorf(unsupportedFormat, format)
	}
}

// FormatSummaryLine formats the counts of a build report into a single line.
func FormatSummaryLine(report types.BuildReport) string {
	return fmt.Sprintf("Summary: %s, %s, %s, %d skipped, %d failed",
		pluralize(report.DirectoriesCreated, "directory", "directories"),
		pluralize(report.FilesCreated, "file", "files"),
		pluralize(len(report.Warnings), "warning", "warnings"),
		len(report.Skipped),
		len(report.Failures),
	)
}

func writeBuildReportRaw(writer io.Writer, report types.BuildReport) error {
	for _, action := range report.Actions {
		if action.Error != "" {
			fmt.Fprintf(writer, failedLineFormat, action.Type, action.Path, action.Error)
			continue
		}
		fmt.Fprintf(writer, createdLineFormat, action.Type, action.Path)
	}
	writeDiagnostics(writer, warningLabel, report.Warnings)
	writeDiagnostics(writer, skippedLabel, report.Skipped)
	writeDiagnostics(writer, failureLabel, report.Failures)
	if report.Preview != nil {
		fmt.Fprintln(writer, previewHeader)
		fmt.Fprint(writer, RenderTree(report.Preview))
	}
	_, writeError := fmt.Fprintln(writer, FormatSummaryLine(report))
	return writeError
}

func writeDiagnostics(writer io.Writer, label string, diagnostics []types.BuildDiagnostic) {
	for _, diagnostic := range diagnostics {
		fmt.Fprintf(writer, diagnosticLineFormat, label, diagnostic.Line, diagnostic.Message)
	}
}

func writeJSON(writer io.Writer, value interface{}) error {
	encoded, jsonEncodeError := json.MarshalIndent(value, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return jsonEncodeError
	}
	_, writeError := fmt.Fprintln(writer, string(encoded))
	return writeError
}

func writeXML(writer io.Writer, value interface{}) error {
	encoded, xmlMarshalError := xml.MarshalIndent(value, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return xmlMarshalError
	}
	_, writeError := fmt.Fprintln(writer, xmlHeader+string(encoded))
	return writeError
}

func pluralize(count int, singular string, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
