// Package builder reconstructs a directory hierarchy from parsed listing lines
// and materializes it through a filesystem.Creator.
package builder

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/treegen/internal/filesystem"
	"github.com/temirov/treegen/internal/parser"
	"github.com/temirov/treegen/internal/types"
)

const (
	lineFieldName       = "line"
	textFieldName       = "text"
	pathFieldName       = "path"
	depthFieldName      = "depth"
	stackDepthFieldName = "stackDepth"

	rootFileMessage           = "root item is a file"
	rootDirectoryMessage      = "root directory ready"
	skippedLineMessage        = "skipping line"
	indentationJumpMessage    = "indentation is deeper than the current path; placing item under the deepest known directory"
	itemFailedMessage         = "failed to create item; skipping"
	createdItemMessage        = "created item"
	emptyInputMessage         = "input contains no items"
	processingCompleteMessage = "directory structure processed"

	indentationJumpFormat = "indentation level %d is deeper than current path depth %d"
	errorInvalidRootParse = "%w: line %d (%q): %w"
	errorInvalidRootDepth = "%w: line %d (%q) has indentation level %d, expected 0"
	errorRootCreation     = "%w %q: %w"
)

var (
	// ErrInvalidRoot reports that the first non-blank line is not a depth-0 item.
	ErrInvalidRoot = errors.New("first non-empty line is not a valid root")
	// ErrRootCreation reports that the root item could not be created.
	ErrRootCreation = errors.New("unable to create root item")
)

// TreeBuilder turns listing lines into directories and empty files.
// It keeps no state between runs; every call to Process or NewRun starts from an empty path stack.
type TreeBuilder struct {
	creator filesystem.Creator
	logger  *zap.Logger
}

// NewTreeBuilder constructs a TreeBuilder. A nil logger discards diagnostics.
func NewTreeBuilder(creator filesystem.Creator, logger *zap.Logger) *TreeBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeBuilder{creator: creator, logger: logger}
}

// Process builds the tree described by lines. Only an invalid or uncreatable
// root aborts the run; every other problem is logged and recorded in the report.
func (treeBuilder *TreeBuilder) Process(lines []string) (types.BuildReport, error) {
	run := treeBuilder.NewRun()
	for lineIndex, lineText := range lines {
		if stepError := run.Step(types.SourceLine{Number: lineIndex + 1, Text: lineText}); stepError != nil {
			return run.Report(), stepError
		}
	}
	return run.Finish(), nil
}

// NewRun starts an incremental build. A Run is not safe for concurrent use.
func (treeBuilder *TreeBuilder) NewRun() *Run {
	return &Run{creator: treeBuilder.creator, logger: treeBuilder.logger}
}

// Run holds the path stack of a single build.
type Run struct {
	creator         filesystem.Creator
	logger          *zap.Logger
	rootEstablished bool
	pathStack       []string
	report          types.BuildReport
}

// Step consumes the next input line. Blank and comment-only lines are ignored.
func (run *Run) Step(line types.SourceLine) error {
	lineText := strings.TrimRight(line.Text, "\r\n")
	if parser.IsBlank(lineText) {
		return nil
	}
	line.Text = lineText

	parsedLine, parseError := parser.ParseLine(lineText)
	if !run.rootEstablished {
		return run.placeRoot(line, parsedLine, parseError)
	}
	if parseError != nil {
		run.skip(line, parseError)
		return nil
	}
	run.placeItem(line, parsedLine)
	return nil
}

// Finish logs the completion summary and returns the report.
func (run *Run) Finish() types.BuildReport {
	if !run.rootEstablished {
		run.logger.Warn(emptyInputMessage)
	}
	run.logger.Info(processingCompleteMessage,
		zap.Int("directories", run.report.DirectoriesCreated),
		zap.Int("files", run.report.FilesCreated),
		zap.Int("warnings", len(run.report.Warnings)),
		zap.Int("skipped", len(run.report.Skipped)),
		zap.Int("failures", len(run.report.Failures)),
	)
	return run.Report()
}

// Report returns a snapshot of what the run has done so far.
func (run *Run) Report() types.BuildReport {
	snapshot := run.report
	snapshot.Actions = slices.Clone(run.report.Actions)
	snapshot.Warnings = slices.Clone(run.report.Warnings)
	snapshot.Skipped = slices.Clone(run.report.Skipped)
	snapshot.Failures = slices.Clone(run.report.Failures)
	return snapshot
}

func (run *Run) placeRoot(line types.SourceLine, parsedLine types.ParsedLine, parseError error) error {
	if parseError != nil {
		return fmt.Errorf(errorInvalidRootParse, ErrInvalidRoot, line.Number, line.Text, parseError)
	}
	if parsedLine.Depth != 0 {
		return fmt.Errorf(errorInvalidRootDepth, ErrInvalidRoot, line.Number, line.Text, parsedLine.Depth)
	}

	rootFields := []zap.Field{zap.Int(lineFieldName, line.Number), zap.String(pathFieldName, parsedLine.Name)}
	if parsedLine.IsDirectory {
		if createError := run.creator.CreateDirectory(parsedLine.Name); createError != nil {
			return fmt.Errorf(errorRootCreation, ErrRootCreation, parsedLine.Name, createError)
		}
		run.pathStack = []string{parsedLine.Name}
		run.recordCreated(line, parsedLine.Name, types.NodeTypeDirectory)
		run.logger.Debug(rootDirectoryMessage, rootFields...)
	} else {
		if createError := run.creator.CreateEmptyFile(parsedLine.Name); createError != nil {
			return fmt.Errorf(errorRootCreation, ErrRootCreation, parsedLine.Name, createError)
		}
		run.pathStack = nil
		run.recordCreated(line, parsedLine.Name, types.NodeTypeFile)
		run.logger.Info(rootFileMessage, rootFields...)
	}
	run.report.Root = parsedLine.Name
	run.rootEstablished = true
	return nil
}

func (run *Run) placeItem(line types.SourceLine, parsedLine types.ParsedLine) {
	parentComponents := run.resolveParent(line, parsedLine.Depth)
	parentPath := filepath.Join(parentComponents...)
	itemPath := filepath.Join(parentPath, parsedLine.Name)

	if parsedLine.IsDirectory {
		if createError := run.creator.CreateDirectory(itemPath); createError != nil {
			run.fail(line, itemPath, types.NodeTypeDirectory, createError)
			run.pathStack = parentComponents
			return
		}
		run.recordCreated(line, itemPath, types.NodeTypeDirectory)
		run.pathStack = append(slices.Clone(parentComponents), parsedLine.Name)
		return
	}

	if parentPath != "" {
		if createError := run.creator.CreateDirectory(parentPath); createError != nil {
			run.fail(line, itemPath, types.NodeTypeFile, createError)
			run.pathStack = parentComponents
			return
		}
	}
	if createError := run.creator.CreateEmptyFile(itemPath); createError != nil {
		run.fail(line, itemPath, types.NodeTypeFile, createError)
		run.pathStack = parentComponents
		return
	}
	run.recordCreated(line, itemPath, types.NodeTypeFile)
	run.pathStack = parentComponents
}

// resolveParent returns the ancestor chain for an item at depth.
// A shallower depth truncates the stack to depth+1 entries; a deeper one keeps
// the whole stack and records an indentation jump instead of inventing directories.
func (run *Run) resolveParent(line types.SourceLine, depth int) []string {
	stackDepth := len(run.pathStack)
	switch {
	case depth < stackDepth:
		return slices.Clone(run.pathStack[:depth+1])
	case depth == stackDepth:
		return slices.Clone(run.pathStack)
	default:
		run.logger.Warn(indentationJumpMessage,
			zap.Int(lineFieldName, line.Number),
			zap.String(textFieldName, line.Text),
			zap.Int(depthFieldName, depth),
			zap.Int(stackDepthFieldName, stackDepth),
		)
		run.report.Warnings = append(run.report.Warnings, types.BuildDiagnostic{
			Line:    line.Number,
			Text:    line.Text,
			Message: fmt.Sprintf(indentationJumpFormat, depth, stackDepth),
		})
		return slices.Clone(run.pathStack)
	}
}

func (run *Run) recordCreated(line types.SourceLine, itemPath string, nodeType string) {
	if nodeType == types.NodeTypeDirectory {
		run.report.DirectoriesCreated++
	} else {
		run.report.FilesCreated++
	}
	run.report.Actions = append(run.report.Actions, types.BuildAction{Line: line.Number, Path: itemPath, Type: nodeType})
	run.logger.Debug(createdItemMessage, zap.Int(lineFieldName, line.Number), zap.String(pathFieldName, itemPath))
}

func (run *Run) skip(line types.SourceLine, reason error) {
	run.logger.Warn(skippedLineMessage,
		zap.Int(lineFieldName, line.Number),
		zap.String(textFieldName, line.Text),
		zap.Error(reason),
	)
	run.report.Skipped = append(run.report.Skipped, types.BuildDiagnostic{
		Line:    line.Number,
		Text:    line.Text,
		Message: reason.Error(),
	})
}

func (run *Run) fail(line types.SourceLine, itemPath string, nodeType string, failure error) {
	run.logger.Error(itemFailedMessage,
		zap.Int(lineFieldName, line.Number),
		zap.String(pathFieldName, itemPath),
		zap.Error(failure),
	)
	run.report.Actions = append(run.report.Actions, types.BuildAction{
		Line:  line.Number,
		Path:  itemPath,
		Type:  nodeType,
		Error: failure.Error(),
	})
	run.report.Failures = append(run.report.Failures, types.BuildDiagnostic{
		Line:    line.Number,
		Text:    line.Text,
		Message: failure.Error(),
	})
}
