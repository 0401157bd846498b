// Package parser turns single lines of a tree listing into structured records.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/temirov/treegen/internal/types"
)

const (
	// CommentMarker starts a comment that runs to the end of the line.
	CommentMarker = "#"
	// PathSeparator marks a directory when it ends the content of a line.
	PathSeparator = "/"
	// IndentationWidth is the number of characters rendered per nesting level.
	IndentationWidth = 4

	branchConnector     = "├──"
	lastBranchConnector = "└──"

	verticalBarGlyph = '│'
	teeGlyph         = '├'
	cornerGlyph      = '└'
	horizontalGlyph  = '─'

	errorEmptyNameFormat = "%w in line %q"
)

// ErrEmptyName reports a line that contains no item name once glyphs and comments are removed.
var ErrEmptyName = errors.New("empty item name")

// ParseLine converts one raw listing line into its depth, name and directory flag.
// Everything after the first CommentMarker is ignored, including a '#' that is part of a name.
func ParseLine(rawLine string) (types.ParsedLine, error) {
	uncommentedLine := StripComment(rawLine)
	contentLine := strings.TrimRightFunc(uncommentedLine, unicode.IsSpace)
	isDirectory := strings.HasSuffix(contentLine, PathSeparator)

	itemName := strings.TrimSpace(strings.TrimLeftFunc(contentLine, IsTreeDrawingRune))
	if isDirectory {
		itemName = strings.TrimSuffix(itemName, PathSeparator)
	}
	if strings.Trim(itemName, PathSeparator) == "" {
		return types.ParsedLine{}, fmt.Errorf(errorEmptyNameFormat, ErrEmptyName, rawLine)
	}

	return types.ParsedLine{
		Depth:       MeasureDepth(uncommentedLine),
		Name:        itemName,
		IsDirectory: isDirectory,
	}, nil
}

// IsBlank reports whether rawLine holds nothing but whitespace once its comment is removed.
// Such lines carry no item and are ignored rather than parsed.
func IsBlank(rawLine string) bool {
	return strings.TrimSpace(StripComment(rawLine)) == ""
}

// StripComment removes the comment marker and everything following it.
func StripComment(rawLine string) string {
	if markerIndex := strings.Index(rawLine, CommentMarker); markerIndex >= 0 {
		return rawLine[:markerIndex]
	}
	return rawLine
}

// MeasureDepth returns the nesting level of a comment-free line.
// The column of the first branch connector decides the level; lines without a
// connector use the column of their first non-whitespace character instead.
// Columns are counted in characters so multi-byte glyphs occupy one column each.
func MeasureDepth(uncommentedLine string) int {
	column := 0
	if connectorIndex := firstConnectorIndex(uncommentedLine); connectorIndex >= 0 {
		column = utf8.RuneCountInString(uncommentedLine[:connectorIndex])
	} else if contentIndex := strings.IndexFunc(uncommentedLine, isNotSpace); contentIndex >= 0 {
		column = utf8.RuneCountInString(uncommentedLine[:contentIndex])
	}
	return column / IndentationWidth
}

// IsTreeDrawingRune reports whether the rune belongs to the prefix drawn in front of item names.
func IsTreeDrawingRune(character rune) bool {
	switch character {
	case verticalBarGlyph, teeGlyph, cornerGlyph, horizontalGlyph:
		return true
	}
	return unicode.IsSpace(character)
}

func firstConnectorIndex(line string) int {
	branchIndex := strings.Index(line, branchConnector)
	lastIndex := strings.Index(line, lastBranchConnector)
	switch {
	case branchIndex < 0:
		return lastIndex
	case lastIndex < 0:
		return branchIndex
	case branchIndex < lastIndex:
		return branchIndex
	default:
		return lastIndex
	}
}

func isNotSpace(character rune) bool {
	return !unicode.IsSpace(character)
}
