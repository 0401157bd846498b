// Package types defines every cross‑package data structure used by the treegen CLI.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	CommandBuild = "build"
	CommandParse = "parse"
	CommandList  = "list"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// SourceLine is one raw input line together with its 1-based position.
type SourceLine struct {
	Number int
	Text   string
}

// ParsedLine is the structured form of a single listing line.
type ParsedLine struct {
	Depth       int    `json:"depth" xml:"depth"`
	Name        string `json:"name" xml:"name"`
	IsDirectory bool   `json:"isDirectory" xml:"isDirectory"`
}

// ParseOutput is one entry printed by the parse command.
type ParseOutput struct {
	XMLName     xml.Name `json:"-" xml:"line"`
	Number      int      `json:"line" xml:"number,attr"`
	Text        string   `json:"text" xml:"text"`
	Depth       int      `json:"depth" xml:"depth"`
	Name        string   `json:"name,omitempty" xml:"name,omitempty"`
	IsDirectory bool     `json:"isDirectory" xml:"isDirectory"`
	Error       string   `json:"error,omitempty" xml:"error,omitempty"`
}

// BuildAction records a single filesystem operation attempted by a build.
type BuildAction struct {
	Line  int    `json:"line" xml:"line,attr"`
	Path  string `json:"path" xml:"path"`
	Type  string `json:"type" xml:"type"`
	Error string `json:"error,omitempty" xml:"error,omitempty"`
}

// BuildDiagnostic describes a recoverable problem found on an input line.
type BuildDiagnostic struct {
	Line    int    `json:"line" xml:"line,attr"`
	Text    string `json:"text" xml:"text"`
	Message string `json:"message" xml:"message"`
}

// BuildReport summarizes one build run.
type BuildReport struct {
	XMLName            xml.Name          `json:"-" xml:"report"`
	Root               string            `json:"root,omitempty" xml:"root,omitempty"`
	Input              string            `json:"input,omitempty" xml:"input,omitempty"`
	DryRun             bool              `json:"dryRun,omitempty" xml:"dryRun,omitempty"`
	DirectoriesCreated int               `json:"directoriesCreated" xml:"directoriesCreated"`
	FilesCreated       int               `json:"filesCreated" xml:"filesCreated"`
	Actions            []BuildAction     `json:"actions,omitempty" xml:"actions>action,omitempty"`
	Warnings           []BuildDiagnostic `json:"warnings,omitempty" xml:"warnings>warning,omitempty"`
	Skipped            []BuildDiagnostic `json:"skipped,omitempty" xml:"skipped>line,omitempty"`
	Failures           []BuildDiagnostic `json:"failures,omitempty" xml:"failures>failure,omitempty"`
	Preview            *TreeOutputNode   `json:"preview,omitempty" xml:"preview>node,omitempty"`
}

// TreeOutputNode represents a node of an existing directory tree returned by the list command.
type TreeOutputNode struct {
	XMLName  xml.Name          `json:"-" xml:"node"`
	Path     string            `json:"path" xml:"path"`
	Name     string            `json:"name" xml:"name"`
	Type     string            `json:"type" xml:"type"`
	Children []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty"`
}
