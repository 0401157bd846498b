package output_test

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/temirov/treegen/internal/output"
	"github.com/temirov/treegen/internal/types"
)

func sampleTree() *types.TreeOutputNode {
	return &types.TreeOutputNode{
		Path: "project",
		Name: "project",
		Type: types.NodeTypeDirectory,
		Children: []*types.TreeOutputNode{
			{Path: "project/README.md", Name: "README.md", Type: types.NodeTypeFile},
			{
				Path: "project/src",
				Name: "src",
				Type: types.NodeTypeDirectory,
				Children: []*types.TreeOutputNode{
					{Path: "project/src/main.go", Name: "main.go", Type: types.NodeTypeFile},
				},
			},
		},
	}
}

func TestRenderTreeUsesConnectors(t *testing.T) {
	t.Parallel()

	expected := "project/\n" +
		"├── README.md\n" +
		"└── src/\n" +
		"    └── main.go\n"
	if rendered := output.RenderTree(sampleTree()); rendered != expected {
		t.Fatalf("unexpected rendering:\n%s\nexpected:\n%s", rendered, expected)
	}
	if rendered := output.RenderTree(nil); rendered != "" {
		t.Fatalf("expected empty rendering for nil node, got %q", rendered)
	}
}

func TestWriteBuildReportFormats(t *testing.T) {
	t.Parallel()

	report := types.BuildReport{
		Root:               "project",
		DirectoriesCreated: 1,
		FilesCreated:       1,
		Actions: []types.BuildAction{
			{Line: 1, Path: "project", Type: types.NodeTypeDirectory},
			{Line: 2, Path: "project/a.txt", Type: types.NodeTypeFile},
			{Line: 3, Path: "project/b.txt", Type: types.NodeTypeFile, Error: "denied"},
		},
		Warnings: []types.BuildDiagnostic{{Line: 4, Text: "        x", Message: "indentation level 2 is deeper than current path depth 1"}},
		Failures: []types.BuildDiagnostic{{Line: 3, Text: "    b.txt", Message: "denied"}},
	}

	testCases := []struct {
		name              string
		format            string
		expectedFragments []string
		validate          func(t *testing.T, rendered []byte)
	}{
		{
			name:   "raw",
			format: types.FormatRaw,
			expectedFragments: []string{
				"Created directory: project",
				"Created file: project/a.txt",
				"Failed file: project/b.txt (denied)",
				"Warning line 4: indentation level 2",
				"Failed line 3: denied",
				"Summary: 1 directory, 1 file, 1 warning, 0 skipped, 1 failed",
			},
		},
		{
			name:              "json",
			format:            types.FormatJSON,
			expectedFragments: []string{`"directoriesCreated": 1`, `"root": "project"`},
			validate: func(t *testing.T, rendered []byte) {
				var decoded types.BuildReport
				if decodeError := json.Unmarshal(rendered, &decoded); decodeError != nil {
					t.Fatalf("invalid JSON: %v", decodeError)
				}
				if len(decoded.Actions) != 3 {
					t.Fatalf("expected 3 actions, got %d", len(decoded.Actions))
				}
			},
		},
		{
			name:              "xml",
			format:            types.FormatXML,
			expectedFragments: []string{"<report>", "<filesCreated>1</filesCreated>", `<action line="3">`},
			validate: func(t *testing.T, rendered []byte) {
				var decoded types.BuildReport
				if decodeError := xml.Unmarshal(rendered, &decoded); decodeError != nil {
					t.Fatalf("invalid XML: %v", decodeError)
				}
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			var buffer bytes.Buffer
			if writeError := output.WriteBuildReport(&buffer, report, testCase.format); writeError != nil {
				t.Fatalf("WriteBuildReport error: %v", writeError)
			}
			for _, fragment := range testCase.expectedFragments {
				if !strings.Contains(buffer.String(), fragment) {
					t.Fatalf("expected fragment %q in output:\n%s", fragment, buffer.String())
				}
			}
			if testCase.validate != nil {
				testCase.validate(t, buffer.Bytes())
			}
		})
	}
}

func TestWriteBuildReportIncludesPreview(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	report := types.BuildReport{DryRun: true, Preview: sampleTree()}
	if writeError := output.WriteBuildReport(&buffer, report, types.FormatRaw); writeError != nil {
		t.Fatalf("WriteBuildReport error: %v", writeError)
	}
	if !strings.Contains(buffer.String(), "└── src/") {
		t.Fatalf("expected preview tree in output:\n%s", buffer.String())
	}
}

func TestWriteParseOutputs(t *testing.T) {
	t.Parallel()

	outputs := []types.ParseOutput{
		{Number: 1, Text: "project/", Depth: 0, Name: "project", IsDirectory: true},
		{Number: 2, Text: "├── /", Error: "empty item name"},
	}

	var rawBuffer bytes.Buffer
	if writeError := output.WriteParseOutputs(&rawBuffer, outputs, types.FormatRaw); writeError != nil {
		t.Fatalf("raw error: %v", writeError)
	}
	if !strings.Contains(rawBuffer.String(), "1\tdepth=0\tdir\tproject") || !strings.Contains(rawBuffer.String(), "2\tskipped") {
		t.Fatalf("unexpected raw output:\n%s", rawBuffer.String())
	}

	var xmlBuffer bytes.Buffer
	if writeError := output.WriteParseOutputs(&xmlBuffer, outputs, types.FormatXML); writeError != nil {
		t.Fatalf("xml error: %v", writeError)
	}
	if !strings.Contains(xmlBuffer.String(), "<lines>") || !strings.Contains(xmlBuffer.String(), `<line number="2">`) {
		t.Fatalf("unexpected xml output:\n%s", xmlBuffer.String())
	}

	var jsonBuffer bytes.Buffer
	if writeError := output.WriteParseOutputs(&jsonBuffer, nil, types.FormatJSON); writeError != nil {
		t.Fatalf("json error: %v", writeError)
	}
	if strings.TrimSpace(jsonBuffer.String()) != "[]" {
		t.Fatalf("expected empty JSON array, got %q", jsonBuffer.String())
	}
}

func TestWritersRejectUnknownFormat(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	if writeError := output.WriteTree(&buffer, sampleTree(), "yaml"); writeError == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if writeError := output.WriteBuildReport(&buffer, types.BuildReport{}, "yaml"); writeError == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
