package stream_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/temirov/treegen/internal/services/stream"
	"github.com/temirov/treegen/internal/types"
)

func TestReadLinesDecodesInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    []byte
		expected []string
	}{
		{
			name:     "plain_utf8",
			input:    []byte("project/\n├── main.go\n"),
			expected: []string{"project/", "├── main.go"},
		},
		{
			name:     "utf8_byte_order_mark",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("root/\n└── a.txt")...),
			expected: []string{"root/", "└── a.txt"},
		},
		{
			name:     "utf16_little_endian",
			input:    []byte{0xFF, 0xFE, 'a', 0x00, '/', 0x00, '\n', 0x00, 'b', 0x00},
			expected: []string{"a/", "b"},
		},
		{
			name:     "windows_line_endings",
			input:    []byte("root/\r\n    file.txt\r\n"),
			expected: []string{"root/", "    file.txt"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			lines, readError := stream.ReadLines(bytes.NewReader(testCase.input))
			if readError != nil {
				t.Fatalf("ReadLines error: %v", readError)
			}
			if !reflect.DeepEqual(lines, testCase.expected) {
				t.Fatalf("ReadLines = %q, expected %q", lines, testCase.expected)
			}
		})
	}
}

func TestStreamLinesNumbersLines(t *testing.T) {
	t.Parallel()

	lineChannel := make(chan types.SourceLine, 8)
	streamError := stream.StreamLines(context.Background(), strings.NewReader("root/\n\n    leaf.txt\n"), lineChannel)
	close(lineChannel)
	if streamError != nil {
		t.Fatalf("StreamLines error: %v", streamError)
	}
	var received []types.SourceLine
	for line := range lineChannel {
		received = append(received, line)
	}
	expected := []types.SourceLine{
		{Number: 1, Text: "root/"},
		{Number: 2, Text: ""},
		{Number: 3, Text: "    leaf.txt"},
	}
	if !reflect.DeepEqual(received, expected) {
		t.Fatalf("received %+v, expected %+v", received, expected)
	}
}

func TestStreamLinesStopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	streamError := stream.StreamLines(ctx, strings.NewReader("root/\n"), make(chan types.SourceLine))
	if !errors.Is(streamError, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", streamError)
	}
}

func TestOpenInputReportsMissingFile(t *testing.T) {
	t.Parallel()

	_, openError := stream.OpenInput(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(openError, stream.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", openError)
	}
}
