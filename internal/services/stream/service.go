// Package stream reads tree listings and emits their lines in order.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/temirov/treegen/internal/types"
)

const (
	// StandardInputPath selects standard input instead of a file.
	StandardInputPath = "-"

	initialBufferSize = 64 * 1024
	maximumLineSize   = 1024 * 1024

	errorInputNotFoundFormat = "%w: %s"
	errorOpenInputFormat     = "open input %s: %w"
	errorReadInputFormat     = "read input: %w"
	errorNilChannel          = "stream: line channel is nil"
)

// ErrInputNotFound reports that the listing file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// OpenInput opens the listing at inputPath, or standard input for StandardInputPath.
func OpenInput(inputPath string) (io.ReadCloser, error) {
	if inputPath == StandardInputPath {
		return io.NopCloser(os.Stdin), nil
	}
	// #nosec G304
	fileHandle, openError := os.Open(inputPath)
	if openError != nil {
		if errors.Is(openError, os.ErrNotExist) {
			return nil, fmt.Errorf(errorInputNotFoundFormat, ErrInputNotFound, inputPath)
		}
		return nil, fmt.Errorf(errorOpenInputFormat, inputPath, openError)
	}
	return fileHandle, nil
}

// NewDecodingReader returns a reader producing UTF-8. A UTF-8 or UTF-16
// byte-order mark selects the matching decoder and is removed; input without
// a mark is passed through unchanged.
func NewDecodingReader(reader io.Reader) io.Reader {
	return transform.NewReader(reader, unicode.BOMOverride(encoding.Nop.NewDecoder()))
}

// StreamLines sends every line of reader to lines, numbered from 1.
// It stops early when ctx is cancelled.
func StreamLines(ctx context.Context, reader io.Reader, lines chan<- types.SourceLine) error {
	if lines == nil {
		return errors.New(errorNilChannel)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	scanner := bufio.NewScanner(NewDecodingReader(reader))
	scanner.Buffer(make([]byte, 0, initialBufferSize), maximumLineSize)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := types.SourceLine{Number: lineNumber, Text: strings.TrimRight(scanner.Text(), "\r")}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case lines <- line:
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return fmt.Errorf(errorReadInputFormat, scanError)
	}
	return nil
}

// ReadLines collects every line of reader.
func ReadLines(reader io.Reader) ([]string, error) {
	var collected []string
	scanner := bufio.NewScanner(NewDecodingReader(reader))
	scanner.Buffer(make([]byte, 0, initialBufferSize), maximumLineSize)
	for scanner.Scan() {
		collected = append(collected, strings.TrimRight(scanner.Text(), "\r"))
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorReadInputFormat, scanError)
	}
	return collected, nil
}
