// Package clipboard provides access to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

const errorPasteFormat = "read clipboard: %w"

// ErrClipboardEmpty reports that the clipboard holds no text.
var ErrClipboardEmpty = errors.New("clipboard is empty")

// Paster reads textual data from the system clipboard.
type Paster interface {
	Paste() (string, error)
}

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Accessor both reads and writes the clipboard.
type Accessor interface {
	Paster
	Copier
}

// Service implements Accessor using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Paste returns the clipboard text. Whitespace-only content is reported as ErrClipboardEmpty.
func (service *Service) Paste() (string, error) {
	text, readError := clipboard.ReadAll()
	if readError != nil {
		return "", fmt.Errorf(errorPasteFormat, readError)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrClipboardEmpty
	}
	return text, nil
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

var _ Accessor = (*Service)(nil)
