// Package filesystem provides the directory and file creation capability used by builds.
package filesystem

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

const (
	// DefaultDirectoryPermissions is applied to created directories unless configured otherwise.
	DefaultDirectoryPermissions os.FileMode = 0o755
	// DefaultFilePermissions is applied to created files unless configured otherwise.
	DefaultFilePermissions os.FileMode = 0o644

	errorStatFormat            = "stat %s: %w"
	errorCreateDirectoryFormat = "mkdir %s: %w"
	errorCreateFileFormat      = "create %s: %w"
	errorCloseFileFormat       = "close %s: %w"
	errorConflictFormat        = "%s: %w"
	errorOutputDirectoryFormat = "prepare output directory %s: %w"
)

var (
	// ErrFileInTheWay reports a directory request for a path occupied by a file.
	ErrFileInTheWay = errors.New("a file already exists at this path")
	// ErrDirectoryInTheWay reports a file request for a path occupied by a directory.
	ErrDirectoryInTheWay = errors.New("a directory already exists at this path")
)

// Creator is the capability a build uses to materialize items.
// CreateDirectory succeeds when the directory already exists.
// CreateEmptyFile creates the file or truncates an existing one.
type Creator interface {
	CreateDirectory(path string) error
	CreateEmptyFile(path string) error
}

// Permissions holds the modes applied to new directories and files.
type Permissions struct {
	Directory os.FileMode
	File      os.FileMode
}

// DefaultPermissions returns the conventional 0755/0644 modes.
func DefaultPermissions() Permissions {
	return Permissions{Directory: DefaultDirectoryPermissions, File: DefaultFilePermissions}
}

// Service implements Creator on top of an afero filesystem.
type Service struct {
	fileSystem  afero.Fs
	permissions Permissions
}

// NewService constructs a Service writing into fileSystem.
func NewService(fileSystem afero.Fs, permissions Permissions) *Service {
	if permissions.Directory == 0 {
		permissions.Directory = DefaultDirectoryPermissions
	}
	if permissions.File == 0 {
		permissions.File = DefaultFilePermissions
	}
	return &Service{fileSystem: fileSystem, permissions: permissions}
}

// CreateDirectory creates the directory and any missing parents.
func (service *Service) CreateDirectory(path string) error {
	info, statError := service.fileSystem.Stat(path)
	switch {
	case statError == nil && info.IsDir():
		return nil
	case statError == nil:
		return fmt.Errorf(errorConflictFormat, path, ErrFileInTheWay)
	case !errors.Is(statError, os.ErrNotExist):
		return fmt.Errorf(errorStatFormat, path, statError)
	}
	if mkdirError := service.fileSystem.MkdirAll(path, service.permissions.Directory); mkdirError != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, path, mkdirError)
	}
	return nil
}

// CreateEmptyFile creates path as an empty file, truncating any previous content.
func (service *Service) CreateEmptyFile(path string) error {
	info, statError := service.fileSystem.Stat(path)
	switch {
	case statError == nil && info.IsDir():
		return fmt.Errorf(errorConflictFormat, path, ErrDirectoryInTheWay)
	case statError != nil && !errors.Is(statError, os.ErrNotExist):
		return fmt.Errorf(errorStatFormat, path, statError)
	}
	fileHandle, openError := service.fileSystem.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, service.permissions.File)
	if openError != nil {
		return fmt.Errorf(errorCreateFileFormat, path, openError)
	}
	if closeError := fileHandle.Close(); closeError != nil {
		return fmt.Errorf(errorCloseFileFormat, path, closeError)
	}
	return nil
}

// NewOutputFileSystem returns a filesystem rooted at outputDirectory on disk.
// Paths that would escape the directory are rejected by afero's BasePathFs.
// In dry-run mode writes land in memory on top of a read-only view of the disk,
// so existing items are still observed but nothing is modified.
func NewOutputFileSystem(outputDirectory string, dryRun bool) afero.Fs {
	diskFileSystem := afero.NewBasePathFs(afero.NewOsFs(), outputDirectory)
	if dryRun {
		return afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(diskFileSystem), afero.NewMemMapFs())
	}
	return diskFileSystem
}

// EnsureOutputDirectory creates the output directory on disk when it is missing.
func EnsureOutputDirectory(outputDirectory string, permissions Permissions) error {
	if permissions.Directory == 0 {
		permissions.Directory = DefaultDirectoryPermissions
	}
	if mkdirError := afero.NewOsFs().MkdirAll(outputDirectory, permissions.Directory); mkdirError != nil {
		return fmt.Errorf(errorOutputDirectoryFormat, outputDirectory, mkdirError)
	}
	return nil
}

// OutputDirectoryCreator forwards to a Creator after making sure the output
// directory exists on disk. The directory is created on the first call only,
// so nothing is written when no item is ever placed.
type OutputDirectoryCreator struct {
	creator         Creator
	outputDirectory string
	permissions     Permissions
	prepared        bool
}

// NewOutputDirectoryCreator wraps creator so outputDirectory is created lazily.
func NewOutputDirectoryCreator(creator Creator, outputDirectory string, permissions Permissions) *OutputDirectoryCreator {
	return &OutputDirectoryCreator{creator: creator, outputDirectory: outputDirectory, permissions: permissions}
}

// CreateDirectory prepares the output directory and forwards the call.
func (outputCreator *OutputDirectoryCreator) CreateDirectory(path string) error {
	if prepareError := outputCreator.prepare(); prepareError != nil {
		return prepareError
	}
	return outputCreator.creator.CreateDirectory(path)
}

// CreateEmptyFile prepares the output directory and forwards the call.
func (outputCreator *OutputDirectoryCreator) CreateEmptyFile(path string) error {
	if prepareError := outputCreator.prepare(); prepareError != nil {
		return prepareError
	}
	return outputCreator.creator.CreateEmptyFile(path)
}

func (outputCreator *OutputDirectoryCreator) prepare() error {
	if outputCreator.prepared {
		return nil
	}
	if ensureError := EnsureOutputDirectory(outputCreator.outputDirectory, outputCreator.permissions); ensureError != nil {
		return ensureError
	}
	outputCreator.prepared = true
	return nil
}

var (
	_ Creator = (*Service)(nil)
	_ Creator = (*OutputDirectoryCreator)(nil)
)
