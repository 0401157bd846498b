// Package listing reads an existing directory hierarchy back into tree nodes.
package listing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/treegen/internal/types"
)

const (
	// warningSkipSubdirMessage is logged when a subdirectory cannot be read.
	warningSkipSubdirMessage = "skipping unreadable subdirectory"

	// errorStatRootFormat is used when the root cannot be inspected.
	errorStatRootFormat = "stat %s: %w"

	// errorBuildTreeFormat is used when building the tree fails.
	errorBuildTreeFormat = "building tree for %s: %w"

	// errorReadDirectoryFormat is used when a directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"
)

// Lister builds tree nodes from a filesystem.
type Lister struct {
	FileSystem afero.Fs
	Logger     *zap.Logger
}

// NewLister constructs a Lister. A nil logger discards warnings.
func NewLister(fileSystem afero.Fs, logger *zap.Logger) *Lister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{FileSystem: fileSystem, Logger: logger}
}

// GetTreeData returns the node for rootPath with every descendant, children sorted by name.
// A rootPath naming a file yields a single file node.
func (lister *Lister) GetTreeData(rootPath string) (*types.TreeOutputNode, error) {
	rootInfo, statError := lister.FileSystem.Stat(rootPath)
	if statError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, rootPath, statError)
	}
	rootNode := &types.TreeOutputNode{
		Path: rootPath,
		Name: nodeName(rootPath, rootInfo),
		Type: types.NodeTypeFile,
	}
	if !rootInfo.IsDir() {
		return rootNode, nil
	}
	rootNode.Type = types.NodeTypeDirectory
	children, buildError := lister.buildTreeNodes(rootPath)
	if buildError != nil {
		return nil, fmt.Errorf(errorBuildTreeFormat, rootPath, buildError)
	}
	rootNode.Children = children
	return rootNode, nil
}

// buildTreeNodes recursively builds child nodes for the directory tree.
func (lister *Lister) buildTreeNodes(currentDirectoryPath string) ([]*types.TreeOutputNode, error) {
	directoryEntries, readDirectoryError := afero.ReadDir(lister.FileSystem, currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, currentDirectoryPath, readDirectoryError)
	}

	nodes := make([]*types.TreeOutputNode, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(currentDirectoryPath, directoryEntry.Name())
		node := &types.TreeOutputNode{
			Path: childPath,
			Name: directoryEntry.Name(),
			Type: types.NodeTypeFile,
		}
		if directoryEntry.IsDir() {
			node.Type = types.NodeTypeDirectory
			childNodes, buildError := lister.buildTreeNodes(childPath)
			if buildError != nil {
				lister.Logger.Warn(warningSkipSubdirMessage, zap.String("path", childPath), zap.Error(buildError))
			} else {
				node.Children = childNodes
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// CollectEntries flattens a tree into slash-separated paths relative to the
// node's parent, suffixing directories with "/".
func CollectEntries(node *types.TreeOutputNode) []string {
	var entries []string
	collectEntries(node, "", &entries)
	return entries
}

func collectEntries(node *types.TreeOutputNode, parentPath string, entries *[]string) {
	if node == nil {
		return
	}
	entryPath := node.Name
	if parentPath != "" {
		entryPath = parentPath + "/" + node.Name
	}
	if node.Type == types.NodeTypeDirectory {
		*entries = append(*entries, entryPath+"/")
	} else {
		*entries = append(*entries, entryPath)
	}
	for _, child := range node.Children {
		collectEntries(child, entryPath, entries)
	}
}

func nodeName(rootPath string, rootInfo os.FileInfo) string {
	name := filepath.Base(filepath.Clean(rootPath))
	if name == "." || name == string(filepath.Separator) {
		return rootInfo.Name()
	}
	return name
}
