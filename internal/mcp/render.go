package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scopefs/internal/filemanager"
	"scopefs/internal/walker"
)

// renderListing formats a flat directory listing, one entry per line.
func renderListing(entries []walker.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		prefix := "[FILE]"
		if e.IsDir {
			prefix = "[DIR]"
		}
		lines = append(lines, prefix+" "+e.Name)
	}
	return strings.Join(lines, "\n")
}

// renderSizedListing formats a listing with sizes and a trailing summary.
func renderSizedListing(entries []walker.Entry) string {
	var b strings.Builder
	var fileCount, dirCount int
	var totalSize int64

	for _, e := range entries {
		if e.IsDir {
			dirCount++
			fmt.Fprintf(&b, "[DIR]  %-30s (%d entries)\n", e.Name, e.ChildCount)
		} else {
			fileCount++
			totalSize += e.Size
			fmt.Fprintf(&b, "[FILE] %-30s %s\n", e.Name, filemanager.FormatSize(e.Size))
		}
	}

	fmt.Fprintf(&b, "\nTotal: %d files, %d directories\n", fileCount, dirCount)
	fmt.Fprintf(&b, "Combined size: %s", filemanager.FormatSize(totalSize))
	return b.String()
}

// renderTree serializes the tree as indented JSON. An empty tree renders
// as an empty array, not null.
func renderTree(nodes []*walker.TreeNode) (string, error) {
	if nodes == nil {
		nodes = []*walker.TreeNode{}
	}
	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", fmt.Errorf("cannot serialize tree: %w", err)
	}
	return string(data), nil
}

// renderFileInfo formats metadata as key: value lines.
func renderFileInfo(info *filemanager.FileInfo) string {
	lines := []string{
		fmt.Sprintf("size: %d (%s)", info.Size, filemanager.FormatSize(info.Size)),
		"created: " + info.Created.Format(time.RFC3339),
		"modified: " + info.Modified.Format(time.RFC3339),
		"accessed: " + info.Accessed.Format(time.RFC3339),
		fmt.Sprintf("isDirectory: %t", info.IsDirectory),
		fmt.Sprintf("isFile: %t", info.IsFile),
		"permissions: " + info.Permissions,
	}
	return strings.Join(lines, "\n")
}
