package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scopefs/internal/logging"
)

func newTestServer(t *testing.T, roots ...string) *Server {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return NewServer(roots, logger)
}

func tempRoot(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestHandleReadTextFile(t *testing.T) {
	root := tempRoot(t)
	file := filepath.Join(root, "doc.txt")
	require.NoError(t, os.WriteFile(file, []byte("a\nb\nc\n"), 0o644))
	s := newTestServer(t, root)

	t.Run("full read", func(t *testing.T) {
		result, err := s.handleReadTextFile(context.Background(), callRequest(map[string]any{
			"path": file,
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "a\nb\nc\n", resultText(t, result))
	})

	t.Run("head", func(t *testing.T) {
		result, err := s.handleReadTextFile(context.Background(), callRequest(map[string]any{
			"path": file,
			"head": 1,
		}))
		require.NoError(t, err)
		assert.Equal(t, "a\n", resultText(t, result))
	})

	t.Run("outside roots is a tool error", func(t *testing.T) {
		result, err := s.handleReadTextFile(context.Background(), callRequest(map[string]any{
			"path": "/etc/hostname",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "outside allowed directories")
	})

	t.Run("missing path argument", func(t *testing.T) {
		result, err := s.handleReadTextFile(context.Background(), callRequest(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestHandleWriteAndEditFile(t *testing.T) {
	root := tempRoot(t)
	s := newTestServer(t, root)
	file := filepath.Join(root, "code.go")

	result, err := s.handleWriteFile(context.Background(), callRequest(map[string]any{
		"path":    file,
		"content": "package main\n",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Successfully wrote")

	result, err = s.handleEditFile(context.Background(), callRequest(map[string]any{
		"path": file,
		"edits": []any{
			map[string]any{"oldText": "package main", "newText": "package app"},
		},
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "+package app")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "package app\n", string(data))
}

func TestHandleEditFileDryRun(t *testing.T) {
	root := tempRoot(t)
	file := filepath.Join(root, "note.txt")
	require.NoError(t, os.WriteFile(file, []byte("before\n"), 0o644))
	s := newTestServer(t, root)

	result, err := s.handleEditFile(context.Background(), callRequest(map[string]any{
		"path": file,
		"edits": []any{
			map[string]any{"oldText": "before", "newText": "after"},
		},
		"dryRun": true,
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "-before")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "before\n", string(data))
}

func TestHandleListDirectory(t *testing.T) {
	root := tempRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	s := newTestServer(t, root)

	result, err := s.handleListDirectory(context.Background(), callRequest(map[string]any{
		"path": root,
	}))
	require.NoError(t, err)
	assert.Equal(t, "[FILE] a.txt\n[DIR] sub", resultText(t, result))
}

func TestHandleListDirectoryWithSizes(t *testing.T) {
	root := tempRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "data.bin"), []byte("0123456789"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	s := newTestServer(t, root)

	result, err := s.handleListDirectoryWithSizes(context.Background(), callRequest(map[string]any{
		"path": root,
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "[FILE] data.bin")
	assert.Contains(t, text, "10 B")
	assert.Contains(t, text, "Total: 1 files, 1 directories")
	assert.Contains(t, text, "Combined size: 10 B")
}

func TestHandleDirectoryTree(t *testing.T) {
	root := tempRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("m"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "x"), 0o755))
	s := newTestServer(t, root)

	result, err := s.handleDirectoryTree(context.Background(), callRequest(map[string]any{
		"path":            root,
		"excludePatterns": []any{"node_modules"},
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.NotContains(t, text, "node_modules")

	var tree []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &tree))
	require.Len(t, tree, 1)
	assert.Equal(t, "src", tree[0]["name"])
	assert.Equal(t, "directory", tree[0]["type"])
}

func TestHandleMoveFile(t *testing.T) {
	root := tempRoot(t)
	src := filepath.Join(root, "old.txt")
	dst := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	s := newTestServer(t, root)

	result, err := s.handleMoveFile(context.Background(), callRequest(map[string]any{
		"source":      src,
		"destination": dst,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = s.handleMoveFile(context.Background(), callRequest(map[string]any{
		"source":      dst,
		"destination": dst,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "already exists")
}

func TestHandleSearchFiles(t *testing.T) {
	root := tempRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "Guide.md"), []byte("g"), 0o644))
	s := newTestServer(t, root)

	result, err := s.handleSearchFiles(context.Background(), callRequest(map[string]any{
		"path":    root,
		"pattern": "guide",
	}))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "docs", "Guide.md"), resultText(t, result))

	result, err = s.handleSearchFiles(context.Background(), callRequest(map[string]any{
		"path":    root,
		"pattern": "nothing-here",
	}))
	require.NoError(t, err)
	assert.Equal(t, "No matches found", resultText(t, result))
}

func TestHandleGetFileInfo(t *testing.T) {
	root := tempRoot(t)
	file := filepath.Join(root, "meta.txt")
	require.NoError(t, os.WriteFile(file, []byte("12345"), 0o644))
	s := newTestServer(t, root)

	result, err := s.handleGetFileInfo(context.Background(), callRequest(map[string]any{
		"path": file,
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "size: 5")
	assert.Contains(t, text, "isFile: true")
	assert.Contains(t, text, "isDirectory: false")
}

func TestHandleListAllowedDirectories(t *testing.T) {
	rootA := tempRoot(t)
	rootB := tempRoot(t)
	s := newTestServer(t, rootA, rootB)

	result, err := s.handleListAllowedDirectories(context.Background(), callRequest(nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.True(t, strings.HasPrefix(text, "Allowed directories:"))
	assert.Contains(t, text, rootA)
	assert.Contains(t, text, rootB)
}

func TestHandleCreateDirectory(t *testing.T) {
	root := tempRoot(t)
	s := newTestServer(t, root)

	result, err := s.handleCreateDirectory(context.Background(), callRequest(map[string]any{
		"path": filepath.Join(root, "a", "b"),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	info, err := os.Stat(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
