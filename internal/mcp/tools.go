package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"scopefs/internal/editor"
)

// registerTools wires every filesystem tool into the MCP server. Handlers
// convert domain errors into tool error results so the protocol session
// survives failed calls.
func (s *Server) registerTools() {
	stringItems := map[string]any{"type": "string"}

	s.mcpServer.AddTool(mcp.NewTool("read_text_file",
		mcp.WithDescription("Read the complete contents of a file as UTF-8 text. "+
			"Use head to read only the first N lines or tail to read only the last N lines. "+
			"Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file to read")),
		mcp.WithNumber("head", mcp.Description("If provided, return only the first N lines")),
		mcp.WithNumber("tail", mcp.Description("If provided, return only the last N lines")),
	), s.handleReadTextFile)

	s.mcpServer.AddTool(mcp.NewTool("read_media_file",
		mcp.WithDescription("Read an image or other binary file. Returns the content "+
			"base64-encoded with its detected MIME type. Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the media file to read")),
	), s.handleReadMediaFile)

	s.mcpServer.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Create a new file or completely overwrite an existing file. "+
			"The write is atomic: readers never observe partial content. "+
			"Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to write")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full content to write")),
	), s.handleWriteFile)

	s.mcpServer.AddTool(mcp.NewTool("edit_file",
		mcp.WithDescription("Make selective edits to a text file by replacing exact text "+
			"sequences. Falls back to whitespace-tolerant line matching when no exact match "+
			"exists. Returns a unified diff of the changes. Set dryRun to preview without "+
			"modifying the file. Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to edit")),
		mcp.WithArray("edits", mcp.Required(),
			mcp.Description("Edits to apply in order; each has oldText and newText"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"oldText": map[string]any{"type": "string", "description": "Text to search for"},
					"newText": map[string]any{"type": "string", "description": "Text to replace with"},
				},
				"required": []string{"oldText", "newText"},
			}),
		),
		mcp.WithBoolean("dryRun", mcp.Description("Preview changes without writing the file")),
	), s.handleEditFile)

	s.mcpServer.AddTool(mcp.NewTool("create_directory",
		mcp.WithDescription("Create a new directory, including any missing parent "+
			"directories. Succeeds silently if the directory already exists. "+
			"Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the directory to create")),
	), s.handleCreateDirectory)

	s.mcpServer.AddTool(mcp.NewTool("list_directory",
		mcp.WithDescription("List the direct children of a directory, each prefixed with "+
			"[DIR] or [FILE]. Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the directory to list")),
	), s.handleListDirectory)

	s.mcpServer.AddTool(mcp.NewTool("list_directory_with_sizes",
		mcp.WithDescription("List the direct children of a directory with file sizes and "+
			"directory entry counts, plus a summary. Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the directory to list")),
		mcp.WithString("sortBy",
			mcp.Description("Sort order: by name (default) or by size"),
			mcp.Enum("name", "size"),
		),
	), s.handleListDirectoryWithSizes)

	s.mcpServer.AddTool(mcp.NewTool("directory_tree",
		mcp.WithDescription("Get a recursive JSON tree of files and directories. Each node "+
			"has name, type and, for directories, children. Entries matching an exclusion "+
			"pattern are omitted together with their subtrees. "+
			"Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Root of the tree")),
		mcp.WithArray("excludePatterns",
			mcp.Description("Glob patterns for entries to exclude"),
			mcp.Items(stringItems),
		),
	), s.handleDirectoryTree)

	s.mcpServer.AddTool(mcp.NewTool("move_file",
		mcp.WithDescription("Move or rename a file or directory. Fails if the destination "+
			"already exists. Both paths must be within allowed directories."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Existing path to move")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("New path")),
	), s.handleMoveFile)

	s.mcpServer.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Recursively search for files and directories whose names match "+
			"a pattern, case-insensitively. Returns full paths of all matches. "+
			"Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to search under")),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Name pattern to match")),
		mcp.WithArray("excludePatterns",
			mcp.Description("Glob patterns for entries to exclude"),
			mcp.Items(stringItems),
		),
	), s.handleSearchFiles)

	s.mcpServer.AddTool(mcp.NewTool("get_file_info",
		mcp.WithDescription("Retrieve metadata about a file or directory: size, timestamps, "+
			"type and permissions. Only works within allowed directories."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to inspect")),
	), s.handleGetFileInfo)

	s.mcpServer.AddTool(mcp.NewTool("list_allowed_directories",
		mcp.WithDescription("List the directory roots this server is allowed to access."),
	), s.handleListAllowedDirectories)
}

func (s *Server) handleReadTextFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	head := req.GetInt("head", 0)
	tail := req.GetInt("tail", 0)

	content, err := s.fileManager.ReadTextFile(path, head, tail)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) handleReadMediaFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	media, err := s.fileManager.ReadMediaFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.HasPrefix(media.MIMEType, "image/") {
		return mcp.NewToolResultImage("Media file: "+path, media.Data, media.MIMEType), nil
	}
	return mcp.NewToolResultText("MIME type: " + media.MIMEType + "\n" + media.Data), nil
}

func (s *Server) handleWriteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.fileManager.WriteFile(path, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Successfully wrote to " + path), nil
}

type editFileArgs struct {
	Path   string                 `json:"path"`
	Edits  []editor.EditOperation `json:"edits"`
	DryRun bool                   `json:"dryRun"`
}

func (s *Server) handleEditFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args editFileArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	if len(args.Edits) == 0 {
		return mcp.NewToolResultError("at least one edit is required"), nil
	}

	diff, err := s.fileManager.EditFile(args.Path, args.Edits, args.DryRun)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(diff), nil
}

func (s *Server) handleCreateDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.fileManager.CreateDirectory(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Successfully created directory " + path), nil
}

func (s *Server) handleListDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := s.fileManager.ListDirectory(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderListing(entries)), nil
}

func (s *Server) handleListDirectoryWithSizes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sortBy := req.GetString("sortBy", "name")

	entries, err := s.fileManager.ListDirectoryWithSizes(path, sortBy)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderSizedListing(entries)), nil
}

func (s *Server) handleDirectoryTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer s.logger.LogPerformance("directory_tree", time.Now())

	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	exclude := req.GetStringSlice("excludePatterns", nil)

	tree, err := s.fileManager.DirectoryTree(path, exclude)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rendered, err := renderTree(tree)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(rendered), nil
}

func (s *Server) handleMoveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := req.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.fileManager.MoveFile(source, destination); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Successfully moved " + source + " to " + destination), nil
}

func (s *Server) handleSearchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer s.logger.LogPerformance("search_files", time.Now())

	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	exclude := req.GetStringSlice("excludePatterns", nil)

	matches, err := s.fileManager.SearchFiles(path, pattern, exclude)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("No matches found"), nil
	}
	return mcp.NewToolResultText(strings.Join(matches, "\n")), nil
}

func (s *Server) handleGetFileInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := s.fileManager.GetFileInfo(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderFileInfo(info)), nil
}

func (s *Server) handleListAllowedDirectories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	roots := s.fileManager.ListAllowedDirectories()
	return mcp.NewToolResultText("Allowed directories:\n" + strings.Join(roots, "\n")), nil
}
