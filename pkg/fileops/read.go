package fileops

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineLength bounds a single scanned line so head reads of files with very
// long lines do not fail.
const maxLineLength = 1024 * 1024

// ReadFileHead returns the first n lines of the file at path, newlines
// included. Reading stops as soon as n lines have been seen, so the tail of
// a large file is never loaded.
func ReadFileHead(path string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("line count must be positive, got %d", n)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	reader := bufio.NewReaderSize(f, 64*1024)
	for i := 0; i < n; i++ {
		line, err := reader.ReadString('\n')
		sb.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		if sb.Len() > maxLineLength*n {
			break
		}
	}
	return sb.String(), nil
}

// ReadFileTail returns the last n lines of the file at path, newlines
// included.
func ReadFileTail(path string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("line count must be positive, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	// A trailing newline leaves an empty final element; it is not a line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, ""), nil
}
