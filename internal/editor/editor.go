// Package editor applies ordered text substitutions to a file and renders
// the change as a unified diff. Matching is forgiving about whitespace but
// application is all-or-nothing: if any edit fails to match, nothing is
// written.
package editor

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"scopefs/pkg/fileops"
)

// ErrNoMatch means an edit's oldText could not be located in the file
// content, neither verbatim nor after whitespace normalization.
var ErrNoMatch = errors.New("text to replace not found")

// EditOperation is one requested substitution. A request carries an ordered
// sequence of these, applied against the evolving content so a later edit
// can target text introduced by an earlier one.
type EditOperation struct {
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}

// Apply runs edits in order against the file at path and returns a unified
// diff from the original content to the final content. With dryRun set the
// diff is produced and the file is left untouched; otherwise the final
// content is written back atomically, preserving the file's mode.
func Apply(path string, edits []EditOperation, dryRun bool) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	original := normalizeLineEndings(string(raw))

	content := original
	for i, edit := range edits {
		next, err := applyOne(content, edit)
		if err != nil {
			return "", fmt.Errorf("edit %d: %w", i+1, err)
		}
		content = next
	}

	diff, err := unifiedDiff(path, original, content)
	if err != nil {
		return "", err
	}

	if dryRun {
		return diff, nil
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fileops.AtomicWriteFile(path, []byte(content), perm); err != nil {
		return "", fmt.Errorf("cannot write %s: %w", path, err)
	}
	return diff, nil
}

// applyOne replaces the first occurrence of the edit's oldText. Matching is
// tried exactly first, then line-by-line with surrounding whitespace ignored.
func applyOne(content string, edit EditOperation) (string, error) {
	oldText := normalizeLineEndings(edit.OldText)
	newText := normalizeLineEndings(edit.NewText)

	if idx := strings.Index(content, oldText); idx >= 0 {
		return content[:idx] + newText + content[idx+len(oldText):], nil
	}

	if replaced, ok := replaceLenient(content, oldText, newText); ok {
		return replaced, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNoMatch, truncate(oldText, 50))
}

// replaceLenient retries the match line by line, comparing each line with
// leading and trailing whitespace stripped. On success the matched block is
// replaced by newText carrying the first matched line's indentation.
func replaceLenient(content, oldText, newText string) (string, bool) {
	contentLines := strings.Split(content, "\n")
	oldLines := strings.Split(oldText, "\n")
	if len(oldLines) == 0 || len(oldLines) > len(contentLines) {
		return "", false
	}

	for start := 0; start+len(oldLines) <= len(contentLines); start++ {
		if !linesMatch(contentLines[start:start+len(oldLines)], oldLines) {
			continue
		}

		indent := leadingWhitespace(contentLines[start])
		newLines := strings.Split(newText, "\n")
		replacement := make([]string, len(newLines))
		for i, line := range newLines {
			if strings.TrimSpace(line) == "" {
				replacement[i] = ""
				continue
			}
			replacement[i] = indent + strings.TrimLeft(line, " \t")
		}

		merged := make([]string, 0, len(contentLines)-len(oldLines)+len(replacement))
		merged = append(merged, contentLines[:start]...)
		merged = append(merged, replacement...)
		merged = append(merged, contentLines[start+len(oldLines):]...)
		return strings.Join(merged, "\n"), true
	}
	return "", false
}

func linesMatch(window, target []string) bool {
	for i := range target {
		if strings.TrimSpace(window[i]) != strings.TrimSpace(target[i]) {
			return false
		}
	}
	return true
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// unifiedDiff renders a git-style unified diff between the two contents.
func unifiedDiff(path, original, updated string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(updated),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("cannot render diff: %w", err)
	}
	return text, nil
}

// normalizeLineEndings converts CRLF to LF so edits authored on one platform
// apply to content written on another.
func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
