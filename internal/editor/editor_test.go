package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApplyExactMatch(t *testing.T) {
	path := writeFile(t, "alpha\nfoo\nomega\n")

	diff, err := Apply(path, []EditOperation{{OldText: "foo", NewText: "bar"}}, false)
	require.NoError(t, err)

	assert.Contains(t, diff, "-foo")
	assert.Contains(t, diff, "+bar")
	assert.Equal(t, "alpha\nbar\nomega\n", readFile(t, path))
}

func TestApplyReplacesFirstOccurrenceOnly(t *testing.T) {
	path := writeFile(t, "foo\nmiddle\nfoo\n")

	_, err := Apply(path, []EditOperation{{OldText: "foo", NewText: "bar"}}, false)
	require.NoError(t, err)

	assert.Equal(t, "bar\nmiddle\nfoo\n", readFile(t, path))
}

func TestApplyDryRun(t *testing.T) {
	original := "alpha\nfoo\nomega\n"
	path := writeFile(t, original)
	edits := []EditOperation{{OldText: "foo", NewText: "bar"}}

	first, err := Apply(path, edits, true)
	require.NoError(t, err)
	assert.Equal(t, original, readFile(t, path), "dry run must not modify the file")

	// Idempotent: a second dry run on unchanged content yields the same diff.
	second, err := Apply(path, edits, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, original, readFile(t, path))
}

func TestApplySequentialEditsSeeEvolvingContent(t *testing.T) {
	path := writeFile(t, "one\ntwo\n")

	_, err := Apply(path, []EditOperation{
		{OldText: "two", NewText: "three"},
		{OldText: "three", NewText: "four"}, // targets text the first edit introduced
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "one\nfour\n", readFile(t, path))
}

func TestApplyNoMatchAbortsWithoutPartialEdits(t *testing.T) {
	original := "alpha\nbeta\n"
	path := writeFile(t, original)

	_, err := Apply(path, []EditOperation{
		{OldText: "alpha", NewText: "gamma"},
		{OldText: "never there", NewText: "x"},
	}, false)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Contains(t, err.Error(), "never there")
	assert.Equal(t, original, readFile(t, path), "a failed edit sequence must leave the file untouched")
}

func TestApplyWhitespaceTolerantMatch(t *testing.T) {
	path := writeFile(t, "func main() {\n\tdoWork()\n}\n")

	// The edit is authored with spaces; the file uses a tab.
	diff, err := Apply(path, []EditOperation{{
		OldText: "    doWork()",
		NewText: "    doMoreWork()",
	}}, false)
	require.NoError(t, err)

	assert.Contains(t, diff, "+\tdoMoreWork()")
	assert.Equal(t, "func main() {\n\tdoMoreWork()\n}\n", readFile(t, path))
}

func TestApplyWhitespaceTolerantMultiline(t *testing.T) {
	path := writeFile(t, "  if ok {\n    run()\n  }\n")

	_, err := Apply(path, []EditOperation{{
		OldText: "if ok {\nrun()\n}",
		NewText: "if ok {\nwalk()\n}",
	}}, false)
	require.NoError(t, err)

	// Each replacement line carries the first matched line's indent.
	assert.Equal(t, "  if ok {\n  walk()\n  }\n", readFile(t, path))
}

func TestApplyNormalizesLineEndings(t *testing.T) {
	path := writeFile(t, "alpha\r\nfoo\r\nomega\r\n")

	_, err := Apply(path, []EditOperation{{OldText: "foo\n", NewText: "bar\n"}}, false)
	require.NoError(t, err)

	assert.Equal(t, "alpha\nbar\nomega\n", readFile(t, path))
}

func TestApplyRoundTripRestoresContent(t *testing.T) {
	original := "alpha\nbeta\ngamma\n"
	path := writeFile(t, original)

	forward := []EditOperation{
		{OldText: "alpha", NewText: "ALPHA"},
		{OldText: "gamma", NewText: "GAMMA"},
	}
	_, err := Apply(path, forward, false)
	require.NoError(t, err)

	// Reverse: swap old/new, apply in reverse order.
	reverse := make([]EditOperation, 0, len(forward))
	for i := len(forward) - 1; i >= 0; i-- {
		reverse = append(reverse, EditOperation{OldText: forward[i].NewText, NewText: forward[i].OldText})
	}
	_, err = Apply(path, reverse, false)
	require.NoError(t, err)

	assert.Equal(t, original, readFile(t, path))
}

func TestApplyPreservesFileMode(t *testing.T) {
	path := writeFile(t, "foo\n")
	require.NoError(t, os.Chmod(path, 0600))

	_, err := Apply(path, []EditOperation{{OldText: "foo", NewText: "bar"}}, false)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestApplyMissingFile(t *testing.T) {
	_, err := Apply(filepath.Join(t.TempDir(), "absent.txt"), []EditOperation{{OldText: "a", NewText: "b"}}, false)
	assert.Error(t, err)
}

func TestApplyEmptyEditList(t *testing.T) {
	original := "unchanged\n"
	path := writeFile(t, original)

	diff, err := Apply(path, nil, false)
	require.NoError(t, err)
	assert.Empty(t, diff)
	assert.Equal(t, original, readFile(t, path))
}
