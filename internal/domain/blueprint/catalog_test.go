package blueprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSeed(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"counter.yaml":     plainYAML,
		"nested/todo.toml": plainTOML,
		"notes.bp":         `{"app":{"id":"notes","name":"Notes"},"ui":{"components":["hi"]}}`,
		"broken.json":      `{"title":`,
		"README.md":        "ignored",
		"nested/skip.txt":  "ignored",
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}

	c := NewCatalog(nil)
	loaded, failed, err := c.Seed(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded)
	assert.Equal(t, 1, failed)

	var ids []string
	for _, doc := range c.List() {
		ids = append(ids, doc.AppID)
	}
	assert.Equal(t, []string{"counter", "notes", "todo"}, ids)

	notes, ok := c.Get("notes")
	require.True(t, ok)
	assert.Equal(t, "Notes", notes.Spec.Title)

	_, ok = c.Get("broken")
	assert.False(t, ok)
}

func TestCatalogMissingDir(t *testing.T) {
	c := NewCatalog(nil)
	loaded, failed, err := c.Seed(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, loaded)
	assert.Zero(t, failed)
	assert.Empty(t, c.List())
}

func TestCatalogGetReturnsPrivateCopies(t *testing.T) {
	doc, err := Parse([]byte(plainYAML), FormatYAML)
	require.NoError(t, err)
	doc.AppID = "counter"

	c := NewCatalog(nil)
	c.Add(doc)

	first, ok := c.Get("counter")
	require.True(t, ok)
	second, ok := c.Get("counter")
	require.True(t, ok)
	require.NotSame(t, first.Spec, second.Spec)

	title := doc.Spec.Title
	first.Spec.Title = "changed"
	first.Spec.Components = nil

	assert.Equal(t, title, second.Spec.Title)
	assert.Equal(t, title, c.List()[0].Spec.Title)
	assert.NotEmpty(t, c.List()[0].Spec.Components)
}
