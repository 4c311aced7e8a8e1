package blueprint

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// SpecPattern matches spec files anywhere under a catalog directory
const SpecPattern = "**/*.{bp,json,yaml,yml,toml}"

// Catalog holds prebuilt apps loaded from disk, keyed by app id
type Catalog struct {
	mu     sync.RWMutex
	docs   map[string]*Document
	logger *zap.Logger
}

// NewCatalog creates an empty catalog
func NewCatalog(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		docs:   make(map[string]*Document),
		logger: logger.Named("catalog"),
	}
}

// Seed loads every spec file under dir. A missing dir is not an error;
// files that fail to load are logged and counted.
func (c *Catalog) Seed(dir string) (loaded, failed int, err error) {
	if _, statErr := os.Stat(dir); errors.Is(statErr, fs.ErrNotExist) {
		c.logger.Warn("apps directory not found", zap.String("dir", dir))
		return 0, 0, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), SpecPattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, 0, err
	}
	sort.Strings(matches)

	for _, rel := range matches {
		doc, loadErr := Load(filepath.Join(dir, filepath.FromSlash(rel)))
		if loadErr != nil {
			c.logger.Warn("failed to load app", zap.String("file", rel), zap.Error(loadErr))
			failed++
			continue
		}
		c.Add(doc)
		loaded++
	}

	c.logger.Info("seeding complete", zap.Int("loaded", loaded), zap.Int("failed", failed))
	return loaded, failed, nil
}

// Add registers doc, replacing any app with the same id
func (c *Catalog) Add(doc *Document) {
	c.mu.Lock()
	c.docs[doc.AppID] = doc
	c.mu.Unlock()
}

// Get returns a copy of an app by id. The copy's spec is private to the
// caller, so installing it cannot touch the catalog entry.
func (c *Catalog) Get(appID string) (*Document, bool) {
	c.mu.RLock()
	doc, ok := c.docs[appID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	out := *doc
	out.Spec = doc.Spec.Clone()
	return &out, true
}

// List returns every app ordered by id
func (c *Catalog) List() []*Document {
	c.mu.RLock()
	out := make([]*Document, 0, len(c.docs))
	for _, doc := range c.docs {
		out = append(out, doc)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out
}
