package tools

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Directories never worth indexing.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
}

// fileIndex caches the workspace file list between lookups. fsnotify events
// on any indexed directory mark the cache stale; the next lookup re-walks.
type fileIndex struct {
	root string
	log  *zap.Logger

	mu      sync.Mutex
	files   []string
	fresh   bool
	watcher *fsnotify.Watcher
}

func newFileIndex(root string, log *zap.Logger) *fileIndex {
	idx := &fileIndex{root: root, log: log}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		// Without a watcher every lookup walks the tree; slower but correct.
		log.Warn("fsnotify unavailable, file index will not cache", zap.Error(err))
		return idx
	}
	idx.watcher = w
	go idx.watch()
	return idx
}

func (ix *fileIndex) watch() {
	for {
		select {
		case _, ok := <-ix.watcher.Events:
			if !ok {
				return
			}
			ix.mu.Lock()
			ix.fresh = false
			ix.mu.Unlock()
		case err, ok := <-ix.watcher.Errors:
			if !ok {
				return
			}
			ix.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Files returns the relative paths of every regular file under the root.
func (ix *fileIndex) Files() ([]string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.fresh && ix.watcher != nil {
		return ix.files, nil
	}

	var files []string
	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if ix.watcher != nil {
				ix.watcher.Add(path)
			}
			return nil
		}
		rel, err := filepath.Rel(ix.root, path)
		if err != nil {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ix.files = files
	ix.fresh = ix.watcher != nil
	return files, nil
}

func (ix *fileIndex) Close() error {
	if ix.watcher == nil {
		return nil
	}
	return ix.watcher.Close()
}
