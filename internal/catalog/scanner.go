package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/logger"
)

// Scan walks the directory rooted at rootPath and returns the catalog
// tree. Unrecognised files are excluded, excluded engine directories
// are not traversed, and directory read errors skip that directory
// without aborting the walk. Sidecar resource streams are linked in a
// post-pass over the completed tree.
//
// Scanning the same unchanged directory twice yields an identical
// catalog.
func Scan(rootPath string) (*domain.CatalogEntry, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(rootPath)
	if err != nil {
		abs = rootPath
	}

	root := &domain.CatalogEntry{
		Path:  abs,
		Name:  filepath.Base(abs),
		IsDir: info.IsDir(),
	}
	if info.IsDir() {
		root.Kind = domain.KindDirectory
		scanInto(root)
	} else {
		root.Kind = Classify(abs)
		root.Size = info.Size()
	}

	linkResourceStreams(root)
	return root, nil
}

// scanInto fills a directory entry's children recursively.
func scanInto(dir *domain.CatalogEntry) {
	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		// Permission or transient I/O failure: skip this directory,
		// never abort the walk.
		logger.Debug("skipping unreadable directory %s: %v", dir.Path, err)
		return
	}

	for _, de := range entries {
		path := filepath.Join(dir.Path, de.Name())

		if de.IsDir() {
			if IsExcludedDir(de.Name()) {
				logger.Debug("skipping engine directory %s", path)
				continue
			}
			child := &domain.CatalogEntry{
				Path:  path,
				Name:  de.Name(),
				IsDir: true,
				Kind:  domain.KindDirectory,
			}
			scanInto(child)
			dir.Children = append(dir.Children, child)
			continue
		}

		kind := Classify(path)
		if kind == domain.KindOther {
			continue
		}

		fi, err := de.Info()
		if err != nil {
			logger.Debug("skipping unreadable entry %s: %v", path, err)
			continue
		}

		dir.Children = append(dir.Children, &domain.CatalogEntry{
			Path: path,
			Name: de.Name(),
			Kind: kind,
			Size: fi.Size(),
		})
	}
}

// linkResourceStreams resolves sidecar links in a flat second pass:
// index all stream entries by lowercase path, then for each container
// or bundle entry look up the stream sharing its base filename in the
// same directory. Building the tree first avoids back-pointers during
// the recursive walk.
func linkResourceStreams(root *domain.CatalogEntry) {
	streams := make(map[string]*domain.CatalogEntry)
	var containers []*domain.CatalogEntry

	var collect func(e *domain.CatalogEntry)
	collect = func(e *domain.CatalogEntry) {
		if !e.IsDir {
			switch e.Kind {
			case domain.KindResourceStream:
				streams[strings.ToLower(e.Path)] = e
			case domain.KindSerializedContainer, domain.KindResourceBundle:
				containers = append(containers, e)
			}
		}
		for _, c := range e.Children {
			collect(c)
		}
	}
	collect(root)

	for _, c := range containers {
		base := strings.TrimSuffix(c.Name, filepath.Ext(c.Name))
		key := strings.ToLower(filepath.Join(filepath.Dir(c.Path), base+streamExtCanon))
		if s, ok := streams[key]; ok {
			c.LinkedStream = s
		}
	}
}
