// Package mutate discovers candidate text files in a working copy and
// applies randomized, harmless edits to a chosen subset of them.
package mutate

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/evanmh/activitybot/internal/domain"
)

// skipDirs are version-control and build-artifact directories excluded from
// the candidate walk.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	"target":       true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// WalkOptions filters the candidate walk
type WalkOptions struct {
	Extensions []string    // lower-case, without dot
	Ignore     []glob.Glob // matched against repo-relative slash paths
}

// CompileIgnore compiles ignore patterns. Patterns are validated at config
// load, so failures here indicate a programming error.
func CompileIgnore(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Candidates walks root and returns repo-relative slash paths of eligible
// text files. The set is recomputed on every call; the repository may change
// between runs.
func Candidates(root string, opts WalkOptions) ([]string, error) {
	allowed := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		allowed[ext] = true
	}

	var result []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !allowed[ext] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		for _, g := range opts.Ignore {
			if g.Match(rel) {
				return nil
			}
		}

		result = append(result, rel)
		return nil
	})
	if err != nil {
		return nil, &domain.FSError{Path: root, Err: err}
	}

	return result, nil
}
