// Package guard enforces the version-control convention the original
// template leaves to developer discipline: the filled-in secrets file
// stays out of git. It answers whether a path is covered by the repo's
// ignore rules and scans a work tree for leaked credential values.
package guard

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ignoreRule is one parsed .gitignore line.
type ignoreRule struct {
	pattern  string
	negate   bool
	dirOnly  bool
	anchored bool
}

// Gitignore matches relative paths against a repository's ignore rules.
// Later rules win, matching git semantics for the supported subset:
// bare names, anchored paths, trailing-slash directory rules, `*`, `?`,
// `**`, and `!` negation.
type Gitignore struct {
	rules []ignoreRule
}

// LoadGitignore reads the .gitignore at the root of repoDir. A missing
// file yields an empty matcher, not an error.
func LoadGitignore(repoDir string) (*Gitignore, error) {
	f, err := os.Open(filepath.Join(repoDir, ".gitignore"))
	if os.IsNotExist(err) {
		return &Gitignore{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open .gitignore: %w", err)
	}
	defer f.Close()

	g := &Gitignore{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		g.AddPattern(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read .gitignore: %w", err)
	}
	return g, nil
}

// AddPattern appends one .gitignore line to the rule list. Blank lines
// and comments are dropped.
func (g *Gitignore) AddPattern(line string) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	rule := ignoreRule{}
	if strings.HasPrefix(line, "!") {
		rule.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		rule.anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		// A slash anywhere in the pattern anchors it to the root.
		rule.anchored = true
	}
	if line == "" {
		return
	}
	rule.pattern = line
	g.rules = append(g.rules, rule)
}

// Ignored reports whether relPath (slash-separated, relative to the
// repo root) is excluded from version control. A path inside an
// ignored directory is ignored.
func (g *Gitignore) Ignored(relPath string, isDir bool) bool {
	relPath = path.Clean(strings.ReplaceAll(relPath, string(filepath.Separator), "/"))
	if relPath == "." || relPath == "" {
		return false
	}

	// Check the path itself and every parent directory: ignoring a
	// directory ignores everything under it.
	parts := strings.Split(relPath, "/")
	for i := 1; i <= len(parts); i++ {
		sub := strings.Join(parts[:i], "/")
		subIsDir := isDir || i < len(parts)
		if g.matches(sub, subIsDir) {
			return true
		}
	}
	return false
}

// matches applies last-match-wins over the rule list for one exact path.
func (g *Gitignore) matches(relPath string, isDir bool) bool {
	ignored := false
	for _, rule := range g.rules {
		if rule.dirOnly && !isDir {
			continue
		}
		if rule.match(relPath) {
			ignored = !rule.negate
		}
	}
	return ignored
}

func (r ignoreRule) match(relPath string) bool {
	if r.anchored {
		return matchSegments(strings.Split(r.pattern, "/"), strings.Split(relPath, "/"))
	}
	// Unanchored patterns match against the basename at any depth.
	return matchSegments(strings.Split(r.pattern, "/"), []string{path.Base(relPath)})
}

// matchSegments matches pattern segments against path segments, with
// "**" spanning any number of segments and path.Match semantics within
// one segment.
func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	if pattern[0] == "**" {
		for skip := 0; skip <= len(segs); skip++ {
			if matchSegments(pattern[1:], segs[skip:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], segs[1:])
}
