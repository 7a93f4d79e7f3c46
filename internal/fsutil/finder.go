// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Glob expands every pattern relative to the working directory and returns
// the matches in pattern order. Matches within a single pattern are sorted
// and a path matched by several patterns is returned once. Patterns support
// "**" for recursive matching.
func Glob(patterns ...string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		matches, err := doublestar.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// ReplaceExt swaps the extension of the final path segment for ext. A dot in
// a directory name is not an extension: when the last segment has no dot,
// "."+ext is appended to the whole path.
func ReplaceExt(path, ext string) string {
	dot := strings.LastIndex(path, ".")
	sep := max(strings.LastIndex(path, "/"), strings.LastIndex(path, `\`))
	if sep < dot {
		return path[:dot] + "." + ext
	}
	return path + "." + ext
}
