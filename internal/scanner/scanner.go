// Package scanner finds the generated chunk files that embed contributor
// data and classifies them by wrapper binding.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// candidateToken marks files that embed contributor data at all.
	candidateToken = "contributors"

	// Path markers for compiled per-page assets. Both must be present.
	// The double filter looks redundant next to the content check but is
	// inherited from the tool this replaces; keep it as is.
	pathMarkerHTML = "html"
	pathMarkerJS   = ".js"

	// Wrapper opening tokens. Presence is a plain substring test, so a
	// file can match both and land in both sets.
	primaryToken   = "const e"
	secondaryToken = "const t"
)

// Result holds the two classification sets in discovery order. A path may
// appear in both.
type Result struct {
	Primary   []string
	Secondary []string
}

// Scan walks root and classifies every regular file whose path carries both
// asset markers and whose content mentions contributors. Each candidate is
// read once and tested independently for the two binding tokens.
func Scan(root string) (*Result, error) {
	res := &Result{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		// Markers are tested against the path below root, so a root
		// directory that happens to contain "html" does not turn the
		// filter into a pass-all.
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		if !strings.Contains(rel, pathMarkerHTML) || !strings.Contains(rel, pathMarkerJS) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		content := string(data)
		if !strings.Contains(content, candidateToken) {
			return nil
		}
		if strings.Contains(content, primaryToken) {
			res.Primary = append(res.Primary, path)
		}
		if strings.Contains(content, secondaryToken) {
			res.Secondary = append(res.Secondary, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return res, nil
}
