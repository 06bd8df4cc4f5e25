package sandbox

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindArtifact walks root depth-first in directory-enumeration order and
// returns the path of the first file with the given extension, or ""
// if none exists. Manim nests its output under media/videos/<scene>/<quality>,
// so the artifact sits at an unpredictable depth.
func FindArtifact(root, ext string) string {
	var found string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
