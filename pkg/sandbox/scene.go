package sandbox

import "regexp"

// DefaultSceneName is used when the source declares no Scene subclass.
const DefaultSceneName = "MyScene"

var sceneClassPattern = regexp.MustCompile(`class\s+(\w+)\s*\(\s*Scene\s*\)`)

// DetectSceneName returns the name of the first class in source that
// inherits from Scene. The scan is best-effort: Manim resolves the scene
// by name at render time, so a wrong guess surfaces as a render error
// the backend can correct.
func DetectSceneName(source string) string {
	if m := sceneClassPattern.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return DefaultSceneName
}
