package depgraph

import (
	"runtime"
	"strings"
)

// PathRegistry is the ordered, de-duplicated set of dependency file paths
// an assembler accumulates while opening inputs for one output object.
// Insertion order is preserved; it is what the make-rule emitter walks.
type PathRegistry struct {
	paths []string
}

// Register appends path if it is not already present under the
// platform's filename comparison. It is a no-op for an already-registered
// path.
func (r *PathRegistry) Register(path string) {
	for _, p := range r.paths {
		if sameFile(p, path) {
			return
		}
	}
	r.paths = append(r.paths, path)
}

// Paths returns the registered paths in insertion order. The slice is
// owned by the registry; callers must not mutate it.
func (r *PathRegistry) Paths() []string {
	return r.paths
}

// Reset clears the registry, as at process teardown.
func (r *PathRegistry) Reset() {
	r.paths = nil
}

// sameFile compares two paths the way the host platform compares
// filenames: case-sensitively on POSIX, case-insensitively on platforms
// whose filesystems usually are (Windows, Darwin/HFS+/APFS in its default
// configuration).
func sameFile(a, b string) bool {
	if caseInsensitiveFilenames() {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func caseInsensitiveFilenames() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}
