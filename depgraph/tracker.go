// Package depgraph is the assembler's dependency-tracking and
// OmniBOR artifact-identity core: an ordered path registry, a note
// sidecar fed by the ELF-note reader collaborator, a make-rule emitter,
// and the OmniBOR manifest builder plus content-addressed store.
package depgraph

import (
	"fmt"
	"log"
	"os"

	"github.com/vojkan99/gnu-as-omnibor/gitoid"
	"github.com/vojkan99/gnu-as-omnibor/makerule"
	"github.com/vojkan99/gnu-as-omnibor/store"
)

// DependencyTracker is the single owned value an assembler holds for the
// lifetime of one compilation: it replaces the dep_chain, omnibor_deps,
// note-section list and column counter the C original keeps as process
// globals.
type DependencyTracker struct {
	registry PathRegistry
	cache    depCache
	notes    NoteSidecar

	depOutputPath  string
	haveOutputPath bool
	omniborEnabled bool

	// Logger receives warnings for recoverable I/O failures (spec.md's
	// "host's warning channel"). Defaults to log.Default() when nil.
	Logger *log.Logger
}

func (t *DependencyTracker) logger() *log.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return log.Default()
}

// StartDependencies sets the output path print_dependencies writes the
// make rule to.
func (t *DependencyTracker) StartDependencies(path string) {
	t.depOutputPath = path
	t.haveOutputPath = true
}

// EnableOmnibor enables dependency retention even when no make output
// path has been set.
func (t *DependencyTracker) EnableOmnibor() {
	t.omniborEnabled = true
}

// IsOmniborEnabled reports whether EnableOmnibor has been called.
func (t *DependencyTracker) IsOmniborEnabled() bool {
	return t.omniborEnabled
}

// trackingActive mirrors spec.md §3: tracking is active iff either a
// make output path or OmniBOR has been requested.
func (t *DependencyTracker) trackingActive() bool {
	return t.haveOutputPath || t.omniborEnabled
}

// RegisterDependency records path, deduplicating under the platform's
// filename comparison. No-op when tracking is not active.
func (t *DependencyTracker) RegisterDependency(path string) {
	if !t.trackingActive() {
		return
	}
	t.registry.Register(path)
}

// AddNoteSection records a pre-existing OmniBOR id for path, as supplied
// by the ELF-note reader collaborator.
func (t *DependencyTracker) AddNoteSection(path string, sha1Hex, sha256Hex *string) {
	t.notes.Add(path, sha1Hex, sha256Hex)
}

// ClearNoteSections tears down the note sidecar.
func (t *DependencyTracker) ClearNoteSections() {
	t.notes.Clear()
}

// ClearDeps tears down the OmniBOR dep-record cache, not the path
// registry.
func (t *DependencyTracker) ClearDeps() {
	t.cache.Reset()
}

// Reset tears down all tracker state, for reuse within the same process.
func (t *DependencyTracker) Reset() {
	t.registry.Reset()
	t.cache.Reset()
	t.notes.Clear()
	t.depOutputPath = ""
	t.haveOutputPath = false
	t.omniborEnabled = false
}

// PrintDependencies writes a single make rule naming target and every
// registered dependency, in registry order, to the tracker's output
// path. It is a no-op if no output path has been set. An open failure is
// warned through the logger and abandons the rule before anything is
// written; a close failure, which comes after the rule is written, is
// warned through the logger.
func (t *DependencyTracker) PrintDependencies(target string) error {
	if !t.haveOutputPath {
		return nil
	}

	f, err := os.Create(t.depOutputPath)
	if err != nil {
		t.logger().Printf("warning: cannot open dependency output %s: %v", t.depOutputPath, err)
		return nil
	}

	w := &makerule.Writer{W: f}
	_, writeErr := w.WriteRule(target, t.registry.Paths())

	if closeErr := f.Close(); closeErr != nil {
		t.logger().Printf("warning: cannot close dependency output %s: %v", t.depOutputPath, closeErr)
	}

	return writeErr
}

// WriteSHA1Omnibor builds and stores the SHA-1 OmniBOR manifest for the
// current registry and returns its hex gitoid, or "" on failure.
func (t *DependencyTracker) WriteSHA1Omnibor(resultRoot string) string {
	return t.writeOmnibor(gitoid.SHA1, resultRoot)
}

// WriteSHA256Omnibor builds and stores the SHA-256 OmniBOR manifest for
// the current registry and returns its hex gitoid, or "" on failure.
func (t *DependencyTracker) WriteSHA256Omnibor(resultRoot string) string {
	return t.writeOmnibor(gitoid.SHA256, resultRoot)
}

// WriteBothOmnibor writes both algorithm manifests against the same
// registry snapshot, reusing any hash already cached from a prior call
// to either single-algorithm entry point.
func (t *DependencyTracker) WriteBothOmnibor(resultRoot string) (sha1Hex, sha256Hex string) {
	return t.WriteSHA1Omnibor(resultRoot), t.WriteSHA256Omnibor(resultRoot)
}

// WriteOmnibor writes the manifest for a caller-named algorithm tag
// ("sha1" or "sha256"), as used by the CLI where the algorithm comes from
// a flag rather than a fixed call site. An unrecognized tag aborts with
// an error and no manifest is written, per spec.md's "invalid input"
// error policy.
func (t *DependencyTracker) WriteOmnibor(tag string, resultRoot string) (string, error) {
	algo, err := gitoid.ParseAlgorithm(tag)
	if err != nil {
		return "", unknownAlgorithmError(tag)
	}
	return t.writeOmnibor(algo, resultRoot), nil
}

func (t *DependencyTracker) writeOmnibor(algo gitoid.Algorithm, resultRoot string) string {
	manifest := buildManifest(algo, t.registry.Paths(), &t.cache, &t.notes, func(path string) (string, error) {
		return gitoid.OfFile(algo, path)
	})

	w := &store.Writer{Root: resultRoot}
	if _, err := w.Place(algo, manifest.Hex, manifest.Body); err != nil {
		t.logger().Printf("warning: storing %s omnibor manifest: %v", algo, err)
		return ""
	}

	return manifest.Hex
}

// unknownAlgorithmError is returned by WriteOmnibor when an algorithm tag
// from outside this package (the CLI's -algo flag, for instance) fails
// ParseAlgorithm.
func unknownAlgorithmError(tag string) error {
	return fmt.Errorf("depgraph: unknown algorithm %q", tag)
}
