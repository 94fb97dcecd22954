package depgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vojkan99/gnu-as-omnibor/gitoid"
)

func TestRegisterDependencyNoopUntilTrackingActive(t *testing.T) {
	var tr DependencyTracker
	tr.RegisterDependency("a.s")
	assert.Empty(t, tr.registry.Paths())

	tr.EnableOmnibor()
	tr.RegisterDependency("a.s")
	assert.Equal(t, []string{"a.s"}, tr.registry.Paths())
}

func TestStartDependenciesActivatesTracking(t *testing.T) {
	var tr DependencyTracker
	tr.StartDependencies(filepath.Join(t.TempDir(), "out.d"))
	tr.RegisterDependency("a.s")
	assert.Equal(t, []string{"a.s"}, tr.registry.Paths())
	assert.False(t, tr.IsOmniborEnabled())
}

func TestPrintDependenciesWritesMakeRule(t *testing.T) {
	dir := t.TempDir()
	outD := filepath.Join(dir, "out.d")

	var tr DependencyTracker
	tr.StartDependencies(outD)
	tr.RegisterDependency("a.s")
	tr.RegisterDependency("b.s")

	require.NoError(t, tr.PrintDependencies("out.o"))

	got, err := os.ReadFile(outD)
	require.NoError(t, err)
	assert.Equal(t, "out.o: a.s b.s\n", string(got))
}

func TestPrintDependenciesNoopWithoutOutputPath(t *testing.T) {
	var tr DependencyTracker
	tr.EnableOmnibor()
	tr.RegisterDependency("a.s")
	assert.NoError(t, tr.PrintDependencies("out.o"))
}

func TestWriteSHA1OmniborPlacesManifestAndReturnsItsHex(t *testing.T) {
	dir := t.TempDir()
	depPath := filepath.Join(dir, "a.s")
	require.NoError(t, os.WriteFile(depPath, []byte("A"), 0o600))
	root := filepath.Join(dir, "bom-root")

	var tr DependencyTracker
	tr.EnableOmnibor()
	tr.RegisterDependency(depPath)

	hex := tr.WriteSHA1Omnibor(root)
	require.NotEmpty(t, hex)

	placed := filepath.Join(root, "objects", "gitoid_blob_sha1", hex[:2], hex[2:])
	got, err := os.ReadFile(placed)
	require.NoError(t, err)
	assert.Contains(t, string(got), "gitoid:blob:sha1\n")
}

func TestWriteBothOmniborReusesCachedHashes(t *testing.T) {
	dir := t.TempDir()
	depPath := filepath.Join(dir, "a.s")
	require.NoError(t, os.WriteFile(depPath, []byte("A"), 0o600))

	var tr DependencyTracker
	tr.EnableOmnibor()
	tr.RegisterDependency(depPath)

	sha1Hex, sha256Hex := tr.WriteBothOmnibor(filepath.Join(dir, "root"))
	require.NotEmpty(t, sha1Hex)
	require.NotEmpty(t, sha256Hex)

	rec := tr.cache.byName[depPath]
	require.NotNil(t, rec)
	assert.True(t, rec.haveSha1)
	assert.True(t, rec.haveSha256)
}

func TestClearDepsDropsCacheNotRegistry(t *testing.T) {
	var tr DependencyTracker
	tr.EnableOmnibor()
	tr.RegisterDependency("a.s")
	tr.cache.recordFor("a.s").setHexFor(gitoid.SHA1, "x")
	tr.ClearDeps()

	assert.Equal(t, []string{"a.s"}, tr.registry.Paths())
	assert.Empty(t, tr.cache.order)
}

func TestWriteOmniborRejectsUnknownAlgorithm(t *testing.T) {
	var tr DependencyTracker
	_, err := tr.WriteOmnibor("md5", t.TempDir())
	assert.Error(t, err)
}

func TestResetTearsDownEverything(t *testing.T) {
	var tr DependencyTracker
	tr.StartDependencies("out.d")
	tr.EnableOmnibor()
	tr.RegisterDependency("a.s")
	bomID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	tr.AddNoteSection("a.s", &bomID, nil)

	tr.Reset()

	assert.False(t, tr.IsOmniborEnabled())
	assert.Empty(t, tr.registry.Paths())
	_, ok := tr.notes.Lookup("a.s", gitoid.SHA1)
	assert.False(t, ok)
	assert.NoError(t, tr.PrintDependencies("out.o"))
}
