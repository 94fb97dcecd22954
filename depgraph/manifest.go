package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vojkan99/gnu-as-omnibor/gitoid"
)

// depRecord is the cached, dual-algorithm-capable record of a registered
// dependency: its two hash columns are populated independently, the
// first time each algorithm is computed for this path, and reused on any
// later manifest build.
type depRecord struct {
	name       string
	sha1Hex    string
	haveSha1   bool
	sha256Hex  string
	haveSha256 bool
}

func (d *depRecord) hexFor(algo gitoid.Algorithm) (string, bool) {
	switch algo {
	case gitoid.SHA1:
		return d.sha1Hex, d.haveSha1
	case gitoid.SHA256:
		return d.sha256Hex, d.haveSha256
	default:
		return "", false
	}
}

func (d *depRecord) setHexFor(algo gitoid.Algorithm, hex string) {
	switch algo {
	case gitoid.SHA1:
		d.sha1Hex, d.haveSha1 = hex, true
	case gitoid.SHA256:
		d.sha256Hex, d.haveSha256 = hex, true
	}
}

// depCache holds one depRecord per registered path, shared across the
// SHA-1 and SHA-256 manifest builds so a second pass over the same path
// reuses the hash the first pass already computed.
type depCache struct {
	byName map[string]*depRecord
	order  []*depRecord
}

func (c *depCache) recordFor(name string) *depRecord {
	if c.byName == nil {
		c.byName = make(map[string]*depRecord)
	}
	rec, ok := c.byName[name]
	if !ok {
		rec = &depRecord{name: name}
		c.byName[name] = rec
		c.order = append(c.order, rec)
	}
	return rec
}

// lookup returns the existing record for name without creating one, so a
// dependency whose open fails never leaves a hex-less record behind.
func (c *depCache) lookup(name string) (*depRecord, bool) {
	if c.byName == nil {
		return nil, false
	}
	rec, ok := c.byName[name]
	return rec, ok
}

// Reset tears down the cache, not the path registry it was built from.
func (c *depCache) Reset() {
	c.byName = nil
	c.order = nil
}

// Manifest is a built OmniBOR manifest for one algorithm: its serialized
// body and that body's own gitoid (the artifact identifier returned to
// the caller).
type Manifest struct {
	Algorithm gitoid.Algorithm
	Body      []byte
	Hex       string
}

// buildManifest implements spec.md §4.4: hash every registered path that
// opens successfully (skipping the rest), sort by this algorithm's hex,
// serialize with the note sidecar folded in, and self-hash the result.
//
// A path is only ever given a cache record once its hash is known; a
// failed open leaves no trace in the cache, so a later pass (or the
// other algorithm's pass) still tries it fresh.
func buildManifest(algo gitoid.Algorithm, paths []string, cache *depCache, notes *NoteSidecar, openFile func(string) (string, error)) *Manifest {
	for _, p := range paths {
		if rec, ok := cache.lookup(p); ok {
			if _, have := rec.hexFor(algo); have {
				continue
			}
		}
		hex, err := openFile(p)
		if err != nil {
			// Transient per-dependency I/O failure: skip silently.
			continue
		}
		cache.recordFor(p).setHexFor(algo, hex)
	}

	records := registeredRecords(cache, paths, algo)
	sortByHex(records, algo)

	var body strings.Builder
	fmt.Fprintf(&body, "gitoid:blob:%s\n", algo.Tag())
	for _, rec := range records {
		hex, _ := rec.hexFor(algo)
		line := fmt.Sprintf("blob %s", hex)
		if bomHex, ok := notes.Lookup(rec.name, algo); ok {
			line = fmt.Sprintf("%s bom %s", line, bomHex)
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}

	bodyBytes := []byte(body.String())
	return &Manifest{
		Algorithm: algo,
		Body:      bodyBytes,
		Hex:       gitoid.OfBytes(algo, bodyBytes),
	}
}

// registeredRecords returns the dep-record list in registry order,
// restricted to the given paths (the cache may hold records for paths
// not in this list) and to records that actually carry algo's hex (a path
// whose open failed for this algorithm has no record to include).
func registeredRecords(cache *depCache, paths []string, algo gitoid.Algorithm) []*depRecord {
	records := make([]*depRecord, 0, len(paths))
	for _, p := range paths {
		rec, ok := cache.byName[p]
		if !ok {
			continue
		}
		if _, have := rec.hexFor(algo); !have {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// sortByHex sorts records ascending by their hex gitoid for algo. Every
// record passed in is guaranteed by registeredRecords to already carry
// that hex.
func sortByHex(records []*depRecord, algo gitoid.Algorithm) {
	sort.SliceStable(records, func(i, j int) bool {
		hi, _ := records[i].hexFor(algo)
		hj, _ := records[j].hexFor(algo)
		return hi < hj
	})
}
