package depgraph

import "github.com/vojkan99/gnu-as-omnibor/gitoid"

// noteRecord is a pre-existing OmniBOR identifier the ELF-note reader
// collaborator supplies for a dependency that was already built.
type noteRecord struct {
	name       string
	sha1Hex    string
	haveSha1   bool
	sha256Hex  string
	haveSha256 bool
}

// NoteSidecar holds note-section records supplied out of band (by the
// ELF-note reader) and keyed by exact byte-for-byte path, deliberately
// not the platform-aware comparison PathRegistry uses: a note is only
// ever looked up with the same literal path string the manifest builder
// already has in hand from the registry, so the mismatch the spec warns
// about in practice never surfaces here. See DESIGN.md.
type NoteSidecar struct {
	records []noteRecord
}

// Add records a pre-existing OmniBOR id for path. Either hash may be nil
// if that algorithm's id is not known. Duplicates are allowed; Lookup
// returns the first match.
func (n *NoteSidecar) Add(path string, sha1Hex, sha256Hex *string) {
	rec := noteRecord{name: path}
	if sha1Hex != nil {
		rec.sha1Hex = *sha1Hex
		rec.haveSha1 = true
	}
	if sha256Hex != nil {
		rec.sha256Hex = *sha256Hex
		rec.haveSha256 = true
	}
	n.records = append(n.records, rec)
}

// Lookup returns the hex id for path under algo from the first record
// whose name matches path. If that record exists but lacks algo's hash,
// Lookup reports not-found rather than falling through to a later
// duplicate, matching "lookups return the first insert".
func (n *NoteSidecar) Lookup(path string, algo gitoid.Algorithm) (string, bool) {
	for _, rec := range n.records {
		if rec.name != path {
			continue
		}
		switch algo {
		case gitoid.SHA1:
			return rec.sha1Hex, rec.haveSha1
		case gitoid.SHA256:
			return rec.sha256Hex, rec.haveSha256
		}
		return "", false
	}
	return "", false
}

// Clear tears down the note store.
func (n *NoteSidecar) Clear() {
	n.records = nil
}
