// Package store places OmniBOR manifests into a content-addressed object
// store rooted at a caller-supplied directory:
//
//	<root>/objects/gitoid_blob_<algo>/<hex[:2]>/<hex[2:]>
//
// Directories are created with mode 0700 as needed; an existing file at
// the target path is overwritten. Any failure along the way aborts the
// placement, closes every directory handle opened so far, and leaves
// whatever directories were already created in place.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vojkan99/gnu-as-omnibor/gitoid"
)

// objectMode is the permission mode for every directory and file this
// package creates under the store root.
const objectMode = 0o700

// Writer places manifest bodies under Root using the gitoid content
// address layout.
type Writer struct {
	Root string
}

// Place writes body to <Root>/objects/gitoid_blob_<algo>/<hexID[:2]>/<hexID[2:]>
// and returns the path written. On failure it returns ("", err); the
// registry and note sidecar that produced body are untouched by a failed
// placement.
func (w *Writer) Place(algo gitoid.Algorithm, hexID string, body []byte) (string, error) {
	if len(hexID) < 3 {
		return "", fmt.Errorf("store: gitoid %q too short to place", hexID)
	}

	handles, err := openAllDirectories(w.Root)
	if err != nil {
		closeAll(handles)
		return "", fmt.Errorf("store: create root %s: %w", w.Root, err)
	}
	defer closeAll(handles)

	objectsDir := filepath.Join(w.Root, "objects")
	if err := mkdirIfMissing(objectsDir); err != nil {
		return "", fmt.Errorf("store: create %s: %w", objectsDir, err)
	}

	algoDir := filepath.Join(objectsDir, "gitoid_blob_"+algo.Tag())
	if err := mkdirIfMissing(algoDir); err != nil {
		return "", fmt.Errorf("store: create %s: %w", algoDir, err)
	}

	prefixDir := filepath.Join(algoDir, hexID[:2])
	if err := mkdirIfMissing(prefixDir); err != nil {
		return "", fmt.Errorf("store: create %s: %w", prefixDir, err)
	}

	target := filepath.Join(prefixDir, hexID[2:])
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, objectMode)
	if err != nil {
		return "", fmt.Errorf("store: open %s: %w", target, err)
	}
	defer f.Close()

	if _, err := f.Write(body); err != nil {
		return "", fmt.Errorf("store: write %s: %w", target, err)
	}

	return target, nil
}

func mkdirIfMissing(dir string) error {
	if err := os.Mkdir(dir, objectMode); err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}

// openAllDirectories walks root component by component from left to
// right, creating each missing directory with mode 0700 and opening a
// handle to it. Runs of consecutive separators collapse to one. The
// caller is responsible for closing the returned handles.
func openAllDirectories(root string) ([]*os.File, error) {
	root = filepath.Clean(root)
	if root == "." || root == "" {
		return nil, fmt.Errorf("store: empty result root")
	}

	var handles []*os.File
	var built strings.Builder
	if filepath.IsAbs(root) {
		built.WriteByte(os.PathSeparator)
	}

	components := strings.Split(root, string(os.PathSeparator))
	for _, c := range components {
		if c == "" {
			continue
		}
		if built.Len() > 0 && built.String()[built.Len()-1] != os.PathSeparator {
			built.WriteByte(os.PathSeparator)
		}
		built.WriteString(c)

		path := built.String()
		if err := mkdirUnderParent(path); err != nil {
			return handles, err
		}

		h, err := os.Open(path)
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}

	return handles, nil
}

func closeAll(handles []*os.File) {
	for _, h := range handles {
		h.Close()
	}
}
