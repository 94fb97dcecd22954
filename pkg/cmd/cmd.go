// Package cmd is the bonzai command tree for the as-omnibor CLI, the
// stand-in assembler front-end used to exercise depgraph end to end.
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookgo/symwalk"
	"github.com/rwxrob/bonzai"
	"github.com/rwxrob/cmdbox/util"

	"github.com/vojkan99/gnu-as-omnibor/depgraph"
	"github.com/vojkan99/gnu-as-omnibor/gitoid"
)

// Cmd is the root of the as-omnibor command tree.
var Cmd = &bonzai.Cmd{
	Name:      `as-omnibor`,
	Summary:   `register dependencies and emit a make rule plus OmniBOR manifests`,
	Usage:     `[track|help] ...`,
	Version:   `v0.1.0`,
	Copyright: `Copyright 2024 gnu-as-omnibor contributors`,
	License:   `Apache-2`,
	Commands:  []*bonzai.Cmd{helpCmd, trackCmd},

	Description: `
		as-omnibor plays the role of the assembler front-end described in
		the OmniBOR dependency-tracking spec: it registers every file it
		is given as a dependency, then emits a GNU make dependency rule
		and SHA-1/SHA-256 OmniBOR manifests for the result. It exists to
		drive the depgraph package end to end, not to replace a real
		assembler's own -MF/--omnibor handling.`,

	Call: func(caller *bonzai.Cmd, args ...string) error {
		return printHelp()
	},
}

var helpCmd = &bonzai.Cmd{
	Name: "help",
	Call: func(_ *bonzai.Cmd, _ ...string) error { return printHelp() },
}

var trackCmd = &bonzai.Cmd{
	Name:  "track",
	Usage: `-o OUT -MF DEPFILE -bom-root ROOT [-note PATH:SHA1[:SHA256]]... FILE...`,
	Call:  trackCall,
}

// Options gathers the flags Run parses out of os.Args before handing the
// remaining file arguments to Track.
type Options struct {
	Target  string
	DepFile string
	BomRoot string
	Notes   []string
	Files   []string
	Algos   []string
}

func trackCall(_ *bonzai.Cmd, args ...string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	return Track(opts, log.Default())
}

// Run is the process entry point, mirroring the teacher's pkg/cmd.Run
// dispatch-by-first-argument shape.
func Run() error {
	if len(os.Args) < 2 {
		return printHelp()
	}
	switch os.Args[1] {
	case "track":
		opts, err := parseArgs(os.Args[2:])
		if err != nil {
			return err
		}
		return Track(opts, log.Default())
	case "help":
		return printHelp()
	default:
		return printHelp()
	}
}

func parseArgs(args []string) (*Options, error) {
	opts := &Options{Algos: []string{"sha1", "sha256"}}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			i++
			opts.Target = args[i]
		case "-MF":
			i++
			opts.DepFile = args[i]
		case "-bom-root":
			i++
			opts.BomRoot = args[i]
		case "-note":
			i++
			opts.Notes = append(opts.Notes, args[i])
		case "-algo":
			i++
			opts.Algos = strings.Split(args[i], ",")
		default:
			opts.Files = append(opts.Files, args[i])
		}
	}
	if opts.BomRoot == "" {
		opts.BomRoot = ".bom"
	}
	return opts, nil
}

// Track registers every file in opts.Files (walking directories with
// symwalk, as the teacher's addPathToGitbom/addPathToOmniBOR do),
// applies any -note sidecar entries, and writes the requested make rule
// and OmniBOR manifests.
func Track(opts *Options, logger *log.Logger) error {
	tr := &depgraph.DependencyTracker{Logger: logger}

	if opts.DepFile != "" {
		tr.StartDependencies(opts.DepFile)
	}
	tr.EnableOmnibor()

	for _, f := range opts.Files {
		if err := registerPath(tr, f); err != nil {
			return fmt.Errorf("as-omnibor: %s: %w", f, err)
		}
	}

	for _, n := range opts.Notes {
		path, sha1Hex, sha256Hex, err := parseNote(n)
		if err != nil {
			return err
		}
		tr.AddNoteSection(path, sha1Hex, sha256Hex)
	}

	if opts.DepFile != "" {
		target := opts.Target
		if target == "" {
			target = "a.out"
		}
		if err := tr.PrintDependencies(target); err != nil {
			logger.Printf("warning: writing dependency file: %v", err)
		}
	}

	for _, tag := range opts.Algos {
		hex, err := tr.WriteOmnibor(tag, opts.BomRoot)
		if err != nil {
			return err
		}
		if hex == "" {
			logger.Printf("warning: %s omnibor manifest was not written", tag)
			continue
		}
		fmt.Printf("%s %s\n", tag, hex)
	}

	return nil
}

func registerPath(tr *depgraph.DependencyTracker, root string) error {
	return symwalk.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return err
		}
		info, err = os.Stat(resolved)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			tr.RegisterDependency(resolved)
		}
		return nil
	})
}

// parseNote splits a -note flag value of the form PATH:SHA1[:SHA256]
// into the pieces AddNoteSection needs, rejecting a hex column whose
// width doesn't match its algorithm.
func parseNote(s string) (path string, sha1Hex, sha256Hex *string, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return "", nil, nil, fmt.Errorf("as-omnibor: malformed -note %q, want PATH:SHA1[:SHA256]", s)
	}
	path = parts[0]
	if parts[1] != "" {
		if err := checkHexLen(gitoid.SHA1, parts[1]); err != nil {
			return "", nil, nil, fmt.Errorf("as-omnibor: -note %q: %w", s, err)
		}
		v := parts[1]
		sha1Hex = &v
	}
	if len(parts) > 2 && parts[2] != "" {
		if err := checkHexLen(gitoid.SHA256, parts[2]); err != nil {
			return "", nil, nil, fmt.Errorf("as-omnibor: -note %q: %w", s, err)
		}
		v := parts[2]
		sha256Hex = &v
	}
	return path, sha1Hex, sha256Hex, nil
}

func checkHexLen(algo gitoid.Algorithm, hex string) error {
	if len(hex) != algo.HexLen() {
		return fmt.Errorf("%s hex must be %d characters, got %d", algo, algo.HexLen(), len(hex))
	}
	return nil
}

func printHelp() error {
	_, err := fmt.Println(util.Emph("**NAME**", 0, -1) + `
       as-omnibor (v0.1.0) - register dependencies and emit OmniBOR manifests

` + util.Emph("**USAGE**", 0, 0) + `
       as-omnibor track -o OUT -MF DEPFILE -bom-root ROOT FILE...
       as-omnibor track -note path/to/dep.o:<sha1hex>[:<sha256hex>] FILE...

       as-omnibor registers each FILE as a dependency, then writes a GNU
       make rule to DEPFILE (if -MF is given) and SHA-1/SHA-256 OmniBOR
       manifests under ROOT/objects/gitoid_blob_<algo>/..., printing each
       manifest's own gitoid.

` + util.Emph("**LEGAL**", 0, 0) + `
       as-omnibor (v0.1.0) Copyright 2024 gnu-as-omnibor contributors
       SPDX-License-Identifier: Apache-2.0`)
	return err
}
