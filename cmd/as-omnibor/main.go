// Command as-omnibor drives the depgraph dependency tracker the way an
// assembler's front end would: register every input file, then emit a
// make dependency rule and OmniBOR manifests for the result.
package main

import (
	"log"

	"github.com/vojkan99/gnu-as-omnibor/pkg/cmd"
)

func main() {
	log.SetFlags(log.Flags() | log.Lshortfile)
	if err := cmd.Run(); err != nil {
		log.Fatalln(err)
	}
}
