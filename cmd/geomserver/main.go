// Command geomserver serves the geometric scripting language described by
// the engine/graph/server packages over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/kotfind/geomserver/cmd/geomserver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
