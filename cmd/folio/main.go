// Command folio inspects and edits persisted document viewer state.
package main

import "github.com/mesh-intelligence/folio/internal/cli"

func main() {
	cli.Execute()
}
