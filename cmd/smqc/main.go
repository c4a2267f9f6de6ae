// Command smqc compiles semantic-model queries against a YAML
// manifest into SQL.
package main

import (
	"os"

	"github.com/rkddus222/smqc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
