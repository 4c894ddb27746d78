// Command wikiassist indexes wiki pages into a vector store and drafts
// reports with a chat completion model.
package main

import (
	"os"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServiceBuilder(buildServices)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
