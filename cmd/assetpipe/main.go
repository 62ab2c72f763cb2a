// assetpipe runs filter configurations over serialized asset files.
package main

import (
	"os"

	"github.com/hupe1980/assetpipe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
