// Command arc2ipa exports every Xcode archive (.xcarchive) found under an
// input directory into an installable .ipa package, one isolated output
// directory per archive, and reports which exports succeeded.
package main

import (
	"context"
	"os"
)

// version and commit are set at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:]))
}
