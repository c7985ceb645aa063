// fedx explores mirrored FedRAMP documentation: full-text and control-ID
// search across baselines, standards, RFCs, and roadmap documents, plus
// KSI-to-baseline crosswalk analysis.
package main

import (
	"os"

	"github.com/fortetroy/fedramp-explorer/cmd/fedx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
