// Command predeploy prints the production readiness checklist for a built
// site directory.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/readiness"
)

func main() {
	root := flag.String("dir", ".", "site directory to inspect")
	host := flag.String("api-host", readiness.DefaultProductionHost, "production order service host expected in js/main.js")
	strict := flag.Bool("strict", false, "exit non-zero when a check fails")
	flag.Parse()

	report, err := readiness.Run(*root, readiness.Options{ProductionHost: *host})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	report.Print(os.Stdout)

	if *strict && !report.AllPassed() {
		os.Exit(1)
	}
}
