// main is the entry point for the afterglow CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pulsegrid/afterglow/cmd"
	"github.com/pulsegrid/afterglow/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()

	// Close stores and flush profiles before deciding the exit code, since
	// os.Exit skips deferred calls.
	iocache.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil && err == nil {
		err = perr
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
