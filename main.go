// main holds the entry logic for the eegstudy CLI.
package main

import (
	"github.com/huangsam/eegstudy/cmd"
	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/internal/iocache"
)

// main is the entry point for the eegstudy CLI.
func main() {
	cmd.SetHistoryManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
