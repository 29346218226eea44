// Command score2dx analyzes beatmania IIDX score CSV exports.
package main

import (
	"os"

	"github.com/huangsam/score2dx/cmd"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/iocache"
	"github.com/huangsam/score2dx/internal/logging"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetBuildInfo(version, commit, date)
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseStores()
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Failed to stop profiling", profErr)
	}
	if err != nil {
		logging.Error().Err(err).Msg("score2dx failed")
		os.Exit(1)
	}
}
