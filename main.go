// Package main is the entry point for the lingoreel application.
package main

import (
	"github.com/lingoreel-cli/lingoreel/cmd"
	"github.com/lingoreel-cli/lingoreel/config"
	"github.com/lingoreel-cli/lingoreel/internal/cache"
	"github.com/lingoreel-cli/lingoreel/internal/sync"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Initialize asynchronous background processes for cache maintenance and
	// replay of queued progress updates.
	cache.CollectGarbage()
	sync.ReconcileFailures(lesson.NewHTTPContentService())

	cmd.Execute()
}
