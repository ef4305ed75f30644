package main

import (
	"os"

	"github.com/KarpovAlexandrGo/task-tracker/internal/cmd"
	"github.com/KarpovAlexandrGo/task-tracker/pkg/logger"
)

// @title           Task Service API
// @version         1.0
// @description     Task tracking service: create, read, update, delete and filter tasks.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Log.WithError(err).Error("task-service failed")
		os.Exit(1)
	}
}
