// Command heartctl inspects the model directory and manages stored
// assessments from the command line.
package main

import (
	"os"

	"github.com/Alias1177/HeartGuard/internal/logger"
)

func main() {
	logger.Setup(os.Getenv("LOG_LEVEL"), "console")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
