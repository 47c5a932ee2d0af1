package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"longdoc-trainer/internal/bootstrap"
	"longdoc-trainer/internal/cli"
	"longdoc-trainer/internal/launch"
)

func main() {
	// Optional .env next to the working directory; absence is fine.
	_ = godotenv.Load()

	app, err := bootstrap.New()
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := cli.NewRootCommand(app).Execute(); err != nil {
		var engineErr *launch.EngineError
		if errors.As(err, &engineErr) {
			// The engine already reported its own failure on stderr;
			// forward the exit code unchanged.
			os.Exit(engineErr.ExitCode)
		}

		fmt.Fprintln(os.Stderr, "longdoc-trainer:", err)
		os.Exit(1)
	}
}
