// Command web runs the prediction dashboard backend: it ingests uploaded
// price datasets, derives chart-ready views and point estimates, and
// serves them over HTTP.
package main

import (
	"log/slog"
	"os"

	"btcoracle/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
