package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/app"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/config"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/gcp"
)

const entryPoint = "HandleDocumentAPI"

var (
	application *app.App
	once        sync.Once
	initErr     error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP(entryPoint, handleDocumentAPI)
}

// main runs the function locally. Cloud Functions supplies its own entry point.
func main() {
	if os.Getenv("FUNCTION_TARGET") == "" {
		os.Setenv("FUNCTION_TARGET", entryPoint)
	}
	port := gcp.GetEnv("PORT", "8080")
	slog.Info("Starting local server.", "port", port)
	if err := funcframework.Start(port); err != nil {
		slog.Error("funcframework.Start failed", "error", err)
		os.Exit(1)
	}
}

// handleDocumentAPI serves the whole REST API through the gin router.
func handleDocumentAPI(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}
		application, initErr = app.New(context.Background(), cfg)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	application.Router.ServeHTTP(w, r)
}
