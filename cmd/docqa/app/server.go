// Package app provides the DocQA server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kart-io/docqa/cmd/docqa/app/options"
	"github.com/kart-io/docqa/pkg/infra/app"
)

const (
	// Name is the name of the application.
	Name = "docqa-server"

	// commandDesc is the description of the command.
	commandDesc = `DocQA Server

A document question answering service over uploaded PDF documents.

This server provides:
  - PDF upload with text extraction and recursive chunking
  - Vector indexing backed by Milvus
  - Semantic similarity search
  - RAG-based question answering with LLM
  - Support for multiple LLM providers (Ollama, OpenAI)`
)

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	application := app.NewApp(
		app.WithName(Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)

	return application
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		defer func() { _ = app.Flush() }()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
