// Command tracker records student attendance and exam marks.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tracker/internal/config"
	"tracker/internal/database"
	"tracker/internal/handler"
	"tracker/internal/report"
	"tracker/internal/service"
	"tracker/internal/shell"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: tracker [command]

Commands:
  shell          interactive menu (default)
  serve          HTTP API
  report         print the attendance and performance report
  export [file]  write the CSV summary ("-" for stdout)
  help           show this message`)
}

// run executes one command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	command := "shell"
	if len(args) > 1 {
		command = args[1]
	}
	switch command {
	case "shell", "serve", "report", "export":
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	log := setupLogger(cfg, stderr)

	persister, err := database.NewPersister(cfg)
	if err != nil {
		log.Error("failed to open storage", "storage", cfg.Storage, "error", err)
		return 1
	}
	defer persister.Close()

	students, err := service.NewStudentService(persister, log)
	if err != nil {
		log.Error("failed to load students", "error", err)
		return 1
	}

	switch command {
	case "shell":
		err = shell.New(students, stdin, stdout, cfg.ExportFile).Run()
	case "serve":
		err = serve(cfg, students, log)
	case "report":
		report.WriteReport(stdout, report.Build(students.Snapshot()))
	case "export":
		path := cfg.ExportFile
		if len(args) > 2 {
			path = args[2]
		}
		if path == "-" {
			err = report.ExportSummary(stdout, students.Snapshot())
		} else if err = report.ExportFile(path, students.Snapshot()); err == nil {
			fmt.Fprintf(stdout, "Exported to %s\n", path)
		}
	}

	if err != nil {
		log.Error("command failed", "command", command, "error", err)
		return 1
	}
	return 0
}

func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	log := slog.New(h)
	slog.SetDefault(log)
	return log
}

func serve(cfg *config.Config, students *service.StudentService, log *slog.Logger) error {
	importer := service.NewImportService(students, log)
	uploads := handler.NewUploadHandler(importer, cfg.UploadDir, log)

	router := handler.NewRouter(
		handler.NewStudentHandler(students),
		handler.NewReportHandler(students),
		uploads,
		handler.NewProgressHandler(importer),
		cfg.AllowedOrigins,
	)
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", "addr", cfg.HTTPAddr, "students", students.Count())
		errCh <- server.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	uploads.Wait()
	log.Info("server stopped")
	return nil
}
