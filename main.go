package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rgabriel/mcp-gmail-attachments/attachment"
	"github.com/rgabriel/mcp-gmail-attachments/config"
	"github.com/rgabriel/mcp-gmail-attachments/tools"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("configuration error", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logger := newLogger(os.Stderr, cfg.LogLevel)

	if !cfg.Mailbox.HasCredentials() {
		logger.Warn("GMAIL_USERNAME or GMAIL_PASSWORD is not set, downloads will fail until both are provided")
	}

	fetcher := attachment.NewFetcher(logger)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	s := newServer(cfg, logger, fetcher)

	// Log startup
	logger.Info("server starting",
		"version", version,
		"username", cfg.Mailbox.Username,
		"imap_server", cfg.Mailbox.Server,
		"tool_timeout", cfg.ToolTimeout.String(),
	)

	// Start the stdio server with cancellable context
	stdioServer := server.NewStdioServer(s)
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newLogger builds the JSON logger for level (DEBUG, INFO, WARN or ERROR).
// Unknown levels fall back to INFO.
func newLogger(w io.Writer, level string) *slog.Logger {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelInfo)
	switch strings.ToUpper(level) {
	case "DEBUG":
		logLevel.Set(slog.LevelDebug)
	case "WARN":
		logLevel.Set(slog.LevelWarn)
	case "ERROR":
		logLevel.Set(slog.LevelError)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// newServer registers download_attachments_tool. Middleware is applied in
// reverse: logging wraps timeout wraps handler.
func newServer(cfg *config.Config, logger *slog.Logger, downloader tools.AttachmentDownloader) *server.MCPServer {
	s := server.NewMCPServer(
		"Gmail Attachment Server",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(timeoutMiddleware(cfg.ToolTimeout)),
		server.WithToolHandlerMiddleware(loggingMiddleware(logger)),
	)

	downloadTool := mcp.NewTool("download_attachments_tool",
		mcp.WithDescription("Download every attachment of a Gmail message to a local folder. The message is located in INBOX by its Gmail message ID (X-GM-MSGID, hexadecimal). Files are saved as <download_folder>/<message_id>_<filename>, overwriting existing files. Returns a JSON array of saved file paths, empty if the message was not found or has no attachments."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description("Gmail message ID as a hexadecimal string (e.g. '18c1f2a3b4c5d6e7'), as shown in the Gmail web URL."),
		),
		mcp.WithString("download_folder",
			mcp.Description("Folder to save attachments into. Created if missing."),
			mcp.DefaultString(attachment.DefaultDownloadFolder),
		),
	)
	s.AddTool(downloadTool, tools.DownloadAttachmentsHandler(downloader, cfg.Mailbox))

	return s
}

// timeoutMiddleware wraps each tool handler with a context deadline.
func timeoutMiddleware(timeout time.Duration) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, req)
		}
	}
}

// loggingMiddleware logs each tool call with a unique request ID, tool name, duration, and outcome.
func loggingMiddleware(base *slog.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			requestID := uuid.New().String()
			tool := req.Params.Name
			logger := base.With("request_id", requestID, "tool", tool)

			logger.Debug("tool call started")
			start := time.Now()

			result, err := next(ctx, req)
			duration := time.Since(start)

			if err != nil {
				logger.Error("tool call failed", "duration_ms", duration.Milliseconds(), "error", err)
			} else if result != nil && result.IsError {
				logger.Warn("tool call returned error", "duration_ms", duration.Milliseconds())
			} else {
				logger.Info("tool call completed", "duration_ms", duration.Milliseconds())
			}

			return result, err
		}
	}
}
