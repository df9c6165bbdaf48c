// Command phpls is a Language Server Protocol server for PHP completion.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
	"github.com/khongten001/intelephense/lsp"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "phpls",
		Version: version,
		Usage:   "PHP source analysis and completion server (stdio)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (default: walk up from cwd)",
			},
			&cli.IntFlag{
				Name:  "debounce-ms",
				Usage: "reparse debounce window in milliseconds (overrides config)",
			},
			&cli.IntFlag{
				Name:  "max-completions",
				Usage: "completion item cap (overrides config)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging",
			},
		},
		Action: serve,
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	logger, err := buildLogger(cmd.Bool("verbose"))
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if ms := cmd.Int("debounce-ms"); ms > 0 {
		cfg.ReparseDebounceMs = int(ms)
	}

	if n := cmd.Int("max-completions"); n > 0 {
		cfg.Completion.MaxItems = int(n)
	}

	logger.Info("starting phpls",
		zap.String("version", version),
		zap.Duration("debounce", cfg.DebounceWindow()),
		zap.Int("maxCompletions", cfg.MaxItems()))

	return run(ctx, logger, cfg, os.Stdin, os.Stdout)
}

// buildLogger logs to stderr; stdout carries the LSP stream.
func buildLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}

// loadConfig reads the named config file, or discovers one by walking up
// from the working directory. A missing config falls back to defaults.
func loadConfig(path string) (*intelephense.Config, error) {
	if path != "" {
		return intelephense.LoadConfigFile(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := intelephense.LoadConfig(cwd)
	if errors.Is(err, intelephense.ErrConfigNotFound) {
		return intelephense.DefaultConfig(), nil
	}

	return cfg, err
}

func run(ctx context.Context, logger *zap.Logger, cfg *intelephense.Config, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	client := protocol.ClientDispatcher(conn, logger)
	server := lsp.NewServer(client, logger, analysis.NewMemoryIndex(), cfg)

	conn.Go(ctx, protocol.ServerHandler(server, nil))

	<-conn.Done()

	return conn.Err()
}

// readWriteCloser joins stdin and stdout into one stream endpoint.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
