package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/towerdash/internal/logging"
	"github.com/lox/towerdash/internal/report"
)

// Globals are shared by every command.
type Globals struct {
	EnvFile   kongdotenv.ENVFileConfig `name:"env-file" default:".env" help:"Load environment variables from this file."`
	LogLevel  string                   `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"LOG_LEVEL" help:"Log level."`
	LogFormat string                   `name:"log-format" default:"json" enum:"json,text" env:"LOG_FORMAT" help:"Log format."`
	Source    string                   `name:"source" env:"TOWERDASH_SOURCE" help:"Pipeline export: file path, http(s):// or ftp:// URL."`
	DB        string                   `name:"db" env:"TOWERDASH_DB" help:"SQLite database holding imported records."`
	Markers   string                   `name:"markers" env:"TOWERDASH_MARKERS" type:"existingfile" help:"YAML table of severity markers."`

	logger     *slog.Logger
	classifier *report.Classifier
}

func (g *Globals) AfterApply() error {
	logger, err := logging.New(g.LogLevel, g.LogFormat)
	if err != nil {
		return err
	}
	g.logger = logger
	slog.SetDefault(logger)

	g.classifier = report.DefaultClassifier
	if g.Markers != "" {
		c, err := report.LoadMarkers(g.Markers)
		if err != nil {
			return err
		}
		g.classifier = c
	}
	return nil
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Serve the dashboard, JSON API and PDF export."`
	Import  ImportCmd  `cmd:"" help:"Load the pipeline export into the database."`
	Export  ExportCmd  `cmd:"" help:"Write the filtered recommendations PDF."`
	Preview PreviewCmd `cmd:"" help:"Print the filtered recommendations to the terminal."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("towerdash"),
		kong.Description("Tower recommendations dashboard and report exporter."),
		kong.UsageOnError(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(&cli.Globals); err != nil {
		if cli.logger != nil {
			cli.logger.Error("command failed", "command", kctx.Command(), "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
