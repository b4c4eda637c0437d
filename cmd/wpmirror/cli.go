package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/wpmirror"
	"github.com/fwojciec/wpmirror/archive"
	"github.com/fwojciec/wpmirror/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	DB       *sqlite.DB
	Contents wpmirror.ContentService
	Sessions wpmirror.SessionService
	Archiver *archive.Archiver
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Archive  ArchiveCmd  `cmd:"" help:"Mirror a WordPress site into the local store"`
	Stats    StatsCmd    `cmd:"" help:"Show stored item counts per content type"`
	Versions VersionsCmd `cmd:"" help:"Show the stored version history of an item"`
	Sessions SessionsCmd `cmd:"" help:"List recent archive sessions"`
	Serve    ServeCmd    `cmd:"" help:"Serve the JSON browse API"`
}

// ArchiveCmd is the "archive" subcommand.
type ArchiveCmd struct {
	Domain    string   `arg:"" help:"WordPress site domain, e.g. example.com"`
	Types     []string `short:"t" name:"type" help:"Content types to mirror (repeatable; default all)"`
	Limit     int      `short:"l" help:"Maximum items per content type"`
	AfterDate string   `name:"after-date" help:"Only mirror items published after this date (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)"`
	RateLimit float64  `name:"rate-limit" default:"5" help:"Maximum requests per second against the remote site"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// VersionsCmd is the "versions" subcommand.
type VersionsCmd struct {
	Type string `arg:"" help:"Content type"`
	ID   int64  `arg:"" help:"Remote item ID"`
}

// SessionsCmd is the "sessions" subcommand.
type SessionsCmd struct {
	Limit int `default:"10" help:"Number of sessions to show"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" help:"Listen address"`
}
