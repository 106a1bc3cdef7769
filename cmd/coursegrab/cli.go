package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/coursegrab"
	cgslog "github.com/fwojciec/coursegrab/slog"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *Globals

	Logger *slog.Logger
	Events coursegrab.EventSink
	Ring   *cgslog.RingBuffer

	Runs    coursegrab.RunService
	Browser coursegrab.Browser
	Cookies coursegrab.CookieSource

	// Fetcher replaces the HTTP fetch boundary when set.
	Fetcher coursegrab.FileFetcher
}

// Globals are flags shared by every command.
type Globals struct {
	BaseURL     string `name:"base-url" env:"COURSEGRAB_BASE_URL" help:"LMS origin, e.g. https://school.instructure.com (default: origin of the active tab)"`
	ControlURL  string `name:"control-url" env:"COURSEGRAB_CONTROL_URL" help:"DevTools endpoint of a running browser to attach to"`
	UserDataDir string `name:"user-data-dir" env:"COURSEGRAB_PROFILE" help:"Profile directory for a launched browser"`
	Headless    bool   `help:"Launch the browser without a window"`
	Out         string `short:"o" env:"COURSEGRAB_OUT" default:"." help:"Directory receiving the archives"`
	DB          string `name:"db" env:"COURSEGRAB_DB" help:"Run ledger database path"`
	Verbose     bool   `short:"v" help:"Log every navigation and download"`
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Globals

	Run      RunCmd      `cmd:"" help:"Crawl courses and archive their files"`
	Discover DiscoverCmd `cmd:"" help:"List the courses visible in the active tab"`
	Zip      ZipCmd      `cmd:"" help:"Archive a previously saved dataset"`
	History  HistoryCmd  `cmd:"" help:"Show past runs and archived files"`
}

// FetchFlags configure the file download boundary.
type FetchFlags struct {
	FetchTimeout time.Duration `default:"60s" help:"Timeout for a single file download"`
	FetchRPS     float64       `name:"fetch-rps" default:"2" help:"Downloads per second per host (0 = unlimited)"`
	MaxTransfer  int           `default:"15000000" help:"Largest accepted encoded payload, in characters"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	FetchFlags

	StartURL   string        `help:"Page to open before discovering courses (default {base-url}/courses)"`
	PageTypes  []string      `default:"modules,files" help:"Course pages to scan, in order"`
	NavTimeout time.Duration `default:"30s" help:"Navigation timeout per page"`
	Settle     time.Duration `default:"2s" help:"Delay after load before reading a page"`
	NavRPS     float64       `name:"nav-rps" default:"0" help:"Page navigations per second (0 = unlimited)"`
	Courses    string        `type:"existingfile" help:"JSON runScript message with the courses to crawl"`
	Dataset    string        `help:"Also write the collected dataset to this JSON file"`
	NoArchive  bool          `help:"Skip downloading; only collect the dataset"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	Output string `help:"Write the runScript message to this file instead of stdout"`
}

// ZipCmd is the "zip" subcommand.
type ZipCmd struct {
	FetchFlags

	Dataset string `arg:"" type:"existingfile" help:"JSON zipAndDownload message"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Limit int    `short:"n" default:"10" help:"Number of runs to show"`
	ID    string `name:"run" help:"Show the files archived by this run"`
}
