package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/coursegrab"
	"github.com/fwojciec/coursegrab/rod"
	cgslog "github.com/fwojciec/coursegrab/slog"
	"github.com/fwojciec/coursegrab/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := loadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnv loads variables from the given files. Missing files are ignored;
// variables already set in the environment win.
func loadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database backing the run ledger.
	DB *sqlite.DB

	// Browser connection, opened for commands that need it.
	BrowserManager *rod.BrowserManager
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.BrowserManager != nil {
		errs = append(errs, m.BrowserManager.Close())
	}
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("coursegrab"),
		kong.Description("Collect course files from a Canvas LMS into per-course zip archives."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'coursegrab --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	deps.Config = &cli.Globals

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Ring = cgslog.NewRingBuffer(cgslog.DefaultRingSize)
	deps.Events = cgslog.Tee{cgslog.NewEventLogger(deps.Logger), deps.Ring}

	dbPath := m.DBPath
	if cli.DB != "" {
		dbPath = cli.DB
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set COURSEGRAB_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()
	deps.Runs = sqlite.NewRunService(m.DB)

	if needsBrowser(kongCtx.Command()) {
		opts := []rod.ManagerOption{rod.WithHeadless(cli.Headless)}
		if cli.ControlURL != "" {
			opts = append(opts, rod.WithControlURL(cli.ControlURL))
		}
		if cli.UserDataDir != "" {
			opts = append(opts, rod.WithUserDataDir(cli.UserDataDir))
		}
		bm, err := rod.NewBrowserManager(opts...)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --control-url to attach to a running browser")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		m.BrowserManager = bm
		deps.Browser = cgslog.NewLoggingBrowser(bm, deps.Logger)
		deps.Cookies = bm
	}

	err = kongCtx.Run(deps)
	if err != nil && coursegrab.ErrorCode(err) != coursegrab.EINTERNAL {
		return errors.New(coursegrab.ErrorMessage(err))
	}
	return err
}

func needsBrowser(command string) bool {
	switch command {
	case "history":
		return false
	default:
		return true
	}
}

func defaultDBPath() string {
	if path := os.Getenv("COURSEGRAB_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "coursegrab.db"
	}
	return filepath.Join(home, ".coursegrab", "coursegrab.db")
}
