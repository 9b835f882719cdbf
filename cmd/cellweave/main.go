package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arcanetools/cellweave/internal/config"
	"github.com/arcanetools/cellweave/internal/repl"
	"github.com/arcanetools/cellweave/internal/session"
	"github.com/arcanetools/cellweave/internal/session/mysql"
	"github.com/arcanetools/cellweave/internal/session/sqlite"
	"github.com/arcanetools/cellweave/internal/sheet"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool

	configPath string
	logLevel   string
	logFile    string
	driver     string
	dsn        string
	sheetName  string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")

	flag.StringVar(&configPath, "config", config.DefaultPath(), "Path to the TOML configuration file")
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none (overrides config file)")
	flag.StringVar(&logFile, "log-file", "", "Log file path; empty logs to stderr (overrides config file)")
	flag.StringVar(&driver, "driver", "", "Session store driver: sqlite, mysql (overrides config file)")
	flag.StringVar(&dsn, "dsn", "", "Session store DSN (overrides config file)")
	flag.StringVar(&sheetName, "sheet", "default", "Name of the sheet to load/save in the session store")
}

func main() {
	flag.Parse()

	if version {
		fmt.Printf("cellweave version 'v%s' %s %s\n", Version, BuildDate, Commit)
		return
	}
	if help {
		printHelp()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v; using defaults\n", err)
		cfg = config.Default()
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if driver != "" {
		cfg.Session.Driver = driver
	}
	if dsn != "" {
		cfg.Session.DSN = dsn
	}

	logWriter := configureLogWriter(cfg.Log.File)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level: logLevelFromString(cfg.Log.Level),
	}))
	slog.SetDefault(defaultLogger)

	store, err := openStore(cfg.Session)
	if err != nil {
		slog.Warn("session store unavailable, save/load will be disabled", slog.Any("error", err))
		store = nil
	} else {
		defer store.Close()
	}

	s := sheet.NewSheet()
	repl.Start(os.Stdin, os.Stdout, s, store, sheetName)
}

func openStore(cfg config.SessionConfig) (session.Store, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.New(cfg.DSN)
	case "sqlite", "":
		return sqlite.New(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}

func configureLogWriter(path string) *os.File {
	if path == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for %q: %v; falling back to stderr\n", path, err)
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %q: %v; falling back to stderr\n", path, err)
		return os.Stderr
	}
	return f
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug", "trace":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return slog.LevelError + 4
	default:
		return slog.LevelError
	}
}

func printHelp() {
	fmt.Printf(`Usage: cellweave [options]

A reactive formula-sheet REPL. Cells hold small pure-functional
expressions that may push values into other cells' mailboxes.

Options:
  -config <path>     TOML configuration file (default %s)
  -driver <name>      Session store driver: sqlite, mysql
  -dsn <dsn>          Session store DSN
  -sheet <name>       Sheet name used by the 'save'/'load' commands
  -log-level <level>  trace|debug|info|warn|error|none
  -log-file <path>    Log file path (default stderr)
  -help               Display this help information and exit
  -version            Display version information and exit

Once running, type 'help' at the prompt for the REPL command language.

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, config.DefaultPath(), Version, BuildDate, Commit)
}
