package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

const (
	appName = "DeskTimer"
	appID   = "com.desktimer.app"
)

// Process roles, each holding its own single-instance lock.
const (
	roleWindow  = "window"
	roleWatcher = "watcher"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
}

// CLI defines global flags and commands.
type CLI struct {
	DataDir string `name:"data-dir" help:"Directory holding state.db and settings.yaml" env:"DESKTIMER_DATA_DIR" type:"path"`
	Lang    string `help:"Force the UI language (en, pt, es, ru)" env:"DESKTIMER_LANG"`
	Verbose bool   `short:"v" help:"Enable verbose logging" env:"DESKTIMER_VERBOSE"`

	Run     RunCmd     `cmd:"" default:"1" help:"Open the timer window and tray icon"`
	Watch   WatchCmd   `cmd:"" help:"Announce finished sessions while no window is open"`
	Status  StatusCmd  `cmd:"" help:"Print the persisted timer state"`
	Presets PresetsCmd `cmd:"" help:"List duration presets"`
}

// AfterApply runs after flag parsing; setup logging once.
func (cli *CLI) AfterApply() error {
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("desktimer"),
		kong.Description("Countdown timer with focus and break modes."),
		kong.UsageOnError(),
	)
	err := kctx.Run(&Global{Logger: slog.Default()})
	kctx.FatalIfErrorf(err)
}
