package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
	"desktimer/internal/i18n"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct {
	Raw bool `help:"Print the stored record as it is"`
}

func (cmd *StatusCmd) Run(globals *Global, root *CLI) error {
	settings, _ := loadSettings(root, globals.Logger)
	applyLanguage(root, settings)

	store, err := openStore(root)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	return printStatus(context.Background(), os.Stdout, store, time.Now(), cmd.Raw)
}

// printStatus describes the stored session without modifying it.
func printStatus(ctx context.Context, out io.Writer, store timekeeper.Store, now time.Time, raw bool) error {
	data, exists, err := store.Get(ctx, timekeeper.StateKey)
	if err != nil {
		return fmt.Errorf("read timer state: %w", err)
	}
	if !exists {
		fmt.Fprintln(out, "No timer state stored.")
		return nil
	}
	if raw {
		fmt.Fprintln(out, string(data))
		return nil
	}

	session, completion, err := timekeeper.DecodeSession(data, model.DefaultTimeKeeperConfig(), now)
	if err != nil {
		fmt.Fprintf(out, "Stored state is unreadable, defaults shown: %v\n", err)
	}
	view := session.View(now)

	state := "paused"
	if view.Running {
		state = "running"
	}
	fmt.Fprintf(out, "%s %s (%s)\n", i18n.ModeLabel(view.Mode), view.DisplayText, state)
	fmt.Fprintf(out, "Durations: focus %d, short %d, long %d min\n",
		session.Durations.Focus, session.Durations.Short, session.Durations.Long)
	if view.Running {
		fmt.Fprintf(out, "Ends at: %s\n", session.EndsAt.Local().Format(time.DateTime))
	}
	if completion != nil {
		fmt.Fprintf(out, "Finished at: %s\n", completion.EndsAt.Local().Format(time.DateTime))
	}

	handled, ok, err := timekeeper.NewCompletionGuard(store).LastHandled(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(out, "Last announced: %s\n", handled.Local().Format(time.DateTime))
	}
	return nil
}
