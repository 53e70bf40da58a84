// Package cli is the duelist command tree: the interactive TUI plus one-shot
// add/ls/done/rm commands over the same list.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/duelist/internal/config"
	"github.com/idilsaglam/duelist/internal/logger"
	"github.com/idilsaglam/duelist/internal/model"
	"github.com/idilsaglam/duelist/internal/notify"
	"github.com/idilsaglam/duelist/internal/store"
	"github.com/idilsaglam/duelist/internal/store/jsonstore"
	"github.com/idilsaglam/duelist/internal/store/sqlitestore"
	"github.com/idilsaglam/duelist/internal/todo"
	"github.com/idilsaglam/duelist/internal/tui"
	"github.com/idilsaglam/duelist/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const dbFile = "duelist.db"

// Options carry what the commands need from main.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Now        func() time.Time
	// RunTUI starts the interactive UI; defaults to tui.Run
	RunTUI func(*todo.List, tui.Options) error
}

// usageError marks errors that exit with ExitUsage. hint is printed below the message.
type usageError struct {
	err  error
	hint string
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error {
	return &usageError{err: fmt.Errorf(format, a...)}
}

// usageArgs turns cobra's argument validation failures into usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer, opts Options) int {
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	root := NewRoot(stdout, stderr, opts)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	ui.Fail(stderr, err.Error())

	var ue *usageError
	if errors.As(err, &ue) {
		if ue.hint != "" {
			ui.Hint(stderr, ue.hint)
		}
		return ExitUsage
	}
	logger.Error("command failed", err, zap.Strings("args", args))
	return ExitError
}

// NewRoot builds the command tree. Running it without a subcommand opens the TUI.
func NewRoot(stdout, stderr io.Writer, opts Options) *cobra.Command {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunTUI == nil {
		opts.RunTUI = tui.Run
	}

	var modes todo.Modes
	root := &cobra.Command{
		Use:   "duelist",
		Short: "A todo list with deadlines",
		Long: "duelist keeps a todo list where items may carry a due time.\n" +
			"Items are ordered by due time, with live countdowns in the interactive view.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts, modes)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.PersistentFlags().BoolVar(&modes.GroupDone, "group", opts.Config.UI.GroupDone, "keep done items at the bottom")
	root.PersistentFlags().BoolVar(&modes.HideDone, "hide-done", opts.Config.UI.HideDone, "hide done items")

	root.AddCommand(
		newTUICmd(opts, &modes),
		newAddCmd(stdout, opts),
		newListCmd(stdout, opts, &modes),
		newToggleCmd(stdout, opts, &modes),
		newRemoveCmd(stdout, opts, &modes),
		newInitCmd(stdout, opts),
	)
	return root
}

func newTUICmd(opts Options, modes *todo.Modes) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list (default)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts, *modes)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runTUI(opts Options, modes todo.Modes) error {
	return withList(opts.Config, modes, func(l *todo.List) error {
		return opts.RunTUI(l, tui.Options{
			RefreshInterval: opts.Config.UI.RefreshInterval,
			Notifier:        notify.New(opts.Config.Notify.Enabled),
			Now:             opts.Now,
		})
	})
}

func newAddCmd(stdout io.Writer, opts Options) *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add an item",
		Example: `  duelist add "Buy milk"
  duelist add Submit report --due "2026-11-02 17:00"
  duelist add Stretch --due +90m`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return usagef("add: empty text")
			}
			normalized, err := model.NormalizeDue(due, opts.Now())
			if err != nil {
				return &usageError{
					err:  fmt.Errorf("add: %w", err),
					hint: "Hint: use 2006-01-02 15:04, 2006-01-02T15:04 or an offset like +2h, +3d",
				}
			}
			return withList(opts.Config, todo.Modes{}, func(l *todo.List) error {
				if err := l.Add(text, normalized); err != nil {
					return err
				}
				logger.Info("added item", zap.String("text", text), zap.String("due", normalized))
				msg := "added"
				if t, ok := model.ParseDue(normalized); ok {
					msg += " (due " + t.Format(model.DisplayLayout) + ")"
				}
				ui.OK(stdout, msg)
				return nil
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVar(&due, "due", "", "due time: 2006-01-02 15:04, RFC 3339, or +90m / +2h / +3d")
	return cmd
}

func newListCmd(stdout io.Writer, opts Options, modes *todo.Modes) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items in due order",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withList(opts.Config, *modes, func(l *todo.List) error {
				lines := ui.ListLines(l.Render(opts.Now()))
				lines = append(lines, ui.Current().Muted.Render("Tip: add with `duelist add \"Buy milk\" --due +2h`"))
				fmt.Fprintln(stdout, ui.Panel(lines))
				return nil
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newToggleCmd(stdout io.Writer, opts Options, modes *todo.Modes) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle done for the item at a 1-based index as shown by ls",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return atIndex(opts, *modes, "done", args[0], func(l *todo.List, i int) error {
				if err := l.ToggleDone(i); err != nil {
					return err
				}
				ui.OK(stdout, "toggled")
				return nil
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func newRemoveCmd(stdout io.Writer, opts Options, modes *todo.Modes) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the item at a 1-based index as shown by ls",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return atIndex(opts, *modes, "rm", args[0], func(l *todo.List, i int) error {
				if err := l.Delete(i); err != nil {
					return err
				}
				ui.OK(stdout, "removed")
				return nil
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// atIndex sorts the list the way ls shows it, then applies fn to the 0-based index.
func atIndex(opts Options, modes todo.Modes, action, arg string, fn func(*todo.List, int) error) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return usagef("%s: not a number: %s", action, arg)
	}
	return withList(opts.Config, modes, func(l *todo.List) error {
		l.Sort()
		if n < 1 || n > l.Len() {
			return &usageError{
				err:  fmt.Errorf("index out of range: have %d, got %d", l.Len(), n),
				hint: "Hint: run `duelist ls` to see valid indexes",
			}
		}
		err := fn(l, n-1)
		if errors.Is(err, todo.ErrNoSuchItem) {
			return &usageError{err: err}
		}
		return err
	})
}

func newInitCmd(stdout io.Writer, opts Options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented config file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.ConfigPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.WriteTemplate(path, force); err != nil {
				if errors.Is(err, config.ErrExists) {
					return &usageError{err: err, hint: "Hint: pass --force to overwrite it"}
				}
				return err
			}
			ui.OK(stdout, "wrote "+path)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

// withList opens the configured store, loads the list and closes the store after fn.
func withList(cfg *config.Config, modes todo.Modes, fn func(*todo.List) error) (err error) {
	kv, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := kv.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	l := todo.Open(kv, todo.WithGroupDone(modes.GroupDone), todo.WithHideDone(modes.HideDone))
	return fn(l)
}

// OpenStore returns the KV backend selected by cfg.Storage.
func OpenStore(cfg *config.Config) (store.KV, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		return store.NewMemory(), nil
	}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	switch cfg.Storage.Driver {
	case config.DriverJSON:
		s, err := jsonstore.Open(dir)
		if err != nil {
			return nil, err
		}
		logger.Info("opened store", zap.String("driver", cfg.Storage.Driver), zap.String("file", s.Path(todo.StorageKey)))
		return s, nil
	case config.DriverSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
		path := filepath.Join(dir, dbFile)
		s, err := sqlitestore.Open(path)
		if err != nil {
			return nil, err
		}
		logger.Info("opened store", zap.String("driver", cfg.Storage.Driver), zap.String("file", path))
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
