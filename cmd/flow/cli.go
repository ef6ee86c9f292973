package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/logging"
	"github.com/hpungsan/flow/internal/ops"
	"github.com/hpungsan/flow/internal/web"
)

// maxStdinBytes caps task text read from a pipe.
const maxStdinBytes = 64 * 1024

// stdout is where command results go. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, parser *ops.Parser, logger *charmlog.Logger) *cli.App {
	app := &cli.App{
		Name:    "flow",
		Usage:   "Natural-language task capture",
		Version: Version,
		Commands: []*cli.Command{
			parseCmd(parser, logger),
			addCmd(db, parser, logger),
			fetchCmd(db, logger),
			listCmd(db, logger),
			doneCmd(db, parser, logger),
			deleteCmd(db, logger),
			purgeCmd(db, logger),
			exportCmd(db, cfg, logger),
			importCmd(db, cfg, logger),
			serveCmd(db, cfg, parser, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// opContext returns the command context carrying logger for the ops layer.
func opContext(c *cli.Context, logger *charmlog.Logger) context.Context {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logger)
}

// taskText joins positional arguments, or reads piped stdin when there are none.
func taskText(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if stdinHasData() {
		return readStdin(maxStdinBytes)
	}
	return "", nil
}

// parseCmd creates the parse command.
func parseCmd(parser *ops.Parser, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Preview how text would be parsed (nothing is stored)",
		ArgsUsage: "<text...>",
		Action: func(c *cli.Context) error {
			text, err := taskText(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Parse(opContext(c, logger), parser, ops.ParseInput{Text: text})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// addCmd creates the add command.
func addCmd(db *sql.DB, parser *ops.Parser, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Parse text and store it as a task (reads stdin when no text is given)",
		ArgsUsage: "<text...>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Markdown notes"},
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Store even when confidence is below min_confidence"},
		},
		Action: func(c *cli.Context) error {
			text, err := taskText(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.AddInput{
				Text:  text,
				Force: c.Bool("force"),
			}
			if desc := c.String("description"); desc != "" {
				input.Description = &desc
			}

			output, err := ops.Add(opContext(c, logger), db, parser, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a task by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted tasks"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(opContext(c, logger), db, ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List tasks, most recently updated first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Value: "all", Usage: "open|done|all"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Filter by tag"},
			&cli.StringFlag{Name: "context", Aliases: []string{"c"}, Usage: "Filter by @context"},
			&cli.StringFlag{Name: "date", Usage: "Filter by scheduled date (YYYY-MM-DD)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted tasks"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(opContext(c, logger), db, ops.ListInput{
				Status:         c.String("status"),
				Tag:            c.String("tag"),
				Context:        c.String("context"),
				Date:           c.String("date"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// doneCmd creates the done command.
func doneCmd(db *sql.DB, parser *ops.Parser, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark a task complete (recurring tasks get their next occurrence)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Complete(opContext(c, logger), db, parser, ops.CompleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a task",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(opContext(c, logger), db, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(opContext(c, logger), db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export tasks to a JSONL or YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.flow/exports/tasks-<timestamp>.<format>)"},
			&cli.StringFlag{Name: "format", Usage: "jsonl|yaml (default: from path extension, else jsonl)"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted tasks"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(opContext(c, logger), db, cfg, ops.ExportInput{
				Path:           c.String("path"),
				Format:         c.String("format"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import tasks from a JSONL or YAML export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|rename"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(opContext(c, logger), db, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, parser *ops.Parser, logger *charmlog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON task API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8787, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port must be 1-65535, got %d", port)))
			}

			srv := web.NewServer(db, cfg, parser, logger, c.String("bind"), port)
			if err := web.Run(opContext(c, logger), srv, logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var fErr *errors.FlowError
	if stderrors.As(err, &fErr) {
		if fErr.Code == errors.ErrInternal {
			if cause, ok := fErr.Details["internal_error"]; ok {
				return cli.Exit(fmt.Sprintf("[%s] %s: %v", fErr.Code, fErr.Message, cause), 1)
			}
		}
		return cli.Exit(fmt.Sprintf("[%s] %s", fErr.Code, fErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from stdin.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", limit))
	}
	return strings.TrimSpace(string(data)), nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
