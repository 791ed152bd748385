// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// splitCommand reads one spreadsheet and writes the category files.
func splitCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "split",
		Aliases:   []string{"extract"},
		Usage:     "Classify a roster spreadsheet and write faculty.csv, student.csv and other.csv",
		ArgsUsage: "<file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (overrides output.directory)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Input format: xlsx or csv (default: detect from content)",
			},
			&cli.StringFlag{
				Name:  "encoding",
				Usage: "Legacy 8-bit encoding of name cells (overrides input.encoding)",
			},
			&cli.BoolFlag{
				Name:  "skip-header",
				Usage: "Treat the first row as a header and skip it",
			},
			&cli.BoolFlag{
				Name:  "lenient",
				Usage: "Send rows with an absent or numeric role to other instead of failing",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record exports in the database",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Split,
	}
}

// serveCommand starts the upload server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve POST /extract for spreadsheet uploads",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (overrides output.directory)",
			},
		},
		Action: r.Serve,
	}
}

// historyCommand lists recorded exports.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent exports recorded in the database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of exports to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "batch",
				Usage: "Only show exports of one split",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show exports with this status (committed or failed)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write the example configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}
