// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "env",
			Usage: "Path to .env file with SPOTIFY_* overrides",
			Value: ".env",
		},
	}
}

func withConfig(flags ...cli.Flag) []cli.Flag {
	return append(configFlags(), flags...)
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify (PKCE) and show the current user",
				Flags:  configFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show configuration and whether a token is cached in this process",
				Flags:  configFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// searchCommand searches the Spotify catalog for tracks
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Search Spotify for tracks",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "term"},
		},
		Flags: withConfig(
			&cli.StringFlag{
				Name:    "add",
				Aliases: []string{"a"},
				Usage:   "Add results to the active playlist by position (e.g. 1,3)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		),
		Action: r.Search,
	}
}

// playlistCommand manages the local playlist drafts and saves them to Spotify
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Build playlists locally and save them to Spotify",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the active playlist",
				Flags: withConfig(
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				),
				Action: r.PlaylistShow,
			},
			{
				Name:  "new",
				Usage: "Start a new playlist and make it active",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  configFlags(),
				Action: r.PlaylistNew,
			},
			{
				Name:  "list",
				Usage: "List saved drafts",
				Flags: withConfig(
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of drafts to list", Value: 20},
				),
				Action: r.PlaylistList,
			},
			{
				Name:  "use",
				Usage: "Make a draft the active playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  configFlags(),
				Action: r.PlaylistUse,
			},
			{
				Name:  "rename",
				Usage: "Rename the active playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  configFlags(),
				Action: r.PlaylistRename,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from the active playlist by track ID",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "track-id"},
				},
				Flags:  configFlags(),
				Action: r.PlaylistRemove,
			},
			{
				Name:   "clear",
				Usage:  "Reset the active playlist to an empty \"New Playlist\"",
				Flags:  configFlags(),
				Action: r.PlaylistClear,
			},
			{
				Name:   "save",
				Usage:  "Save the active playlist to your Spotify account",
				Flags:  configFlags(),
				Action: r.PlaylistSave,
			},
			{
				Name:  "export",
				Usage: "Export the active playlist (or all drafts) to a file",
				Flags: withConfig(
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file or directory (\"-\" for stdout)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every draft into the output directory",
					},
				),
				Action: r.PlaylistExport,
			},
			{
				Name:  "history",
				Usage: "List previous save attempts",
				Flags: withConfig(
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of records", Value: 20},
					&cli.BoolFlag{Name: "partial", Usage: "Only show saves that created an incomplete playlist"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				),
				Action: r.PlaylistHistory,
			},
		},
	}
}

// apiCommand handles raw authenticated Web API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct authenticated calls to the Spotify Web API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: withConfig(
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				),
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: withConfig(
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				),
				Action: r.APIPost,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  configFlags(),
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to write",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist building.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive search & playlist builder",
		Flags: withConfig(
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/jam-tui.log",
			},
		),
		Action: r.TUI,
	}
}
