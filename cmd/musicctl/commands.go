package main

import (
	"context"
	"fmt"
	"strings"

	"music-api-go/favorites"
	"music-api-go/services/kugou"

	"github.com/urfave/cli/v3"
)

func prettyFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "pretty",
		Aliases: []string{"p"},
		Usage:   "Indent JSON output",
	}
}

func qualityFlag(r *Runner) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "quality",
		Aliases: []string{"q"},
		Usage:   "Audio quality requested from the upstream",
		Value:   r.config.Configuration.DefaultQuality,
	}
}

func queryArg(cmd *cli.Command) string {
	return strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
}

func checkQuality(quality string) error {
	if !kugou.ValidQuality(quality) {
		return fmt.Errorf("unsupported quality: %s", quality)
	}
	return nil
}

// Search prints the filtered result list for the query given as arguments
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	quality := cmd.String("quality")
	if err := checkQuality(quality); err != nil {
		return err
	}

	query := queryArg(cmd)
	r.logger.Debugf("searching %q (quality %s)", query, quality)

	songs, err := r.client.Search(ctx, kugou.SearchRequest{
		Query:      query,
		Index:      cmd.String("n"),
		MaxResults: cmd.String("num"),
		Quality:    quality,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	r.logger.Infof("found %d songs for %q", len(songs), query)
	return r.writeJSON(songs, cmd.Bool("pretty"))
}

// Detail prints the normalized detail of one search result
func (r *Runner) Detail(ctx context.Context, cmd *cli.Command) error {
	quality := cmd.String("quality")
	if err := checkQuality(quality); err != nil {
		return err
	}

	detail, err := r.client.GetDetail(ctx, kugou.DetailRequest{
		Query:   queryArg(cmd),
		Index:   cmd.String("n"),
		Quality: quality,
	})
	if err != nil {
		return fmt.Errorf("detail failed: %w", err)
	}

	return r.writeJSON(detail, cmd.Bool("pretty"))
}

func (r *Runner) ListFavorites(ctx context.Context, cmd *cli.Command) error {
	store, err := r.favorites()
	if err != nil {
		return err
	}

	entries, err := store.List()
	if err != nil {
		return err
	}
	return r.writeJSON(entries, cmd.Bool("pretty"))
}

// ToggleFavorite adds or removes a song and prints the resulting state
func (r *Runner) ToggleFavorite(ctx context.Context, cmd *cli.Command) error {
	store, err := r.favorites()
	if err != nil {
		return err
	}

	song := favorites.Song{
		Index:     cmd.String("n"),
		Title:     cmd.String("title"),
		Artist:    cmd.String("singer"),
		StreamURL: cmd.String("url"),
		CoverURL:  cmd.String("cover"),
	}

	favorited, err := store.Toggle(song)
	if err != nil {
		return err
	}
	return r.writeJSON(map[string]any{"n": song.Index, "favorited": favorited}, cmd.Bool("pretty"))
}

func (r *Runner) CheckFavorite(ctx context.Context, cmd *cli.Command) error {
	store, err := r.favorites()
	if err != nil {
		return err
	}

	index := cmd.String("n")
	favorited, err := store.IsFavorite(index)
	if err != nil {
		return err
	}
	return r.writeJSON(map[string]any{"n": index, "favorited": favorited}, cmd.Bool("pretty"))
}

func (r *Runner) BackupFavorites(ctx context.Context, cmd *cli.Command) error {
	store, err := r.favorites()
	if err != nil {
		return err
	}

	path, err := store.Backup()
	if err != nil {
		return err
	}
	r.logger.Infof("backup written to %s", path)
	return r.writeJSON(map[string]string{"backup": path}, cmd.Bool("pretty"))
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search songs by keyword",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			qualityFlag(r),
			&cli.StringFlag{
				Name:  "num",
				Usage: "Maximum results requested from the upstream",
				Value: r.config.Configuration.DefaultMaxResults,
			},
			&cli.StringFlag{
				Name:  "n",
				Usage: "Optional result index forwarded to the upstream",
			},
			prettyFlag(),
		},
		Action: r.Search,
	}
}

func detailCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "detail",
		Aliases:   []string{"d"},
		Usage:     "Resolve the stream, cover and lyrics of one result",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			qualityFlag(r),
			&cli.StringFlag{
				Name:     "n",
				Usage:    "Result index from a previous search",
				Required: true,
			},
			prettyFlag(),
		},
		Action: r.Detail,
	}
}

func favCommand(r *Runner) *cli.Command {
	indexFlag := func() *cli.StringFlag {
		return &cli.StringFlag{Name: "n", Usage: "Song index", Required: true}
	}

	return &cli.Command{
		Name:  "fav",
		Usage: "Manage favorites",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorites in insertion order",
				Flags:  []cli.Flag{prettyFlag()},
				Action: r.ListFavorites,
			},
			{
				Name:  "toggle",
				Usage: "Add a song, or remove it if already present",
				Flags: []cli.Flag{
					indexFlag(),
					&cli.StringFlag{Name: "title", Usage: "Song title"},
					&cli.StringFlag{Name: "singer", Usage: "Artist name"},
					&cli.StringFlag{Name: "url", Usage: "Stream URL"},
					&cli.StringFlag{Name: "cover", Usage: "Cover URL"},
					prettyFlag(),
				},
				Action: r.ToggleFavorite,
			},
			{
				Name:   "check",
				Usage:  "Report whether a song index is favorited",
				Flags:  []cli.Flag{indexFlag(), prettyFlag()},
				Action: r.CheckFavorite,
			},
			{
				Name:   "backup",
				Usage:  "Snapshot the favorites database",
				Flags:  []cli.Flag{prettyFlag()},
				Action: r.BackupFavorites,
			},
		},
	}
}
