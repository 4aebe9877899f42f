package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/slipstream/mona/internal/release"
	"github.com/slipstream/mona/internal/resolver"
)

// errNotFound is returned when a one-shot lookup finds nothing.
var errNotFound = errors.New("not found")

type resolveOutput struct {
	Query  string          `json:"query"`
	Title  string          `json:"title,omitempty"`
	Year   int             `json:"year,omitempty"`
	Season string          `json:"season,omitempty"`
	URL    string          `json:"url"`
	Source resolver.Source `json:"source"`
}

func newPosterCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "poster <query>",
		Short: "Resolve the poster URL for a file name or title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			q := a.parser.Parse(args[0])
			if !q.HasTitle() {
				return fmt.Errorf("query is invalid: %q", args[0])
			}
			art, found, err := a.resolver.ResolvePoster(cmd.Context(), q)
			return printResult(cmd.OutOrStdout(), q, art, found, err, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

func newFanartCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "fanart <query>",
		Short: "Resolve a random fanart URL for a file name or title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			q := a.parser.Parse(args[0])
			if !q.HasTitle() {
				return fmt.Errorf("query is invalid: %q", args[0])
			}
			art, found, err := a.resolver.RandomFanart(cmd.Context(), q)
			return printResult(cmd.OutOrStdout(), q, art, found, err, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

func newTorrentArtCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "torrent-art <url>",
		Short: "Extract artwork from a torrent description page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.torrents.AllowedURL(args[0]) {
				return fmt.Errorf("invalid url: %q", args[0])
			}
			art, found, err := a.resolver.ResolveTorrentArt(cmd.Context(), args[0])
			return printResult(cmd.OutOrStdout(), release.Parsed{FileName: args[0]}, art, found, err, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

// openApp wires the services for a one-shot command. Logs go to stderr so
// stdout carries only the result.
func openApp(opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, os.Stderr)
}

func printResult(w io.Writer, q release.Parsed, art resolver.Artwork, found bool, err error, jsonOut bool) error {
	if err != nil {
		return err
	}
	if !found {
		return errNotFound
	}

	if !jsonOut {
		_, err := fmt.Fprintln(w, art.URL)
		return err
	}

	out := resolveOutput{
		Query:  q.FileName,
		Title:  q.Title,
		Year:   q.Year,
		URL:    art.URL,
		Source: art.Source,
	}
	if len(q.Seasons) > 0 {
		out.Season = q.Seasons[0]
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
