package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var validFormats = []string{"text", "json"}

type rootOptions struct {
	API     string
	Offset  int
	Format  string
	Timeout time.Duration
}

func (o *rootOptions) client() *apiClient {
	return newAPIClient(o.API, o.Timeout)
}

func localOffset() int {
	_, secs := time.Now().Zone()
	return secs / 60
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "raiderctl",
		Short:         "Command line client for the raiderdle API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
	}

	api := os.Getenv("RAIDERDLE_API")
	if api == "" {
		api = "http://localhost:3001"
	}
	cmd.PersistentFlags().StringVar(&opts.API, "api", api, "server base URL")
	cmd.PersistentFlags().IntVar(&opts.Offset, "offset", localOffset(), "minutes east of UTC used to pick the day")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "HTTP timeout")

	cmd.AddCommand(newTodayCommand(opts))
	cmd.AddCommand(newGuessCommand(opts))
	cmd.AddCommand(newRevealCommand(opts))
	cmd.AddCommand(newReportCommand(opts))
	return cmd
}

func newTodayCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "today <category>",
		Short: "Show today's answer for a category (items, weapons, arcs, icons)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := opts.client().Today(cmd.Context(), args[0], opts.Offset)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), raw)
			}
			name, err := todayName(raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], name)
			return nil
		},
	}
}

// todayName digs the display name out of any category's payload: most nest
// it under "today", icons carry it at the top level.
func todayName(raw json.RawMessage) (string, error) {
	var payload struct {
		Name  string `json:"name"`
		Today *struct {
			Name string `json:"name"`
		} `json:"today"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode today: %w", err)
	}
	if payload.Today != nil {
		return payload.Today.Name, nil
	}
	return payload.Name, nil
}

func newGuessCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "guess <word>",
		Short: "Guess today's secret word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().Guess(cmd.Context(), args[0], opts.Offset)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderGuess(res))
			return nil
		},
	}
}

// renderGuess marks correct letters [X], present letters (X) and leaves
// absent ones bare.
func renderGuess(res *guessResponse) string {
	parts := make([]string, 0, len(res.Result))
	for _, l := range res.Result {
		switch l.Status {
		case "correct":
			parts = append(parts, "["+l.Letter+"]")
		case "present":
			parts = append(parts, "("+l.Letter+")")
		default:
			parts = append(parts, " "+l.Letter+" ")
		}
	}
	line := strings.Join(parts, " ")
	if res.IsCorrect {
		line += "  solved: " + res.Word
	}
	return line
}

func newRevealCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal",
		Short: "Reveal today's secret word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			word, err := opts.client().Reveal(cmd.Context(), opts.Offset)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"word": word})
			}
			fmt.Fprintln(cmd.OutOrStdout(), word)
			return nil
		},
	}
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	var modes []string
	cmd := &cobra.Command{
		Use:   "report <message>",
		Short: "File a bug report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(modes) == 0 {
				return fmt.Errorf("at least one --mode is required")
			}
			res, err := opts.client().Report(cmd.Context(), strings.Join(args, " "), modes)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report filed: %s\n", res.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&modes, "mode", nil, "game mode the report concerns (repeatable)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
