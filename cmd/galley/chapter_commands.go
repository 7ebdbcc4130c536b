package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"galley/internal/book"
	"galley/internal/state"
)

func newChapterCommand(ctx *commandContext) *cobra.Command {
	chapterCmd := &cobra.Command{
		Use:   "chapter",
		Short: "Inspect and manage chapter state",
	}

	chapterCmd.AddCommand(newChapterListCommand(ctx))
	chapterCmd.AddCommand(newChapterShowCommand(ctx))
	chapterCmd.AddCommand(newChapterTransitionCommand(ctx))
	chapterCmd.AddCommand(newChapterDeleteCommand(ctx))

	return chapterCmd
}

func newChapterListCommand(ctx *commandContext) *cobra.Command {
	var filterStatus string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chapters and their workflow status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(manager *state.Manager) error {
				var chapters []*book.ChapterState
				var err error
				if filterStatus != "" {
					status, parseErr := parseStatusArg(filterStatus)
					if parseErr != nil {
						return parseErr
					}
					chapters, err = manager.FindChaptersByStatus(status)
				} else {
					chapters, err = manager.AllChapterStates()
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(chapters) == 0 {
					fmt.Fprintln(out, "No chapters tracked")
					return nil
				}
				rows := make([][]string, 0, len(chapters))
				for _, chapter := range chapters {
					rows = append(rows, []string{
						chapter.Name,
						string(chapter.Status),
						formatCount(chapter.WordCount),
						formatCount(chapter.Metrics.TotalReviews),
						formatCount(len(chapter.PendingActions)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Chapter", "Status", "Words", "Reviews", "Actions"},
					rows,
					2, 3, 4,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filterStatus, "status", "s", "", "Only list chapters in this status")
	return cmd
}

func newChapterShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <chapter>",
		Short: "Show full state for one chapter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(manager *state.Manager) error {
				name := state.ChapterName(args[0])
				chapter, err := manager.GetChapterState(name)
				if err != nil {
					return err
				}
				if chapter == nil {
					return fmt.Errorf("no state for chapter %s", name)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(chapter.Name, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("File", statusInfo, chapter.File, colorize))
				fmt.Fprintln(out, renderStatusLine("Status", statusInfo, string(chapter.Status), colorize))
				fmt.Fprintln(out, renderStatusLine("Words", statusInfo, formatCount(chapter.WordCount), colorize))
				fmt.Fprintln(out, renderStatusLine("Reviews", statusInfo, formatCount(chapter.Metrics.TotalReviews), colorize))
				fmt.Fprintln(out, renderStatusLine("Review cost", statusInfo, formatCost(chapter.Metrics.CostToDate), colorize))
				fmt.Fprintln(out, renderStatusLine("Last reviewed", statusInfo, formatOptionalTime(chapter.Metrics.LastReviewedAt), colorize))
				fmt.Fprintln(out, renderStatusLine("Created", statusInfo, formatTime(chapter.CreatedAt), colorize))
				fmt.Fprintln(out, renderStatusLine("Modified", statusInfo, formatTime(chapter.LastModified), colorize))

				if len(chapter.Characteristics) > 0 {
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader("Characteristics", colorize) {
						fmt.Fprintln(out, line)
					}
					for _, key := range sortedKeys(chapter.Characteristics) {
						fmt.Fprintln(out, renderStatusLine(key, statusInfo, fmt.Sprintf("%v", chapter.Characteristics[key]), colorize))
					}
				}

				if len(chapter.Transitions) > 0 {
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader("Status history", colorize) {
						fmt.Fprintln(out, line)
					}
					rows := make([][]string, 0, len(chapter.Transitions))
					for _, tr := range chapter.Transitions {
						rows = append(rows, []string{
							formatTime(tr.Timestamp),
							string(tr.From),
							string(tr.To),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"When", "From", "To"},
						rows,
					))
				}
				return nil
			})
		},
	}
}

func newChapterTransitionCommand(ctx *commandContext) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "transition <chapter> <status>",
		Short: "Move a chapter to a new workflow status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseStatusArg(args[1])
			if err != nil {
				return err
			}
			return ctx.withLockedManager(func(manager *state.Manager) error {
				name := state.ChapterName(args[0])
				var metadata map[string]string
				if strings.TrimSpace(note) != "" {
					metadata = map[string]string{"note": strings.TrimSpace(note)}
				}
				chapter, err := manager.TransitionChapterStatus(name, status, metadata)
				if err != nil {
					return err
				}
				last := chapter.Transitions[len(chapter.Transitions)-1]
				fmt.Fprintf(cmd.OutOrStdout(), "Chapter %s: %s -> %s\n", chapter.Name, last.From, last.To)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Attach a note to the transition record")
	return cmd
}

func newChapterDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chapter>",
		Short: "Delete a chapter's state document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedManager(func(manager *state.Manager) error {
				name := state.ChapterName(args[0])
				if err := manager.DeleteChapterState(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted state for chapter %s\n", name)
				return nil
			})
		},
	}
}
