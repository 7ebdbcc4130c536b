package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"galley/internal/state"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var verbose bool
	var staleDays int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show project status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(manager *state.Manager) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				project, err := manager.ProjectState()
				if err != nil {
					return err
				}
				stats, err := manager.ChapterStatistics()
				if err != nil {
					return err
				}

				for _, line := range renderSectionHeader(project.Name, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Type", statusInfo, fmt.Sprintf("%s / %s", project.Type, project.Genre), colorize))
				fmt.Fprintln(out, renderStatusLine("Chapters", statusInfo, formatCount(stats.Total), colorize))
				fmt.Fprintln(out, renderStatusLine("Words", statusInfo, formatCount(stats.TotalWords), colorize))
				fmt.Fprintln(out, renderStatusLine("Reviews", statusInfo, formatCount(stats.TotalReviews), colorize))
				fmt.Fprintln(out, renderStatusLine("Review cost", statusInfo, formatCost(stats.TotalCost), colorize))
				if stats.Total > 0 {
					fmt.Fprintln(out, renderStatusLine("Avg words", statusInfo, formatCount(stats.AverageWordCount), colorize))
				}

				kind := statusOK
				if stats.NeverReviewed > 0 || stats.WithPendingActions > 0 {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Never reviewed", kind, formatCount(stats.NeverReviewed), colorize))
				fmt.Fprintln(out, renderStatusLine("Pending actions", kind, formatCount(stats.WithPendingActions), colorize))
				fmt.Fprintln(out)

				fmt.Fprintln(out, renderTable(
					[]string{"Status", "Chapters"},
					statusDisplay(stats.ByStatus),
					1,
				))

				if !verbose {
					return nil
				}

				needy, err := manager.FindChaptersNeedingReview(staleDays)
				if err != nil {
					return err
				}
				if len(needy) > 0 {
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader("Needs review", colorize) {
						fmt.Fprintln(out, line)
					}
					rows := make([][]string, 0, len(needy))
					for _, chapter := range needy {
						rows = append(rows, []string{
							chapter.Name,
							string(chapter.Status),
							formatOptionalTime(chapter.Metrics.LastReviewedAt),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Chapter", "Status", "Last reviewed"},
						rows,
					))
				}

				withActions, err := manager.FindChaptersWithPendingActions(state.ActionFilter{})
				if err != nil {
					return err
				}
				if len(withActions) > 0 {
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader("Pending actions", colorize) {
						fmt.Fprintln(out, line)
					}
					rows := make([][]string, 0)
					for _, entry := range withActions {
						for _, action := range entry.Actions {
							rows = append(rows, []string{
								entry.Chapter.Name,
								string(action.Priority),
								action.Type,
								strings.TrimSpace(action.Description),
							})
						}
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Chapter", "Priority", "Type", "Description"},
						rows,
					))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include chapters needing review and pending actions")
	cmd.Flags().IntVar(&staleDays, "stale-days", 0, "Days before a review is considered stale (default 30)")
	return cmd
}
