package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"galley/internal/book"
	"galley/internal/state"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Record and inspect chapter reviews",
	}

	reviewCmd.AddCommand(newReviewAddCommand(ctx))
	reviewCmd.AddCommand(newReviewListCommand(ctx))

	return reviewCmd
}

func newReviewAddCommand(ctx *commandContext) *cobra.Command {
	var model string
	var cost float64
	var summary string
	var issues []string

	cmd := &cobra.Command{
		Use:   "add <chapter> <type>",
		Short: "Record a completed review for a chapter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedManager(func(manager *state.Manager) error {
				name := state.ChapterName(args[0])
				review, err := manager.AddReview(name, state.ReviewInput{
					Type:    strings.TrimSpace(args[1]),
					Model:   strings.TrimSpace(model),
					Cost:    cost,
					Summary: strings.TrimSpace(summary),
					Issues:  reviewIssues(issues),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s review %s (model %s, cost %s)\n",
					review.Type, review.ID, review.Model, formatCost(review.Cost))
				if len(review.Issues) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Issues noted: %d\n", len(review.Issues))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model used for the review (defaults to preferences)")
	cmd.Flags().Float64Var(&cost, "cost", 0, "Cost of the review in dollars")
	cmd.Flags().StringVar(&summary, "summary", "", "Short review summary")
	cmd.Flags().StringArrayVar(&issues, "issue", nil, "Issue found during the review (repeatable)")
	return cmd
}

// reviewIssues converts --issue flag values into issue records.
func reviewIssues(descriptions []string) []book.Issue {
	issues := make([]book.Issue, 0, len(descriptions))
	for _, description := range descriptions {
		description = strings.TrimSpace(description)
		if description == "" {
			continue
		}
		issues = append(issues, book.Issue{"description": description})
	}
	return issues
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	var filterType string
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list <chapter>",
		Short: "List a chapter's reviews, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sinceTime, err := parseSinceFlag(since)
			if err != nil {
				return err
			}
			return ctx.withManager(func(manager *state.Manager) error {
				name := state.ChapterName(args[0])
				reviews, err := manager.ReviewHistory(name, state.ReviewFilter{
					Type:  strings.TrimSpace(filterType),
					Since: sinceTime,
					Limit: limit,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(reviews) == 0 {
					fmt.Fprintf(out, "No reviews recorded for %s\n", name)
					return nil
				}
				rows := make([][]string, 0, len(reviews))
				for _, review := range reviews {
					rows = append(rows, []string{
						formatTime(review.Timestamp),
						review.Type,
						review.Model,
						formatCost(review.Cost),
						review.Summary,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"When", "Type", "Model", "Cost", "Summary"},
					rows,
					3,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filterType, "type", "t", "", "Only list reviews of this type")
	cmd.Flags().StringVar(&since, "since", "", "Only list reviews on or after this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of reviews to list")
	return cmd
}

// parseSinceFlag accepts a date or a full RFC 3339 timestamp. An empty
// value applies no lower bound.
func parseSinceFlag(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q (use YYYY-MM-DD or RFC 3339)", value)
}
