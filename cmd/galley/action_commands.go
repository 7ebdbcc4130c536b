package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"galley/internal/book"
	"galley/internal/state"
)

func newActionCommand(ctx *commandContext) *cobra.Command {
	actionCmd := &cobra.Command{
		Use:   "action",
		Short: "Track outstanding chapter tasks",
	}

	actionCmd.AddCommand(newActionAddCommand(ctx))
	actionCmd.AddCommand(newActionDoneCommand(ctx))
	actionCmd.AddCommand(newActionListCommand(ctx))

	return actionCmd
}

func newActionAddCommand(ctx *commandContext) *cobra.Command {
	var actionType string
	var priority string

	cmd := &cobra.Command{
		Use:   "add <chapter> <description>",
		Short: "Attach a pending action to a chapter",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedManager(func(manager *state.Manager) error {
				name := state.ChapterName(args[0])
				action, err := manager.AddPendingAction(name, state.ActionInput{
					Type:        strings.TrimSpace(actionType),
					Description: strings.TrimSpace(strings.Join(args[1:], " ")),
					Priority:    book.Priority(strings.TrimSpace(strings.ToLower(priority))),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s action %s\n", action.Priority, action.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&actionType, "type", "t", "", "Action type (default general)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Action priority: low, medium, or high (default medium)")
	return cmd
}

func newActionDoneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "done <chapter> <action-id>",
		Short: "Complete and remove a pending action",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedManager(func(manager *state.Manager) error {
				name := state.ChapterName(args[0])
				if err := manager.CompletePendingAction(name, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed action %s on chapter %s\n", args[1], name)
				return nil
			})
		},
	}
}

func newActionListCommand(ctx *commandContext) *cobra.Command {
	var filterType string
	var priority string

	cmd := &cobra.Command{
		Use:   "list [chapter]",
		Short: "List pending actions for one chapter or the whole project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(manager *state.Manager) error {
				out := cmd.OutOrStdout()
				filter := state.ActionFilter{
					Type:     strings.TrimSpace(filterType),
					Priority: book.Priority(strings.TrimSpace(strings.ToLower(priority))),
				}

				rows := make([][]string, 0)
				if len(args) == 1 {
					name := state.ChapterName(args[0])
					actions, err := manager.PendingActions(name, filter)
					if err != nil {
						return err
					}
					for _, action := range actions {
						rows = append(rows, actionRow(name, action))
					}
				} else {
					entries, err := manager.FindChaptersWithPendingActions(filter)
					if err != nil {
						return err
					}
					for _, entry := range entries {
						for _, action := range entry.Actions {
							rows = append(rows, actionRow(entry.Chapter.Name, action))
						}
					}
				}

				if len(rows) == 0 {
					fmt.Fprintln(out, "No pending actions")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Chapter", "ID", "Priority", "Type", "Description"},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filterType, "type", "t", "", "Only list actions of this type")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Only list actions with this priority")
	return cmd
}

func actionRow(chapter string, action book.PendingAction) []string {
	return []string{
		chapter,
		action.ID,
		string(action.Priority),
		action.Type,
		action.Description,
	}
}
