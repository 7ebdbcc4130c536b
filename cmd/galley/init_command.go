package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"galley/internal/analyze"
	"galley/internal/book"
	"galley/internal/bookcfg"
	"galley/internal/state"
	"galley/internal/statefile"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var bookType string
	var genre string
	var title string
	var force bool
	var skipAnalysis bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize project state for a manuscript",
		Long: "Creates the book configuration (when missing), the project and preferences\n" +
			"documents, and a state document for every chapter file in the manuscript\n" +
			"directory, running content analysis on each unless --skip-analysis is set.\n" +
			"Re-running init on an initialized project keeps the existing configuration\n" +
			"and picks up chapter files added since.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			configPath := filepath.Join(cfg.StateDir, "book-config.json")
			configExists := false
			if _, err := os.Stat(configPath); err == nil {
				configExists = true
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("check book configuration path: %w", err)
			}

			if !configExists || force {
				t := book.Type(strings.TrimSpace(strings.ToLower(bookType)))
				if !book.ValidType(t) {
					names := make([]string, 0, len(book.AllTypes()))
					for _, known := range book.AllTypes() {
						names = append(names, string(known))
					}
					return fmt.Errorf("unknown book type %q (valid: %s)", bookType, strings.Join(names, ", "))
				}
				store := statefile.NewStore(ctx.ensureLogger())
				if _, err := bookcfg.CreateDefault(t, strings.TrimSpace(genre), strings.TrimSpace(title), configPath, store); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, "Book configuration already exists; keeping it")
			}

			return ctx.withLockedManager(func(manager *state.Manager) error {
				bookCfg := manager.BookConfig()
				bookTitle, err := bookCfg.Title()
				if err != nil {
					return err
				}
				resolvedType, err := bookCfg.Type()
				if err != nil {
					return err
				}
				resolvedGenre, err := bookCfg.Genre()
				if err != nil {
					return err
				}
				reviewTypes, err := bookCfg.ReviewTypes()
				if err != nil {
					return err
				}

				files, err := chapterFiles(cfg.ManuscriptDir)
				if err != nil {
					return err
				}
				analyzer := analyze.New(bookCfg)

				created, existing, analyzed := 0, 0, 0
				for _, file := range files {
					name := state.ChapterName(file)
					chapter, err := manager.GetChapterState(name)
					if err != nil {
						return err
					}
					if chapter == nil {
						if _, err := manager.CreateChapterState(name, filepath.Base(file)); err != nil {
							return err
						}
						created++
					} else {
						existing++
					}

					if skipAnalysis {
						continue
					}
					analysis, err := analyzer.AnalyzeChapter(file)
					if err != nil {
						return err
					}
					if _, err := manager.UpdateChapterState(name, state.ChapterUpdate{
						WordCount:       &analysis.WordCount,
						Characteristics: analysis.Characteristics,
					}); err != nil {
						return err
					}
					analyzed++
				}

				project, err := manager.RecalculateProjectStats()
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Initialized project state in %s\n", cfg.StateDir)
				fmt.Fprintf(out, "Book: %s (%s/%s)\n", bookTitle, resolvedType, resolvedGenre)
				fmt.Fprintf(out, "Review types: %s\n", strings.Join(reviewTypes, ", "))
				fmt.Fprintf(out, "Chapters: %d found (%d new, %d existing, %d analyzed)\n",
					len(files), created, existing, analyzed)
				fmt.Fprintf(out, "Total words: %s\n", formatCount(project.TotalWords))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&bookType, "type", "non-fiction", "Book type (fiction, non-fiction, technical, academic)")
	cmd.Flags().StringVar(&genre, "genre", "cookbook", "Genre used to pick configuration defaults")
	cmd.Flags().StringVar(&title, "title", "", "Book title")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing book configuration")
	cmd.Flags().BoolVar(&skipAnalysis, "skip-analysis", false, "Create chapter states without running content analysis")
	return cmd
}
