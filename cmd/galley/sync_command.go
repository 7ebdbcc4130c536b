package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"galley/internal/analyze"
	"galley/internal/book"
	"galley/internal/state"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "sync [chapter]",
		Short: "Refresh chapter state from manuscript files",
		Long: "Re-runs content analysis for chapters that already have state and merges\n" +
			"the fresh word counts and characteristics back in. Sync never creates new\n" +
			"chapter states; run 'galley init' to pick up new chapter files. With a\n" +
			"chapter argument only that chapter is refreshed. A chapter whose content\n" +
			"file is missing is reported as a warning and skipped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if prune && len(args) == 1 {
				return fmt.Errorf("--prune applies to a full sync, not a single chapter")
			}
			return ctx.withLockedManager(func(manager *state.Manager) error {
				out := cmd.OutOrStdout()
				analyzer := analyze.New(manager.BookConfig())

				var chapters []*book.ChapterState
				if len(args) == 1 {
					name := state.ChapterName(args[0])
					chapter, err := manager.GetChapterState(name)
					if err != nil {
						return err
					}
					if chapter == nil {
						return fmt.Errorf("no state for chapter %s (run 'galley init' first)", name)
					}
					chapters = []*book.ChapterState{chapter}
				} else {
					chapters, err = manager.AllChapterStates()
					if err != nil {
						return err
					}
				}

				synced, warnings, removed := 0, 0, 0
				for _, chapter := range chapters {
					path := filepath.Join(cfg.ManuscriptDir, chapter.File)
					if _, err := os.Stat(path); err != nil {
						if os.IsNotExist(err) && prune {
							if err := manager.DeleteChapterState(chapter.Name); err != nil {
								return err
							}
							fmt.Fprintf(out, "Removed state for deleted chapter %s\n", chapter.Name)
							removed++
							continue
						}
						fmt.Fprintf(out, "Warning: chapter file not found: %s\n", path)
						warnings++
						continue
					}

					analysis, err := analyzer.AnalyzeChapter(path)
					if err != nil {
						fmt.Fprintf(out, "Warning: analyze %s: %v\n", chapter.Name, err)
						warnings++
						continue
					}
					if _, err := manager.UpdateChapterState(chapter.Name, state.ChapterUpdate{
						WordCount:       &analysis.WordCount,
						Characteristics: analysis.Characteristics,
					}); err != nil {
						return err
					}
					synced++
				}

				project, err := manager.RecalculateProjectStats()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Synced %d chapters (%d warnings, %d removed)\n", synced, warnings, removed)
				fmt.Fprintf(out, "Project totals: %s words across %s chapters\n",
					formatCount(project.TotalWords), formatCount(project.TotalChapters))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Remove state for chapters whose files no longer exist")
	return cmd
}

// chapterFiles lists the manuscript's chapter-*.md files, sorted by name.
func chapterFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manuscript directory %s does not exist", dir)
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "chapter-") || !strings.HasSuffix(name, ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
