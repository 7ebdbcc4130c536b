package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"galley/internal/book"
)

var numberPrinter = message.NewPrinter(language.English)

// formatCount renders an integer with digit grouping.
func formatCount(value int) string {
	return numberPrinter.Sprintf("%d", value)
}

func formatCost(value float64) string {
	return numberPrinter.Sprintf("$%.2f", value)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func formatOptionalTime(ts *time.Time) string {
	if ts == nil {
		return "never"
	}
	return formatTime(*ts)
}

// statusDisplay orders statuses for listings: workflow order, not
// alphabetical.
func statusDisplay(breakdown map[book.Status]int) [][]string {
	rows := make([][]string, 0, len(book.AllStatuses()))
	for _, status := range book.AllStatuses() {
		rows = append(rows, []string{string(status), formatCount(breakdown[status])})
	}
	return rows
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func parseStatusArg(value string) (book.Status, error) {
	status := book.Status(strings.TrimSpace(strings.ToLower(value)))
	if !book.ValidStatus(status) {
		names := make([]string, 0, len(book.AllStatuses()))
		for _, known := range book.AllStatuses() {
			names = append(names, string(known))
		}
		return "", fmt.Errorf("unknown status %q (valid: %s)", value, strings.Join(names, ", "))
	}
	return status, nil
}
