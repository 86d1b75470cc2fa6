package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"tidymark/internal/bookmark"
	"tidymark/internal/store"
)

// summaryRounding keeps run durations readable in terminal summaries.
const summaryRounding = 10 * time.Millisecond

func featuresFor(record store.Record) bookmark.Features {
	return bookmark.Extract(record.URL, record.Title)
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatConfidence(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}
