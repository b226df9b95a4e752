// Package export renders processed lecture artifacts into portable
// document formats: plain text, markdown and CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"lecture-processor/pkg/models"
)

const (
	ruleWidth    = 70
	timeLayout   = "2006-01-02 15:04:05"
	generatorTag = "Lecture Processor"
)

var (
	mainHeadingRe = regexp.MustCompile(`(?m)^### (.+)$`)
	subHeadingRe  = regexp.MustCompile(`(?m)^#### (.+)$`)
	boldRe        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe      = regexp.MustCompile(`\*(.+?)\*`)
	bulletRe      = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
)

// AsText renders the record as a plain text document: title with
// underline, metadata block, then CLASS NOTES, ACTION ITEMS and FULL
// TRANSCRIPT sections separated by full-width rules.
func AsText(record *models.LectureRecord, now time.Time) string {
	var b strings.Builder

	title := record.Metadata.Title
	if title == "" {
		title = "Lecture Notes"
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	if record.Metadata.Course != "" {
		fmt.Fprintf(&b, "Course: %s\n", record.Metadata.Course)
	}
	if record.Metadata.Date != "" {
		fmt.Fprintf(&b, "Date: %s\n", record.Metadata.Date)
	}
	if record.Metadata.Duration != "" {
		fmt.Fprintf(&b, "Duration: %s\n", record.Metadata.Duration)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format(timeLayout))
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")

	b.WriteString("CLASS NOTES\n")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
	b.WriteString(MarkdownToPlainText(record.NotesMarkdown))
	b.WriteString("\n\n" + strings.Repeat("=", ruleWidth) + "\n\n")

	b.WriteString("ACTION ITEMS\n")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
	b.WriteString(MarkdownToPlainText(record.ActionsMarkdown))
	b.WriteString("\n\n" + strings.Repeat("=", ruleWidth) + "\n\n")

	b.WriteString("FULL TRANSCRIPT\n")
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
	b.WriteString(record.Transcript)
	b.WriteString("\n")

	return b.String()
}

// AsMarkdown renders the record as a single markdown document with a
// metadata header and table of contents.
func AsMarkdown(record *models.LectureRecord, now time.Time) string {
	var b strings.Builder

	b.WriteString("---\n")
	if record.Metadata.Title != "" {
		fmt.Fprintf(&b, "Lecture: %s\n", record.Metadata.Title)
	}
	if record.Metadata.Course != "" {
		fmt.Fprintf(&b, "Course: %s\n", record.Metadata.Course)
	}
	if record.Metadata.Date != "" {
		fmt.Fprintf(&b, "Date: %s\n", record.Metadata.Date)
	}
	if record.Metadata.Duration != "" {
		fmt.Fprintf(&b, "Duration: %s\n", record.Metadata.Duration)
	}
	fmt.Fprintf(&b, "Generated: %s\n", now.Format(timeLayout))
	fmt.Fprintf(&b, "Generated with: %s\n", generatorTag)
	b.WriteString("---\n\n")

	title := record.Metadata.Title
	if title == "" {
		title = "Lecture Notes"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Table of Contents\n\n")
	b.WriteString("1. [Class Notes](#class-notes)\n")
	b.WriteString("2. [Action Items](#action-items)\n")
	if record.Transcript != "" {
		b.WriteString("3. [Full Transcript](#full-transcript)\n")
	}
	b.WriteString("\n---\n\n")

	b.WriteString("## Class Notes\n\n")
	b.WriteString(record.NotesMarkdown)
	b.WriteString("\n\n---\n\n")

	b.WriteString("## Action Items\n\n")
	b.WriteString(record.ActionsMarkdown)
	b.WriteString("\n")

	if record.Transcript != "" {
		b.WriteString("\n---\n\n## Full Transcript\n\n")
		b.WriteString(record.Transcript)
		b.WriteString("\n")
	}

	return b.String()
}

// ActionsCSV renders action items one row per item with a fixed
// column order.
func ActionsCSV(items []models.ActionItem) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"category", "description", "due_date", "priority", "context"}); err != nil {
		return "", err
	}
	for _, item := range items {
		row := []string{item.Category, item.Description, item.DueDate, item.Priority, item.Context}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MarkdownToPlainText strips heading, bold, italic and bullet markup,
// preserving structure through underlines and indentation.
func MarkdownToPlainText(markdown string) string {
	text := markdown

	text = mainHeadingRe.ReplaceAllString(text, "\n${1}\n"+strings.Repeat("=", 50))
	text = subHeadingRe.ReplaceAllString(text, "\n  ${1}\n  "+strings.Repeat("-", 40))
	text = boldRe.ReplaceAllString(text, "${1}")
	text = italicRe.ReplaceAllString(text, "${1}")
	text = bulletRe.ReplaceAllString(text, "  • ")

	return text
}
