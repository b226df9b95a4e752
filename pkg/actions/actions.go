// Package actions extracts categorized action items (assignments,
// readings, exams, deadlines) from a lecture transcript via the
// generation service.
package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lecture-processor/pkg/llm"
	"lecture-processor/pkg/models"
)

// Generator is the slice of the generation client the extractor needs.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (string, error)
}

// Result carries the parsed action items together with the raw model
// output that produced them.
type Result struct {
	Items []models.ActionItem
	Raw   string
}

// Field labels recognized while parsing the model's markdown output.
const (
	descriptionLabel = "- **Description**:"
	dueDateLabel     = "- **Due Date**:"
	priorityLabel    = "- **Priority**:"
	contextLabel     = "- **Context**:"
)

// Extract asks the model for action items and parses the response.
// A response carrying the "no action items" phrase yields an empty
// list with no error. Zero parsed items without that phrase triggers
// exactly one format-reinforcement retry.
func Extract(ctx context.Context, gen Generator, transcript, model, lectureDate string) (*Result, error) {
	prompt := llm.ActionsPrompt(transcript, lectureDate)

	raw, err := gen.Generate(ctx, llm.GenerateRequest{
		Model:       model,
		Prompt:      prompt,
		Temperature: llm.ActionsTemperature,
		MaxTokens:   llm.ActionsMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if hasNoItemsPhrase(raw) {
		return &Result{Items: []models.ActionItem{}, Raw: raw}, nil
	}

	items := Parse(raw)
	if len(items) == 0 {
		raw, err = gen.Generate(ctx, llm.GenerateRequest{
			Model:       model,
			Prompt:      prompt + llm.ActionsRetrySuffix,
			Temperature: llm.ActionsTemperature * llm.RetryTemperatureScale,
			MaxTokens:   llm.ActionsMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("retry failed: %w", err)
		}
		items = Parse(raw)
	}

	return &Result{Items: items, Raw: raw}, nil
}

func hasNoItemsPhrase(raw string) bool {
	return strings.Contains(strings.ToLower(raw), llm.NoActionItemsPhrase)
}

// Parse scans the markdown output line by line. A category header
// flushes the open item and sets the category context; a Description
// label opens a new item; Due Date, Priority and Context labels fill
// the open item. Flushing at the header keeps every item under the
// category it was listed under, so formatted output re-parses to the
// same items.
func Parse(raw string) []models.ActionItem {
	var items []models.ActionItem

	currentCategory := ""
	var current *models.ActionItem

	flush := func() {
		if current != nil && currentCategory != "" {
			current.Category = NormalizeCategory(currentCategory)
			items = append(items, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "###"):
			flush()
			currentCategory = strings.TrimSpace(strings.TrimLeft(stripped, "#"))

		case strings.HasPrefix(stripped, descriptionLabel):
			flush()
			current = &models.ActionItem{
				Description: strings.TrimSpace(stripped[len(descriptionLabel):]),
				DueDate:     models.DueDateNone,
				Priority:    models.PriorityMedium,
			}

		case strings.HasPrefix(stripped, dueDateLabel) && current != nil:
			current.DueDate = strings.TrimSpace(stripped[len(dueDateLabel):])

		case strings.HasPrefix(stripped, priorityLabel) && current != nil:
			current.Priority = NormalizePriority(stripped[len(priorityLabel):])

		case strings.HasPrefix(stripped, contextLabel) && current != nil:
			context := strings.TrimSpace(stripped[len(contextLabel):])
			current.Context = strings.Trim(context, `"'`)
		}
	}
	flush()

	return items
}

// NormalizeCategory maps a raw category heading onto the fixed set.
// Rules are checked in priority order; anything unmatched is Other.
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))

	switch {
	case strings.Contains(c, "assignment"):
		return models.CategoryAssignment
	case strings.Contains(c, "reading") && strings.Contains(c, "required"):
		return models.CategoryReadingRequired
	case strings.Contains(c, "reading") && strings.Contains(c, "suggested"):
		return models.CategoryReadingSuggested
	case strings.Contains(c, "exam"):
		return models.CategoryExam
	case strings.Contains(c, "deadline"):
		return models.CategoryDeadline
	case strings.Contains(c, "review"):
		return models.CategoryReviewTopic
	case strings.Contains(c, "lab"), strings.Contains(c, "practical"):
		return models.CategoryLabPractical
	default:
		return models.CategoryOther
	}
}

// NormalizePriority maps any priority text onto High, Medium or Low.
func NormalizePriority(priority string) string {
	p := strings.ToLower(strings.TrimSpace(priority))

	switch {
	case strings.Contains(p, "high"):
		return models.PriorityHigh
	case strings.Contains(p, "low"):
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

// GroupByCategory buckets items under their category name.
func GroupByCategory(items []models.ActionItem) map[string][]models.ActionItem {
	grouped := make(map[string][]models.ActionItem)
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	return grouped
}

// FilterByPriority keeps items whose priority is in the given set.
func FilterByPriority(items []models.ActionItem, priorities []string) []models.ActionItem {
	return filter(items, func(item models.ActionItem) bool {
		return contains(priorities, item.Priority)
	})
}

// FilterByCategory keeps items whose category is in the given set.
func FilterByCategory(items []models.ActionItem, categories []string) []models.ActionItem {
	return filter(items, func(item models.ActionItem) bool {
		return contains(categories, item.Category)
	})
}

func filter(items []models.ActionItem, keep func(models.ActionItem) bool) []models.ActionItem {
	var out []models.ActionItem
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

// Stats summarizes an action item collection.
type Stats struct {
	Total           int            `json:"total_count"`
	ByCategory      map[string]int `json:"by_category"`
	ByPriority      map[string]int `json:"by_priority"`
	WithDueDates    int            `json:"with_due_dates"`
	WithoutDueDates int            `json:"without_due_dates"`
}

// ComputeStats counts items by category, priority and due-date presence.
func ComputeStats(items []models.ActionItem) Stats {
	stats := Stats{
		Total:      len(items),
		ByCategory: make(map[string]int),
		ByPriority: map[string]int{
			models.PriorityHigh:   0,
			models.PriorityMedium: 0,
			models.PriorityLow:    0,
		},
	}

	for _, item := range items {
		stats.ByCategory[item.Category]++
		stats.ByPriority[item.Priority]++
		if item.DueDate != models.DueDateNone {
			stats.WithDueDates++
		} else {
			stats.WithoutDueDates++
		}
	}

	return stats
}

var priorityRank = map[string]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

// SortByPriority returns a copy sorted High > Medium > Low > unknown,
// preserving the original order among equal priorities.
func SortByPriority(items []models.ActionItem) []models.ActionItem {
	sorted := make([]models.ActionItem, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		return rankOf(sorted[i].Priority) < rankOf(sorted[j].Priority)
	})
	return sorted
}

func rankOf(priority string) int {
	if rank, ok := priorityRank[priority]; ok {
		return rank
	}
	return 3
}

// FormatMarkdown renders items grouped by category in the same labeled
// format the parser accepts, so exported lists re-parse cleanly.
func FormatMarkdown(items []models.ActionItem) string {
	if len(items) == 0 {
		return "No action items identified in this lecture."
	}

	grouped := GroupByCategory(items)
	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("# Action Items\n\n")

	for _, category := range categories {
		fmt.Fprintf(&b, "### %s\n\n", category)
		for _, item := range grouped[category] {
			fmt.Fprintf(&b, "%s %s\n", descriptionLabel, item.Description)
			fmt.Fprintf(&b, "  %s %s\n", dueDateLabel, item.DueDate)
			fmt.Fprintf(&b, "  %s %s\n", priorityLabel, item.Priority)
			if item.Context != "" {
				fmt.Fprintf(&b, "  %s %q\n", contextLabel, item.Context)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Validate reports structural problems per item without failing.
// An empty list is valid: no actions in the lecture.
func Validate(items []models.ActionItem) (bool, []string) {
	var warnings []string

	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			warnings = append(warnings, fmt.Sprintf("item %d: empty description", i+1))
		}
		if item.Category == "" {
			warnings = append(warnings, fmt.Sprintf("item %d: missing category", i+1))
		}
		if item.Priority == "" {
			warnings = append(warnings, fmt.Sprintf("item %d: missing priority", i+1))
		}
		if item.DueDate == "" {
			warnings = append(warnings, fmt.Sprintf("item %d: missing due date", i+1))
		}
	}

	return len(warnings) == 0, warnings
}

// Summary returns a one-line description of the extracted items.
func Summary(items []models.ActionItem) string {
	if len(items) == 0 {
		return "No action items found"
	}
	stats := ComputeStats(items)
	return fmt.Sprintf("Found %d action items (%d high priority)", stats.Total, stats.ByPriority[models.PriorityHigh])
}
