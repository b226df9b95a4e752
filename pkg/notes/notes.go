// Package notes turns a lecture transcript into hierarchically
// structured class notes by prompting the generation service and
// parsing its markdown output.
package notes

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"lecture-processor/pkg/llm"
	"lecture-processor/pkg/models"
)

// Generator is the slice of the generation client the extractor needs.
type Generator interface {
	Generate(ctx context.Context, req llm.GenerateRequest) (string, error)
}

// Result carries the generated notes. Warning is set when the final
// response still fails structural validation; the markdown is returned
// regardless so the caller keeps a usable artifact.
type Result struct {
	Markdown string
	Document *models.NotesDocument
	Stats    models.NotesStats
	Warning  string
}

var (
	mainTopicRe  = regexp.MustCompile(`(?m)^### .+$`)
	subtopicRe   = regexp.MustCompile(`(?m)^#### .+$`)
	bulletRe     = regexp.MustCompile(`(?m)^\s*[-*•] .+$`)
	boldTermRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	keyConceptRe = regexp.MustCompile(`\*\*([^*]+)\*\*:\s*([^\n]+)`)
)

type attempt struct {
	promptSuffix string
	tempScale    float64
}

// One initial attempt plus exactly one format-reinforcement retry.
var attempts = []attempt{
	{promptSuffix: "", tempScale: 1.0},
	{promptSuffix: llm.NotesRetrySuffix, tempScale: llm.RetryTemperatureScale},
}

// Generate produces structured notes for the transcript. A generation
// failure is returned as an error; a structural validation failure
// after the retry is downgraded to Result.Warning.
func Generate(ctx context.Context, gen Generator, transcript, model, lectureType string) (*Result, error) {
	prompt := llm.NotesPrompt(transcript, lectureType)

	var markdown string
	var violations []string
	for i, a := range attempts {
		text, err := gen.Generate(ctx, llm.GenerateRequest{
			Model:       model,
			Prompt:      prompt + a.promptSuffix,
			Temperature: llm.NotesTemperature * a.tempScale,
			MaxTokens:   llm.NotesMaxTokens,
		})
		if err != nil {
			if i > 0 {
				return nil, fmt.Errorf("retry failed: %w", err)
			}
			return nil, err
		}

		markdown = text
		var ok bool
		ok, violations = Validate(markdown)
		if ok {
			violations = nil
			break
		}
	}

	result := &Result{
		Markdown: markdown,
		Document: ParseHierarchy(markdown),
		Stats:    Stats(markdown),
	}
	if len(violations) > 0 {
		result.Warning = fmt.Sprintf("notes structure may be incomplete, issues: %s", strings.Join(violations, ", "))
	}
	return result, nil
}

// Validate checks the documented structural rules for generated notes.
// The thresholds are heuristic and deliberately not strengthened.
func Validate(markdown string) (bool, []string) {
	var errs []string

	if strings.TrimSpace(markdown) == "" {
		return false, []string{"notes are empty"}
	}

	mainTopics := mainTopicRe.FindAllString(markdown, -1)
	if len(mainTopics) < 1 {
		errs = append(errs, "no main topics found, expected at least 1")
	}
	if len(mainTopics) > 15 {
		errs = append(errs, fmt.Sprintf("too many main topics (%d), expected 3-7", len(mainTopics)))
	}

	subtopics := subtopicRe.FindAllString(markdown, -1)
	if len(mainTopics) > 0 && len(subtopics) < 1 {
		errs = append(errs, "no subtopics found, expected at least 1 per main topic")
	}

	bullets := bulletRe.FindAllString(markdown, -1)
	if len(bullets) < 2 {
		errs = append(errs, fmt.Sprintf("too few bullet points (%d), expected some detailed notes", len(bullets)))
	}

	foundMain := false
	for _, line := range strings.Split(markdown, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "### ") {
			foundMain = true
		} else if strings.HasPrefix(stripped, "#### ") && !foundMain {
			errs = append(errs, "subtopic found before any main topic")
			break
		}
	}

	return len(errs) == 0, errs
}

// ParseHierarchy performs a single linear scan over the markdown and
// builds the topic/subtopic tree. Body lines go to the open subtopic,
// or to the main topic itself while no subtopic has opened under it.
// Blank lines are dropped but do not terminate a section.
func ParseHierarchy(markdown string) *models.NotesDocument {
	doc := &models.NotesDocument{}

	var current *models.MainTopic
	var sub *models.Subtopic
	var body []string

	// While no subtopic is open the body buffer belongs to the main
	// topic, so it must survive a no-op flush.
	flushSub := func() {
		if sub == nil {
			return
		}
		if current != nil {
			sub.Content = strings.TrimSpace(strings.Join(body, "\n"))
			current.Subtopics = append(current.Subtopics, *sub)
		}
		sub = nil
		body = nil
	}
	flushMain := func() {
		if current == nil {
			return
		}
		if len(current.Subtopics) == 0 {
			current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		}
		doc.MainTopics = append(doc.MainTopics, *current)
		current = nil
	}

	for _, line := range strings.Split(markdown, "\n") {
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "### "):
			flushSub()
			flushMain()
			current = &models.MainTopic{Title: strings.TrimSpace(stripped[4:])}
			body = nil

		case strings.HasPrefix(stripped, "#### "):
			if sub != nil {
				flushSub()
			} else if current != nil && len(current.Subtopics) == 0 {
				current.Content = strings.TrimSpace(strings.Join(body, "\n"))
			}
			sub = &models.Subtopic{Title: strings.TrimSpace(stripped[5:])}
			body = nil

		default:
			if stripped != "" {
				body = append(body, line)
			}
		}
	}

	flushSub()
	flushMain()

	return doc
}

// Stats computes summary statistics with independent pattern scans over
// the raw markdown, not from the parsed tree.
func Stats(markdown string) models.NotesStats {
	return models.NotesStats{
		MainTopicsCount:  len(mainTopicRe.FindAllString(markdown, -1)),
		SubtopicsCount:   len(subtopicRe.FindAllString(markdown, -1)),
		WordCount:        len(strings.Fields(markdown)),
		CharacterCount:   len(markdown),
		BulletPointCount: len(bulletRe.FindAllString(markdown, -1)),
		KeyConceptCount:  len(boldTermRe.FindAllString(markdown, -1)),
	}
}

// KeyConcept is a bold term with its inline definition.
type KeyConcept struct {
	Term       string
	Definition string
}

// ExtractKeyConcepts returns all "**Term**: definition" pairs.
func ExtractKeyConcepts(markdown string) []KeyConcept {
	var concepts []KeyConcept
	for _, m := range keyConceptRe.FindAllStringSubmatch(markdown, -1) {
		concepts = append(concepts, KeyConcept{
			Term:       strings.TrimSpace(m[1]),
			Definition: strings.TrimSpace(m[2]),
		})
	}
	return concepts
}

// Summary returns a one-line description of the notes structure.
func Summary(markdown string) string {
	s := Stats(markdown)
	return fmt.Sprintf("Generated %d main topics with %d subtopics (%d words total)",
		s.MainTopicsCount, s.SubtopicsCount, s.WordCount)
}
