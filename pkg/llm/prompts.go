package llm

import (
	"fmt"
	"strings"
)

// Recommended generation settings per task.
const (
	NotesTemperature = 0.3
	NotesMaxTokens   = 4096

	ActionsTemperature = 0.2
	ActionsMaxTokens   = 3072

	TitleTemperature = 0.2
	TitleMaxTokens   = 50
)

// RetryTemperatureScale lowers the sampling temperature on the single
// format-reinforcement retry.
const RetryTemperatureScale = 0.8

// Retry suffixes appended to the original prompt when the first
// response fails structural checks.
const (
	NotesRetrySuffix   = "\n\nCRITICAL: You MUST use the exact markdown format specified above. Start with ### for main topics and #### for subtopics."
	ActionsRetrySuffix = "\n\nCRITICAL: You MUST use the exact format specified above with markdown headers (###) and bullet points. Include ALL action items mentioned."
)

// NoActionItemsPhrase is the model's literal signal that the lecture
// contains nothing actionable. Matched case-insensitively.
const NoActionItemsPhrase = "no action items identified"

const notesPromptGeneral = `You are an expert academic note-taker specialized in creating structured, hierarchical lecture notes from transcripts.

Your task is to analyze the following lecture transcript and produce comprehensive class notes with:

## Requirements:

1. **Main Topics**: Identify 3-7 major themes or subjects covered in the lecture
   - Use ### for main topic headings
   - Each topic should represent a distinct concept or section
   - Topics should be ordered logically as presented in the lecture

2. **Subtopics**: Under each main topic, list 2-5 key subtopics
   - Use #### for subtopic headings
   - Include explanatory details in bullet points
   - Each subtopic should clearly relate to its parent topic

3. **Key Concepts**: Highlight important terms, definitions, theories, or principles
   - Use **bold** for key terms and definitions
   - Use *italic* for emphasis or examples
   - Preserve technical terminology exactly as stated

4. **Hierarchical Organization**:
   - Main topics at the top level (###)
   - Subtopics nested under main topics (####)
   - Supporting details as bullet points under subtopics
   - Maintain logical flow from general to specific

## Important Guidelines:

- Do NOT include greetings, administrative announcements, or off-topic discussions
- Do NOT invent information not present in the transcript
- If the lecturer expresses uncertainty, preserve that uncertainty in the notes
- If the transcript is unclear, infer the most likely meaning but flag ambiguity with [unclear]
- Do NOT use markdown code blocks - use regular markdown formatting only

---

TRANSCRIPT:
%s

---

Generate the structured class notes now. Begin with the first main topic (###) immediately - do not include any preamble or meta-commentary:`

const notesPromptSTEM = `You are an expert note-taker for STEM (Science, Technology, Engineering, Mathematics) lectures.

Your task is to create structured notes from the following lecture transcript with special attention to:

## STEM-Specific Requirements:

1. **Mathematical Content**: Preserve equations and formulas exactly as described, including step-by-step derivations when presented
2. **Technical Accuracy**: Maintain precise terminology, variable definitions, units, assumptions and constraints
3. **Problem-Solving Approaches**: Document methods and algorithms clearly, include example problems and common pitfalls mentioned
4. **Diagrams and Visualizations**: Describe any diagrams or visual aids mentioned, including labels and annotations

## Format Requirements:

- Use ### for 3-7 main topic headings and #### for 2-5 subtopics under each
- Use **bold** for key terms and definitions, *italic* for examples
- Supporting details as bullet points under subtopics
- Do NOT use markdown code blocks

---

TRANSCRIPT:
%s

---

Generate the structured STEM lecture notes now. Begin with the first main topic (###) immediately:`

const notesPromptHumanities = `You are an expert note-taker for humanities lectures (History, Literature, Philosophy, etc.).

Your task is to create structured notes from the following lecture transcript with special attention to:

## Humanities-Specific Requirements:

1. **Historical Context**: Include dates, periods, figures and chronological relationships
2. **Textual Analysis**: Include quotations with sources, interpretations and multiple perspectives
3. **Thematic Connections**: Identify recurring themes, comparisons and cultural context
4. **Argumentation Structure**: Capture thesis statements, supporting evidence and scholarly debates mentioned

## Format Requirements:

- Use ### for 3-7 main topic headings and #### for 2-5 subtopics under each
- Use **bold** for key terms and definitions, *italic* for examples
- Supporting details as bullet points under subtopics
- Do NOT use markdown code blocks

---

TRANSCRIPT:
%s

---

Generate the structured humanities lecture notes now. Begin with the first main topic (###) immediately:`

const actionsPromptTemplate = `You are an expert at extracting and categorizing action items from academic lecture transcripts.

Your task is to identify ALL actionable items mentioned in the lecture: assignments, required readings, project deadlines, exam dates, suggested readings, topics to review, lab work, and any other tasks for students.

## Output Format:

For each action item, provide:
1. **Category**: One of [Assignment, Reading (Required), Reading (Suggested), Exam, Deadline, Review Topic, Lab/Practical, Other]
2. **Description**: Clear, concise description of the task
3. **Due Date**: Exact date if mentioned, or "Not specified"
4. **Priority**: [High, Medium, Low] based on emphasis and urgency
5. **Context**: Brief quote from the transcript showing where this was mentioned

Present the output grouped under category headers using this exact format:

### Assignments
- **Description**: [Task description]
  - **Due Date**: [Date or "Not specified"]
  - **Priority**: [High/Medium/Low]
  - **Context**: "[Quote from transcript]"

## Priority Guidelines:

- High: exams, required assignments with near deadlines, explicitly emphasized items
- Medium: standard assignments, required readings, regular lab work
- Low: suggested readings, general review recommendations, future preparation

## Important Guidelines:

- Extract EVERY actionable item, even if minor or mentioned briefly
- Infer due dates from context when possible
- If NO action items are present, return ONLY: "No action items identified in this lecture."
- Do NOT invent tasks not mentioned in the transcript
- Use exact quotes for context when possible

---

%sTRANSCRIPT:
%s

---

Extract and categorize all action items now. If there are no action items, simply state "No action items identified in this lecture." Otherwise, use the exact format above:`

const titlePromptTemplate = `Based on the following lecture transcript excerpt, generate a concise, descriptive title for this lecture.

Requirements:
- Keep it SHORT (3-8 words maximum)
- Focus on the main topic or subject
- Use formal academic language
- Do NOT include quotation marks
- Do NOT include words like "Lecture on" or "Introduction to" unless essential

Transcript excerpt:
%s

Generate ONLY the title, nothing else:`

// NotesPrompt builds the notes-generation prompt for a lecture type
// ("general", "stem" or "humanities"). Unknown types fall back to the
// general template.
func NotesPrompt(transcript, lectureType string) string {
	template := notesPromptGeneral
	switch strings.ToLower(lectureType) {
	case "stem":
		template = notesPromptSTEM
	case "humanities":
		template = notesPromptHumanities
	}
	return fmt.Sprintf(template, transcript)
}

// ActionsPrompt builds the action-item extraction prompt. When
// lectureDate is set, a date line precedes the transcript so the model
// can resolve relative dates.
func ActionsPrompt(transcript, lectureDate string) string {
	dateLine := ""
	if lectureDate != "" {
		dateLine = fmt.Sprintf("LECTURE DATE: %s\n\n", lectureDate)
	}
	return fmt.Sprintf(actionsPromptTemplate, dateLine, transcript)
}

// TitlePrompt builds the auto-title prompt from a transcript sample.
func TitlePrompt(sample string) string {
	return fmt.Sprintf(titlePromptTemplate, sample)
}
