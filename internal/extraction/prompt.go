package extraction

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextChars caps the extracted text embedded in a prompt, in characters.
	MaxTextChars = 45000

	// TruncationMarker is appended when the extracted text exceeds MaxTextChars.
	TruncationMarker = "\n\n[Document truncated due to length...]"

	// SchemaVersion identifies the output schema the prompt asks for.
	SchemaVersion = "2"
)

const promptPreamble = `You are Ava, an expert real estate contract intelligence assistant.
Analyze the contract text below thoroughly and extract comprehensive structured JSON data.
Return exactly one JSON object. Do not wrap it in markdown and do not write any text before or after it.
`

const promptSchema = `### OUTPUT SCHEMA (version ` + SchemaVersion + `):
{
  "propertyDetails": {
    "datesAndDeadlines": [
      { "itemNo": 1, "reference": "string", "event": "string", "deadline": "YYYY-MM-DD or 'TBD'" }
    ]
  },
  "tasks": [
    { "id": 1, "title": "string", "dueDate": "YYYY-MM-DD or 'TBD'", "relatedTo": "string", "priority": "High | Medium | Low" }
  ],
  "accordion": [
    { "question": "string", "answer": "string", "page": 1 }
  ],
  "tables": [
    { "title": "string", "headers": ["string"], "rows": [["string"]], "page": 1 }
  ],
  "timeline": [
    { "milestone": "string", "date": "YYYY-MM-DD or 'TBD'", "description": "string", "page": 1 }
  ],
  "summary": "Plain-language summary in 5-7 sentences covering key terms, responsibilities and parties.",
  "deadlines": [
    { "name": "string", "deadline": "YYYY-MM-DD or 'TBD'", "relatedTask": "string", "page": 1 }
  ]
}
`

const promptInstructions = `### INSTRUCTIONS:
- Return a single valid JSON object only.
- First fill propertyDetails.datesAndDeadlines as an item-numbered list (Item No., Reference, Event, Deadline).
- Every deadline must produce a corresponding task; set the task's relatedTo and the deadline's relatedTask so they point at each other.
- Then fill accordion, tables, timeline, summary and deadlines.
- Include all key obligations, deadlines and milestones: offer acceptance, inspection, financing, appraisal, closing, contingency periods, lease or rent deadlines, signatures.
- Format every date as YYYY-MM-DD. Use the literal "TBD" when a date is blank, missing or a placeholder.
- Timeline covers all chronological events, not only deadlines: notices, approvals, payments, contingencies.
- Assign task priority (High, Medium or Low) where it can be judged.
- The summary names the parties, the property, the financial terms, the major deadlines and the risk points.
- Include page numbers wherever they can be derived.
- If a section has no data, return an empty array for it. Never omit a key.
`

// BuildPrompt renders the extraction prompt for the given document text.
// The output depends only on text and SchemaVersion.
func BuildPrompt(text string) string {
	body := TruncateText(text)

	var b strings.Builder
	b.Grow(len(promptPreamble) + len(promptSchema) + len(promptInstructions) + len(body) + 32)
	b.WriteString(promptPreamble)
	b.WriteString("\n")
	b.WriteString(promptSchema)
	b.WriteString("\n")
	b.WriteString(promptInstructions)
	b.WriteString("\n### DOCUMENT CONTENT:\n")
	b.WriteString(body)
	b.WriteString("\n")
	return b.String()
}

// TruncateText keeps the first MaxTextChars characters of text and appends
// TruncationMarker when anything was cut.
func TruncateText(text string) string {
	if len(text) <= MaxTextChars || utf8.RuneCountInString(text) <= MaxTextChars {
		return text
	}
	n := 0
	for i := range text {
		if n == MaxTextChars {
			return text[:i] + TruncationMarker
		}
		n++
	}
	return text
}
