package extraction

import (
	"encoding/json"
	"strings"
	"testing"

	"contractapi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requiredKeys = []string{"accordion", "tables", "timeline", "summary", "tasks", "deadlines", "propertyDetails"}

func TestBuildPrompt(t *testing.T) {
	t.Run("short text is embedded unmodified", func(t *testing.T) {
		text := "Purchase price $450,000. Closing on 2025-03-01."
		p := BuildPrompt(text)
		assert.True(t, strings.HasSuffix(p, "### DOCUMENT CONTENT:\n"+text+"\n"))
		assert.NotContains(t, p, TruncationMarker)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, BuildPrompt("abc"), BuildPrompt("abc"))
	})

	t.Run("empty document still yields a prompt", func(t *testing.T) {
		p := BuildPrompt("")
		assert.Contains(t, p, "### OUTPUT SCHEMA")
		for _, k := range requiredKeys {
			assert.Contains(t, p, `"`+k+`"`)
		}
		assert.True(t, strings.HasSuffix(p, "### DOCUMENT CONTENT:\n\n"))
	})

	t.Run("long text is truncated with marker", func(t *testing.T) {
		head := strings.Repeat("a", MaxTextChars)
		p := BuildPrompt(head + "TAIL")
		assert.Contains(t, p, head+TruncationMarker)
		assert.NotContains(t, p, "TAIL")
	})
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "exactly at cap", in: strings.Repeat("x", MaxTextChars), want: strings.Repeat("x", MaxTextChars)},
		{name: "one over cap", in: strings.Repeat("x", MaxTextChars+1), want: strings.Repeat("x", MaxTextChars) + TruncationMarker},
		{
			name: "counts characters not bytes",
			in:   strings.Repeat("é", MaxTextChars) + "ü",
			want: strings.Repeat("é", MaxTextChars) + TruncationMarker,
		},
		{
			name: "multibyte under cap kept",
			in:   strings.Repeat("é", MaxTextChars),
			want: strings.Repeat("é", MaxTextChars),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateText(tt.in))
		})
	}
}

func TestRecoverJSON(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantStage   RecoveryStage
		wantSummary any
	}{
		{name: "direct object", in: `{"summary":"direct"}`, wantStage: StageDirect, wantSummary: "direct"},
		{name: "json fence", in: "```json\n{\"summary\":\"ok\"}\n```", wantStage: StageCleaned, wantSummary: "ok"},
		{name: "bare fence", in: "```\n{\"summary\":\"bare\"}\n```", wantStage: StageCleaned, wantSummary: "bare"},
		{name: "prose around object", in: "Here you go:\n{\"summary\":\"prose\"}\nThanks!", wantStage: StageCleaned, wantSummary: "prose"},
		{name: "empty string", in: "", wantStage: StageFallback, wantSummary: FallbackSummary},
		{name: "plain prose", in: "I cannot help with that.", wantStage: StageFallback, wantSummary: FallbackSummary},
		{name: "unbalanced braces", in: `{"summary": "cut off`, wantStage: StageFallback, wantSummary: FallbackSummary},
		{name: "closing before opening", in: "} nothing {", wantStage: StageFallback, wantSummary: FallbackSummary},
		{name: "top-level array", in: `[1,2,3]`, wantStage: StageFallback, wantSummary: FallbackSummary},
		{name: "json null", in: `null`, wantStage: StageFallback, wantSummary: FallbackSummary},
		{name: "array wrapping object", in: `[{"summary":"inner"}]`, wantStage: StageCleaned, wantSummary: "inner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, stage := RecoverJSON(tt.in)
			require.NotNil(t, obj)
			assert.Equal(t, tt.wantStage, stage)
			assert.Equal(t, tt.wantSummary, obj["summary"])
		})
	}
}

func TestRecoverJSON_FencedSummaryOnly(t *testing.T) {
	obj, _ := RecoverJSON("```json\n{\"summary\":\"ok\"}\n```")
	assert.Equal(t, map[string]any{"summary": "ok"}, obj)

	decoded, warnings := Decode(obj)
	assert.Empty(t, warnings)
	r := Normalize(decoded)
	assert.Equal(t, "ok", r.Summary)
	assert.NotNil(t, r.Accordion)
	assert.Empty(t, r.Accordion)
	assert.NotNil(t, r.Tables)
	assert.Empty(t, r.Tables)
	assert.NotNil(t, r.Timeline)
	assert.NotNil(t, r.Tasks)
	assert.NotNil(t, r.Deadlines)
	assert.NotNil(t, r.PropertyDetails.DatesAndDeadlines)
}

func TestNormalize_AlwaysHasRequiredKeys(t *testing.T) {
	inputs := map[string]model.StructuredResult{
		"zero value":           {},
		"summary only":         {Summary: "ok"},
		"tasks only":           {Tasks: []model.Task{{Title: "Sign"}}},
		"tables with nil rows": {Tables: []model.Table{{Title: "Fees"}}},
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			b, err := json.Marshal(Normalize(in))
			require.NoError(t, err)

			var m map[string]any
			require.NoError(t, json.Unmarshal(b, &m))
			assert.Len(t, m, len(requiredKeys))
			for _, k := range requiredKeys {
				require.Contains(t, m, k)
			}
			for _, k := range []string{"accordion", "tables", "timeline", "tasks", "deadlines"} {
				assert.IsType(t, []any{}, m[k], k)
			}
			assert.IsType(t, "", m["summary"])
			pd, ok := m["propertyDetails"].(map[string]any)
			require.True(t, ok)
			assert.IsType(t, []any{}, pd["datesAndDeadlines"])

			assert.NoError(t, Validate(Normalize(in)))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := model.StructuredResult{
		Summary: "  Buyer purchases 12 Elm St.  ",
		Accordion: []model.QA{
			{Question: " Who is the buyer? ", Answer: "Jane ", Page: 1},
		},
		Tables: []model.Table{
			{Title: "Fees", Headers: []string{" Item ", "Amount"}, Rows: [][]string{{"Deposit", " 5000 "}}, Page: 2},
			{Title: "Empty"},
		},
		Timeline: []model.Milestone{
			{Milestone: "Closing", Date: "March 1, 2025"},
			{Milestone: "Walkthrough", Date: "sometime"},
		},
		Tasks: []model.Task{
			{ID: 1, Title: "Deposit", DueDate: "03/05/2025", Priority: "high"},
			{ID: 2, Title: "Inspect", DueDate: "tbd", Priority: "urgent"},
		},
		Deadlines: []model.Deadline{
			{Name: "Inspection", Deadline: "2025-02-15T00:00:00Z", RelatedTask: "Inspect"},
		},
		PropertyDetails: model.PropertyDetails{
			DatesAndDeadlines: []model.DateEntry{{ItemNo: 1, Event: "Effective Date", Deadline: ""}},
		},
	}

	once := Normalize(in)
	twice := Normalize(once)
	assert.Equal(t, once, twice)

	assert.Equal(t, "Buyer purchases 12 Elm St.", once.Summary)
	assert.Equal(t, "2025-03-01", once.Timeline[0].Date)
	assert.Equal(t, model.DateTBD, once.Timeline[1].Date)
	assert.Equal(t, "2025-03-05", once.Tasks[0].DueDate)
	assert.Equal(t, model.PriorityHigh, once.Tasks[0].Priority)
	assert.Equal(t, model.DateTBD, once.Tasks[1].DueDate)
	assert.Equal(t, "", once.Tasks[1].Priority)
	assert.Equal(t, "2025-02-15", once.Deadlines[0].Deadline)
	assert.Equal(t, model.DateTBD, once.PropertyDetails.DatesAndDeadlines[0].Deadline)
	assert.Equal(t, []string{"Item", "Amount"}, once.Tables[0].Headers)
	assert.Equal(t, [][]string{{"Deposit", "5000"}}, once.Tables[0].Rows)
	assert.NotNil(t, once.Tables[1].Headers)
	assert.NotNil(t, once.Tables[1].Rows)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-31", "2025-01-31"},
		{"01/31/2025", "2025-01-31"},
		{"1/5/2025", "2025-01-05"},
		{"January 31, 2025", "2025-01-31"},
		{"Jan 31, 2025", "2025-01-31"},
		{"31 January 2025", "2025-01-31"},
		{"2025/01/31", "2025-01-31"},
		{"", model.DateTBD},
		{"  TBD ", model.DateTBD},
		{"__/__/____", model.DateTBD},
		{"within 5 days", model.DateTBD},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestDecode_Tolerance(t *testing.T) {
	raw := `{
		"accordion": [{"question":"Q","answer":"A","page":"3"}, "stray", {"question":"Q2","answer":"A2","page":{"n":1}}],
		"tables": [{"title":"Fees","headers":["Item",2024],"rows":[["Deposit",5000],"solo"],"page":"Page 4"}],
		"timeline": {"not":"an array"},
		"summary": 42,
		"tasks": [{"id":"#7","title":"Sign","dueDate":"2025-01-01","relatedTo":"Closing"}],
		"deadlines": null,
		"propertyDetails": {"datesAndDeadlines":[{"itemNo":"2","event":"Acceptance","deadline":"TBD"}]}
	}`
	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &obj))

	r, warnings := Decode(obj)

	require.Len(t, r.Accordion, 2)
	assert.Equal(t, model.Page(3), r.Accordion[0].Page)
	assert.Equal(t, model.Page(0), r.Accordion[1].Page)

	require.Len(t, r.Tables, 1)
	assert.Equal(t, []string{"Item", "2024"}, r.Tables[0].Headers)
	assert.Equal(t, [][]string{{"Deposit", "5000"}, {"solo"}}, r.Tables[0].Rows)
	assert.Equal(t, model.Page(4), r.Tables[0].Page)

	assert.Empty(t, r.Timeline)
	assert.Empty(t, r.Summary)

	require.Len(t, r.Tasks, 1)
	assert.Equal(t, model.Seq(7), r.Tasks[0].ID)

	require.Len(t, r.PropertyDetails.DatesAndDeadlines, 1)
	assert.Equal(t, model.Seq(2), r.PropertyDetails.DatesAndDeadlines[0].ItemNo)

	assert.Contains(t, warnings, "accordion[1]: not an object")
	assert.Contains(t, warnings, "timeline: not an array")
	assert.Contains(t, warnings, "summary: not a string")
	assert.Len(t, warnings, 3)

	n := Normalize(r)
	assert.Equal(t, NoSummary, n.Summary)
	assert.NoError(t, Validate(n))
}

func TestFromResponse_Fallback(t *testing.T) {
	r, stage, warnings := FromResponse("the model is thinking...")
	assert.Equal(t, StageFallback, stage)
	assert.Empty(t, warnings)
	assert.Equal(t, FallbackSummary, r.Summary)
	assert.Empty(t, r.Tasks)
}

func TestFromResponse_HugePageStaysValid(t *testing.T) {
	r, stage, _ := FromResponse(`{"accordion":[{"question":"q","answer":"a","page":1e20}]}`)
	assert.Equal(t, StageDirect, stage)
	require.Len(t, r.Accordion, 1)
	assert.Equal(t, model.Page(0), r.Accordion[0].Page)
	assert.NoError(t, Validate(r))
}

func TestFailureResult(t *testing.T) {
	r := FailureResult("Rate limit exceeded.")
	assert.Equal(t, "Error processing document: Rate limit exceeded.", r.Summary)
	assert.Equal(t, r, Normalize(r))
}

func TestValidate_RejectsBadDate(t *testing.T) {
	r := Fallback("x")
	r.Deadlines = append(r.Deadlines, model.Deadline{Name: "Closing", Deadline: "next week"})
	assert.Error(t, Validate(r))
}
