package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjt-studio/internal/domain"
)

const validPayload = `{
  "competency_name": "Agility",
  "sjt": {
    "situation": "A new C2 platform is rolled out.",
    "question": "What is the most effective action?",
    "options": [
      { "option_text": "Run informal training.", "indicator_mapping": "positive_high" },
      { "option_text": "Follow the schedule.", "indicator_mapping": "positive_low" },
      { "option_text": "Complain in debriefs.", "indicator_mapping": "negative_low" },
      { "option_text": "Keep the old system.", "indicator_mapping": "negative_high" }
    ]
  },
  "validation_rationale": {
    "negative_high_rationale": "Rejects change.",
    "positive_high_rationale": "Champions change."
  }
}`

func TestParseSJT_WrappedAndUnwrappedAgree(t *testing.T) {
	want, err := ParseSJT(validPayload)
	require.NoError(t, err)

	inputs := map[string]string{
		"json fence":           "```json\n" + validPayload + "\n```",
		"fence no tag":         "```\n" + validPayload + "\n```",
		"fence other tag":      "```JSON5\n" + validPayload + "```",
		"fence extra spaces":   "  \n```json   \n\n" + validPayload + "\n\n```  \n",
		"fence same line":      "```json " + validPayload + "```",
		"prose around fence":   "Here is the SJT:\n```json\n" + validPayload + "\n```\nLet me know.",
		"prose without fence":  "Sure! " + validPayload + " Hope this helps.",
		"think block":          "<think>plan the scenario {draft}</think>\n" + validPayload,
		"unterminated fence":   "```json\n" + validPayload,
		"windows line endings": "```json\r\n" + validPayload + "\r\n```",
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := ParseSJT(raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

const backtickPayload = `{"competency_name":"Agility","sjt":{"situation":"The runbook shows ` + "```deploy```" + ` as the command.","question":"What do you do?","options":[{"option_text":"Run it.","indicator_mapping":"positive_high"}]},"validation_rationale":"ok"}`

func TestParseSJT_BackticksInsideStrings(t *testing.T) {
	inputs := map[string]string{
		"bare":                backtickPayload,
		"json fence":          "```json\n" + backtickPayload + "\n```",
		"prose and fence":     "Here it is:\n```\n" + backtickPayload + "\n```\nDone.",
		"prose without fence": "Sure. " + backtickPayload + " Thanks.",
		"unterminated fence":  "```json\n" + backtickPayload,
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, backtickPayload, ExtractPayload(raw))

			item, err := ParseSJT(raw)
			require.NoError(t, err)
			assert.Equal(t, "The runbook shows ```deploy``` as the command.", item.Situation)
			assert.Equal(t, "What do you do?", item.Question)
			require.Len(t, item.Options, 1)
		})
	}
}

func TestParseSJT_Fields(t *testing.T) {
	item, err := ParseSJT(validPayload)
	require.NoError(t, err)

	assert.Equal(t, "Agility", item.CompetencyName)
	assert.Equal(t, "A new C2 platform is rolled out.", item.Situation)
	assert.Equal(t, "What is the most effective action?", item.Question)
	require.Len(t, item.Options, 4)
	assert.Equal(t, domain.LevelPositiveHigh, item.Options[0].Level)
	assert.Equal(t, "positive_high", item.Options[0].Label)
	assert.Equal(t, domain.LevelNegativeHigh, item.Options[3].Level)
	assert.Equal(t, "Positive High: Champions change.\nNegative High: Rejects change.", item.Rationale)
}

func TestParseSJT_MalformedRepliesFail(t *testing.T) {
	inputs := map[string]string{
		"empty":             "",
		"whitespace":        "   \n\t ",
		"plain prose":       "I cannot help with that.",
		"truncated json":    `{"sjt": {"situation": "x", "question": `,
		"fenced garbage":    "```json\nnot json at all\n```",
		"missing sjt":       `{"competency_name": "Agility"}`,
		"null sjt":          `{"sjt": null}`,
		"json null":         `null`,
		"array":             `[{"sjt": {}}]`,
		"wrong option type": `{"sjt": {"situation": "s", "options": "none"}}`,
		"reversed braces":   "} {",
		"only fence":        "```",
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			var (
				item *domain.GeneratedItem
				err  error
			)
			assert.NotPanics(t, func() { item, err = ParseSJT(raw) })
			assert.Nil(t, item)
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, domain.ErrParse))
		})
	}
}

func TestParseSJT_MissingSubFieldsAreTolerated(t *testing.T) {
	item, err := ParseSJT(`{"sjt": {"situation": "Only a situation."}}`)
	require.NoError(t, err)

	assert.Equal(t, "Only a situation.", item.Situation)
	assert.Empty(t, item.Question)
	assert.Empty(t, item.Options)
	assert.Empty(t, item.Rationale)
}

func TestParseSJT_UnknownIndicatorLabelIsKept(t *testing.T) {
	item, err := ParseSJT(`{"sjt": {"options": [{"option_text": "t", "indicator_mapping": "Neutral"}]}}`)
	require.NoError(t, err)
	require.Len(t, item.Options, 1)

	assert.Equal(t, domain.LevelUnknown, item.Options[0].Level)
	assert.Equal(t, "Neutral", item.Options[0].IndicatorLabel())
}

func TestDecodeRationale(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"absent", ``, ""},
		{"string", `"  Because.  "`, "Because."},
		{"object ordered by level then key", `{"zeta": "z", "negative_low_rationale": "nl", "alpha": "a"}`, "Negative Low: nl\nalpha: a\nzeta: z"},
		{"number", `42`, ""},
		{"nested object", `{"positive_high_rationale": {"x": 1}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeRationale([]byte(tt.raw)))
		})
	}
}
