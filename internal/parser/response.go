// Package parser decodes raw model replies into generated SJT items.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"sjt-studio/internal/domain"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

const fence = "```"

type sjtPayload struct {
	CompetencyName string          `json:"competency_name"`
	SJT            *sjtBody        `json:"sjt"`
	Rationale      json.RawMessage `json:"validation_rationale"`
}

type sjtBody struct {
	Situation string          `json:"situation"`
	Question  string          `json:"question"`
	Options   []optionPayload `json:"options"`
}

type optionPayload struct {
	Text      string `json:"option_text"`
	Indicator string `json:"indicator_mapping"`
}

// ParseSJT decodes a raw reply. It returns a PARSE_ERROR domain error, and
// never a partially filled item, when the reply is not a usable payload.
func ParseSJT(raw string) (*domain.GeneratedItem, error) {
	payloadText := ExtractPayload(raw)
	if payloadText == "" {
		return nil, domain.NewParseError("empty reply", nil)
	}

	var payload sjtPayload
	if err := json.Unmarshal([]byte(payloadText), &payload); err != nil {
		return nil, domain.NewParseError("reply is not a valid JSON payload", err)
	}
	if payload.SJT == nil {
		return nil, domain.NewParseError("reply has no \"sjt\" object", nil)
	}

	item := &domain.GeneratedItem{
		CompetencyName: strings.TrimSpace(payload.CompetencyName),
		Situation:      strings.TrimSpace(payload.SJT.Situation),
		Question:       strings.TrimSpace(payload.SJT.Question),
		Rationale:      decodeRationale(payload.Rationale),
	}
	for _, op := range payload.SJT.Options {
		lvl, _ := domain.ParseLevel(op.Indicator)
		item.Options = append(item.Options, domain.SJTOption{
			Text:  strings.TrimSpace(op.Text),
			Level: lvl,
			Label: strings.TrimSpace(op.Indicator),
		})
	}
	return item, nil
}

// ExtractPayload strips reasoning blocks and code fences and narrows the text
// to its outermost JSON object. Text that is already valid JSON is returned
// as is. A fence counts as a wrapper only when it opens before the first
// '{', so backticks inside string values are left alone.
func ExtractPayload(raw string) string {
	text := strings.TrimSpace(thinkBlock.ReplaceAllString(strings.TrimSpace(raw), ""))
	if json.Valid([]byte(text)) {
		return text
	}

	start := strings.IndexByte(text, '{')
	if f := strings.Index(text, fence); f != -1 && (start == -1 || f < start) {
		body, rest := unfence(text[f:])
		if json.Valid([]byte(body)) {
			return body
		}
		if narrowed := narrow(body); json.Valid([]byte(narrowed)) {
			return narrowed
		}
		return narrow(rest)
	}
	return narrow(text)
}

// unfence drops the opening fence and its language tag. body ends at the
// last closing fence; rest is everything after the opener, for replies
// whose closing fence is missing.
func unfence(text string) (body, rest string) {
	rest = strings.TrimPrefix(text, fence)
	rest = strings.TrimLeftFunc(rest, func(r rune) bool {
		return r == '_' || r == '+' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	rest = strings.TrimLeft(rest, " \t\r\n")
	body = rest
	if end := strings.LastIndex(rest, fence); end != -1 {
		body = rest[:end]
	}
	return strings.TrimSpace(body), strings.TrimSpace(rest)
}

// narrow cuts text to the span from the first '{' to the last '}'. A
// top-level array or text without such a span is returned unchanged.
func narrow(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "[") {
		return text
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

// decodeRationale accepts either a plain string or an object of strings.
// Anything else is treated as absent.
func decodeRationale(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}

	var lines []string
	used := make(map[string]bool)
	for _, lvl := range domain.Levels {
		key := strings.ToLower(strings.ReplaceAll(string(lvl), " ", "_")) + "_rationale"
		if v := strings.TrimSpace(m[key]); v != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", lvl, v))
		}
		used[key] = true
	}

	var rest []string
	for k := range m {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if v := strings.TrimSpace(m[k]); v != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}
