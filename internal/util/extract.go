package util

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSON pulls a JSON object out of free-form LLM output. Models asked
// for "JSON only" still wrap the object in prose, code fences, or an extra
// layer of quoting, so several strategies are tried in order:
//
//  1. the whole text is valid JSON (a value that is itself a JSON string is
//     parsed one level deeper)
//  2. the text is wrapped in a single layer of quote characters: strip,
//     unescape, parse
//  3. the widest {...} block in the text, parsed as-is and then once more
//     after one level of unescaping
//
// The boolean is false when nothing parses. That is not an error; callers
// fall back to a deterministic default record.
func ExtractJSON(text string) (gjson.Result, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return gjson.Result{}, false
	}

	if gjson.Valid(text) {
		parsed := gjson.Parse(text)
		if parsed.IsObject() {
			return parsed, true
		}
		if parsed.Type == gjson.String {
			inner := strings.TrimSpace(parsed.String())
			if gjson.Valid(inner) && gjson.Parse(inner).IsObject() {
				return gjson.Parse(inner), true
			}
		}
	}

	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			unq := Unescape(text[1 : len(text)-1])
			if gjson.Valid(unq) && gjson.Parse(unq).IsObject() {
				return gjson.Parse(unq), true
			}
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		block := text[start : end+1]
		if gjson.Valid(block) && gjson.Parse(block).IsObject() {
			return gjson.Parse(block), true
		}
		if unq := Unescape(block); gjson.Valid(unq) && gjson.Parse(unq).IsObject() {
			return gjson.Parse(unq), true
		}
	}

	return gjson.Result{}, false
}

// Unescape removes one level of backslash escaping.
func Unescape(s string) string {
	replacer := strings.NewReplacer(
		`\\`, `\`,
		`\"`, `"`,
		`\'`, `'`,
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
	)
	return replacer.Replace(s)
}
