// Package i18n holds the message catalog used for validation error entries.
// Messages are templates keyed by message id; "{name}" placeholders are
// filled from the data map.
package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for message ids. data provides
// values for the template placeholders (for example "expected" or "value").
type Translator interface {
	Message(id string, data map[string]string) string
}

var catalogs = map[string]map[string]string{
	"en": {
		"subschema":       "A subschema had errors",
		"false_schema":    `Constant schema "false"`,
		"invalid_type":    "Incorrect type, expected {expected}",
		"required":        `Required property "{property}" not found`,
		"dependency":      `Required property "{property}" not found (required by "{dependent}")`,
		"invalid_enum":    "Not in enumerated values: {value}",
		"const":           "Does not match constant: {value}",
		"too_small":       "Number fails check: {keyword} {limit}, was {value}",
		"too_big":         "Number fails check: {keyword} {limit}, was {value}",
		"not_multiple":    "Number fails check: multipleOf {limit}, was {value}",
		"too_short":       "String fails length check: {keyword} {limit}, was {value}",
		"too_long":        "String fails length check: {keyword} {limit}, was {value}",
		"items.too_few":   "Array fails number of items check: {keyword} {limit}, was {value}",
		"items.too_many":  "Array fails number of items check: {keyword} {limit}, was {value}",
		"props.too_few":   "Object fails number of properties check: {keyword} {limit}, was {value}",
		"props.too_many":  "Object fails number of properties check: {keyword} {limit}, was {value}",
		"pattern":         "String doesn't match pattern {pattern} - {value}",
		"invalid_format":  `Value fails format check "{format}", was {value}`,
		"uniqueness":      "Array items not unique",
		"contains":        "No matching entry",
		"contains.min":    "Matching entry minimum {limit}, was {value}",
		"contains.max":    "Matching entry maximum {limit}, was {value}",
		"not":             `Schema "not" - target was valid`,
		"union_ambiguous": "Matched {value} subschemas of oneOf, expected exactly one",
		"custom":          "{keyword}: {value}",
		"parse_error":     "parse error",
		"duplicate_key":   "duplicate key",
		"truncated":       "truncated",
	},
	"ja": {
		"subschema":       "サブスキーマにエラーがあります",
		"false_schema":    "常に不一致となるスキーマ \"false\" です",
		"invalid_type":    "型が不正です。期待される型: {expected}",
		"required":        "必須プロパティ \"{property}\" が不足しています",
		"dependency":      "必須プロパティ \"{property}\" が不足しています (\"{dependent}\" により必須)",
		"invalid_enum":    "列挙値に含まれていません: {value}",
		"const":           "定数と一致しません: {value}",
		"too_small":       "数値が小さすぎます: {keyword} {limit}, 実際 {value}",
		"too_big":         "数値が大きすぎます: {keyword} {limit}, 実際 {value}",
		"not_multiple":    "数値が {limit} の倍数ではありません: {value}",
		"too_short":       "短すぎます: {keyword} {limit}, 実際 {value}",
		"too_long":        "長すぎます: {keyword} {limit}, 実際 {value}",
		"items.too_few":   "配列の要素数が少なすぎます: {keyword} {limit}, 実際 {value}",
		"items.too_many":  "配列の要素数が多すぎます: {keyword} {limit}, 実際 {value}",
		"props.too_few":   "プロパティ数が少なすぎます: {keyword} {limit}, 実際 {value}",
		"props.too_many":  "プロパティ数が多すぎます: {keyword} {limit}, 実際 {value}",
		"pattern":         "パターン {pattern} に一致しません: {value}",
		"invalid_format":  "形式 \"{format}\" に一致しません: {value}",
		"uniqueness":      "配列の要素が重複しています",
		"contains":        "条件に一致する要素がありません",
		"contains.min":    "一致する要素が少なすぎます: 最小 {limit}, 実際 {value}",
		"contains.max":    "一致する要素が多すぎます: 最大 {limit}, 実際 {value}",
		"not":             "\"not\" のスキーマに一致しています",
		"union_ambiguous": "oneOf のうち {value} 個に一致しました (1 個のみ許可)",
		"custom":          "{keyword}: {value}",
		"parse_error":     "解析エラー",
		"duplicate_key":   "キーが重複しています",
		"truncated":       "打ち切られました",
	},
}

// dictTranslator is the built-in dictionary-based Translator. Ids missing
// from a language fall back to English, then to the id itself.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(id string, data map[string]string) string {
	tmpl, ok := catalogs[t.lang][id]
	if !ok {
		if tmpl, ok = catalogs["en"][id]; !ok {
			return id
		}
	}
	return Render(tmpl, data)
}

// Render fills {name} placeholders from data. Unknown placeholders are kept.
func Render(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := catalogs[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given id using the current Translator.
func T(id string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(id, data)
}
