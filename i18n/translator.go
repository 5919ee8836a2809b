// Package i18n holds the messages used in reports, keyed by issue code.
package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides values substituted into {placeholders} (for example,
// "candidate" or "path").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"missing_key":    "missing key {path}",
		"shape_mismatch": "shape mismatch at {path}",
		"duplicate_key":  "duplicate key",
		"parse_error":    "parse error",
		"truncated":      "truncated",
		"no_candidates":  "No candidate documents found to validate.",
		"load_failure":   "Error loading {candidate}: {cause}",
		"missing_header": "Missing keys in {candidate}:",
		"all_present":    "All candidate documents contain all template keys.",
	},
	"ja": {
		"missing_key":    "キー {path} がありません",
		"shape_mismatch": "{path} の構造が一致しません",
		"duplicate_key":  "キーが重複しています",
		"parse_error":    "解析エラー",
		"truncated":      "打ち切られました",
		"no_candidates":  "検証対象のドキュメントが見つかりません。",
		"load_failure":   "{candidate} の読み込みに失敗しました: {cause}",
		"missing_header": "{candidate} に不足しているキー:",
		"all_present":    "すべてのドキュメントにテンプレートのキーが揃っています。",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return expand(msg, data)
}

func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// Supported reports whether the built-in dictionary knows lang.
func Supported(lang string) bool {
	_, ok := dictionaries[lang]
	return ok
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
