package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional values to embed in the message ("key", "path").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {key} and {path} placeholders.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"unexpected_token":       "unexpected token at {path}",
		"duplicate_value":        "multiple values for {key} at {path}",
		"missing_required_value": "required value {key} missing at {path}",
		"invalid_type":           "invalid type at {path}",
		"invalid_format":         "invalid format at {path}",
		"overflow":               "number out of range at {path}",
		"construct_failed":       "construction failed at {path}",
		"parse_error":            "parse error at {path}",
		"truncated":              "input truncated at {path}",
	},
	"ja": {
		"unexpected_token":       "{path} で予期しないトークンです",
		"duplicate_value":        "{path} で {key} の値が重複しています",
		"missing_required_value": "{path} で必須の値 {key} が不足しています",
		"invalid_type":           "{path} の型が不正です",
		"invalid_format":         "{path} の形式が不正です",
		"overflow":               "{path} の数値が範囲外です",
		"construct_failed":       "{path} で生成に失敗しました",
		"parse_error":            "{path} で解析エラー",
		"truncated":              "{path} で打ち切られました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
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
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
