package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "min" or "type"). Placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"io_failure":               "input/output failure",
		"undefined_line_type":      "no line type matches the line",
		"insufficient_line_length": "line is shorter than {want} characters",
		"line_overflow":            "line has {extra} characters beyond its last cell",
		"mandatory_missing":        "mandatory cell {cell} is empty",
		"cell_parse_failure":       "cannot read \"{raw}\" as {type}",
		"range_violation":          "value \"{value}\" is outside the {bound} bound \"{limit}\"",
		"cell_format_failure":      "cannot write cell {cell} as {type}",
	},
	"sv": {
		"io_failure":               "in- eller utmatningsfel",
		"undefined_line_type":      "ingen radtyp matchar raden",
		"insufficient_line_length": "raden är kortare än {want} tecken",
		"line_overflow":            "raden har {extra} tecken efter sista cellen",
		"mandatory_missing":        "den obligatoriska cellen {cell} är tom",
		"cell_parse_failure":       "kan inte läsa \"{raw}\" som {type}",
		"range_violation":          "värdet \"{value}\" ligger utanför gränsen {bound} \"{limit}\"",
		"cell_format_failure":      "kan inte skriva cellen {cell} som {type}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator atomic.Value

func init() { currentTranslator.Store(Translator(dictTranslator{lang: "en"})) }

// Languages lists the built-in dictionaries.
func Languages() []string { return []string{"en", "sv"} }

// SetLanguage switches the built-in Translator language ("en"/"sv").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	currentTranslator.Store(Translator(dictTranslator{lang: lang}))
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	currentTranslator.Store(tr)
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return currentTranslator.Load().(Translator).Message(code, data)
}
