package lsp

import (
	"strings"
	"unicode"

	"go.lsp.dev/protocol"
)

// Span highlights Code[Start:End] with a theme capture name.
type Span struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Highlight string `json:"highlight"`
}

// CodeLabel is how a completion is rendered in the menu. FilterEnd bounds
// the prefix of Code used for fuzzy matching.
type CodeLabel struct {
	Code      string `json:"code"`
	Spans     []Span `json:"spans"`
	FilterEnd int    `json:"filter_end"`
}

// Variables PHP defines implicitly; rendered like comments so they stand
// out from user variables.
var reservedVariables = map[string]struct{}{
	"argc":                 {},
	"argv":                 {},
	"php_errormsg":         {},
	"http_response_header": {},
}

// LabelForCompletion renders an intelephense completion item. Other servers
// and unhandled kinds produce no label.
func LabelForCompletion(serverID string, item protocol.CompletionItem) (*CodeLabel, bool) {
	if serverID != Intelephense {
		return nil, false
	}
	label := item.Label
	detail := strings.TrimSpace(item.Detail)

	switch item.Kind {
	case protocol.CompletionItemKindMethod, protocol.CompletionItemKindFunction:
		code := label
		if idx := strings.Index(detail, "("); idx >= 0 {
			code = label + detail[idx:]
		}
		return &CodeLabel{
			Code:      code,
			Spans:     []Span{{Start: 0, End: len(label), Highlight: "function"}},
			FilterEnd: len(label),
		}, true

	case protocol.CompletionItemKindConstant, protocol.CompletionItemKindEnumMember:
		code := label
		spans := []Span{{Start: 0, End: len(label), Highlight: "constant"}}
		if detail != "" {
			code = label + " " + detail
			spans = append(spans, Span{Start: len(label) + 1, End: len(code), Highlight: "comment"})
		}
		return &CodeLabel{Code: code, Spans: spans, FilterEnd: len(label)}, true

	case protocol.CompletionItemKindProperty:
		code := label
		spans := []Span{{Start: 0, End: len(label), Highlight: "property"}}
		if detail != "" {
			code = label + ": " + detail
			spans = append(spans, Span{Start: len(label) + 2, End: len(code), Highlight: "type"})
		}
		return &CodeLabel{Code: code, Spans: spans, FilterEnd: len(label)}, true

	case protocol.CompletionItemKindVariable:
		highlight := "variable"
		if isSpecialVariable(strings.TrimPrefix(label, "$")) {
			highlight = "comment"
		}
		return &CodeLabel{
			Code:      label,
			Spans:     []Span{{Start: 0, End: len(label), Highlight: highlight}},
			FilterEnd: len(label),
		}, true
	}
	return nil, false
}

// isSpecialVariable matches superglobals ($_GET, $GLOBALS) and the reserved
// names PHP populates on its own.
func isSpecialVariable(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "_") {
		return true
	}
	if _, ok := reservedVariables[name]; ok {
		return true
	}
	hasLetter := false
	for _, r := range name {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
