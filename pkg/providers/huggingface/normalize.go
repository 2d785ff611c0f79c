package huggingface

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/germanamz/taskify/pkg/modeladapter"
)

const previewLen = 200

// Normalize extracts the generated text from a text-generation payload.
//
// Two shapes are accepted, checked in order: an object with a
// "generated_text" string, and a non-empty array whose first element is such
// an object. The text is returned unmodified. Any other shape, including an
// empty generated_text, matches modeladapter.ErrMalformedPayload.
func Normalize(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("%w: invalid JSON: %s", modeladapter.ErrMalformedPayload, preview(raw))
	}

	doc := gjson.ParseBytes(raw)

	switch {
	case doc.IsObject():
		if text, ok := generatedText(doc); ok {
			return text, nil
		}
	case doc.IsArray():
		if first := doc.Get("0"); first.IsObject() {
			if text, ok := generatedText(first); ok {
				return text, nil
			}
		}
	}

	return "", fmt.Errorf("%w: no generated_text in %s", modeladapter.ErrMalformedPayload, preview(raw))
}

func generatedText(obj gjson.Result) (string, bool) {
	v := obj.Get("generated_text")
	if v.Type != gjson.String || v.Str == "" {
		return "", false
	}
	return v.Str, true
}

func preview(raw []byte) string {
	if len(raw) > previewLen {
		return string(raw[:previewLen]) + "..."
	}
	return string(raw)
}
