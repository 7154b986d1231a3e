package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedOutput = errors.New("malformed structured output")

// DecodeJSON extracts the first JSON object from a model reply and unmarshals
// it into v. Models asked for JSON-only replies still wrap the object in code
// fences or prose often enough that a strict json.Unmarshal on the raw text
// would reject valid output.
func DecodeJSON(text string, v interface{}) error {
	raw, err := firstJSONObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// firstJSONObject returns the first balanced {...} span in text.
func firstJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}

	return "", fmt.Errorf("%w: unterminated JSON object", ErrMalformedOutput)
}
