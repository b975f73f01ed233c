package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// StripFences removes a surrounding ```json ... ``` or bare ``` block.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseJSON strictly decodes a possibly fenced model reply.
func ParseJSON(raw string, dest interface{}) error {
	if err := json.Unmarshal([]byte(StripFences(raw)), dest); err != nil {
		return fmt.Errorf("parse model json: %w", err)
	}
	return nil
}

// RepairJSON decodes a model reply, running it through json-repair when the strict parse fails.
// Prose around a single object is trimmed to the outermost braces first.
func RepairJSON(raw string, dest interface{}) error {
	if ParseJSON(raw, dest) == nil {
		return nil
	}
	body := StripFences(raw)
	if i, j := strings.Index(body, "{"), strings.LastIndex(body, "}"); i >= 0 && j > i {
		if json.Unmarshal([]byte(body[i:j+1]), dest) == nil {
			return nil
		}
	}
	fixed, err := jsonrepair.RepairJSON(body)
	if err != nil {
		return fmt.Errorf("repair model json: %w", err)
	}
	if err := json.Unmarshal([]byte(fixed), dest); err != nil {
		return fmt.Errorf("parse repaired json: %w", err)
	}
	return nil
}
