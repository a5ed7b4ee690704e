package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParsePasted turns pasted text into candidate records. Two shapes are
// accepted: newline-delimited JSON objects, and a single JSON array of
// objects. The input is hand-pasted and of uneven quality, so candidates
// that fail to decode or look nothing like a record are skipped with a
// reason rather than aborting the paste. Only a malformed top-level array
// is a hard error, since nothing can be salvaged from it.
func ParsePasted(text string) (records []Record, skipped []string, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var raws []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &raws); err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		for i, raw := range raws {
			rec, err := decodeCandidate(raw)
			if err != nil {
				skipped = append(skipped, fmt.Sprintf("array element %d: %v", i, err))
				continue
			}
			records = append(records, rec)
		}
		return records, skipped, nil
	}

	lineNo := 0
	for _, line := range strings.Split(trimmed, "\n") {
		lineNo++
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "{") {
			skipped = append(skipped, fmt.Sprintf("line %d: not a JSON object", lineNo))
			continue
		}
		rec, err := decodeCandidate(json.RawMessage(line))
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func decodeCandidate(raw json.RawMessage) (Record, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Record{}, fmt.Errorf("invalid JSON object: %w", err)
	}
	_, hasConversation := probe["conversation"]
	_, hasMetadata := probe["metadata"]
	if !hasConversation && !hasMetadata {
		return Record{}, fmt.Errorf("object has neither conversation nor metadata")
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("object does not match record shape: %w", err)
	}
	return rec, nil
}
