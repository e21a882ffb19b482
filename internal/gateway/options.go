package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseError reports an option list that could not be recovered.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse options %q: %s", e.Raw, e.Reason)
}

// optionCutset is stripped from both ends of each comma-split piece.
const optionCutset = " \t\r\n\"'`[]"

// ParseOptions decodes a question's option list. The platform sends either
// a JSON array or a string; strings are tried, in order, as a JSON array,
// as a repaired JSON array, and finally as a comma-separated list.
func ParseOptions(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, &ParseError{Raw: string(raw), Reason: "missing"}
	}

	if list, err := decodeList(trimmed); err == nil {
		return fromList(string(trimmed), list)
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, &ParseError{Raw: string(raw), Reason: "neither a list nor a string"}
	}
	return ParseOptionString(s)
}

// ParseOptionString recovers an option list encoded as text.
func ParseOptionString(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &ParseError{Raw: s, Reason: "empty"}
	}

	if strings.HasPrefix(s, "[") {
		if list, err := decodeList([]byte(s)); err == nil {
			return fromList(s, list)
		}
		if repaired, err := jsonrepair.JSONRepair(s); err == nil {
			if list, err := decodeList([]byte(repaired)); err == nil {
				return fromList(s, list)
			}
		}
	}

	var out []string
	for _, piece := range strings.Split(s, ",") {
		if p := strings.Trim(piece, optionCutset); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, &ParseError{Raw: s, Reason: "no options"}
	}
	return out, nil
}

// decodeList decodes a JSON array, keeping numbers as their literal text.
func decodeList(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var list []any
	if err := dec.Decode(&list); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after option list")
	}
	return list, nil
}

// fromList keeps element positions; option indexes are meaningful.
func fromList(raw string, list []any) ([]string, error) {
	if len(list) == 0 {
		return nil, &ParseError{Raw: raw, Reason: "no options"}
	}
	out := make([]string, len(list))
	for i, v := range list {
		switch v := v.(type) {
		case string:
			out[i] = strings.TrimSpace(v)
		case json.Number:
			out[i] = v.String()
		case nil:
			return nil, &ParseError{Raw: raw, Reason: fmt.Sprintf("option %d is null", i)}
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out, nil
}
