package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Payload schemas for the adaptive test endpoints. They check shape only;
// option strings are recovered later by ParseOptions.
const (
	schemaQuestion = "question"
	schemaStart    = "start"
	schemaAnswer   = "answer"
	schemaSubjects = "subjects"
)

var schemaDefs = map[string]string{
	schemaQuestion: `{
		"type": "object",
		"required": ["id", "text", "options"],
		"properties": {
			"id": {"type": ["string", "integer"]},
			"text": {"type": "string", "minLength": 1},
			"options": {"type": ["array", "string"]},
			"difficulty": {"enum": ["easy", "medium", "hard", "Easy", "Medium", "Hard"]}
		}
	}`,
	schemaStart: `{
		"type": "object",
		"required": ["session_id", "question"],
		"properties": {
			"session_id": {"type": ["string", "integer"]},
			"question": {"$ref": "question.json"}
		}
	}`,
	schemaAnswer: `{
		"type": "object",
		"required": ["is_correct"],
		"properties": {
			"is_correct": {"type": "boolean"},
			"completed": {"type": "boolean"},
			"next_question": {
				"oneOf": [{"type": "null"}, {"$ref": "question.json"}]
			}
		}
	}`,
	schemaSubjects: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "name"],
			"properties": {
				"id": {"type": ["string", "integer"]},
				"name": {"type": "string"},
				"questions_count": {"type": "integer", "minimum": 0}
			}
		}
	}`,
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func schemaURL(name string) string {
	return fmt.Sprintf("schema://stylequiz/%s.json", name)
}

func compileSchemas() {
	c := jsonschema.NewCompiler()
	for name, def := range schemaDefs {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(def))
		if err != nil {
			compileErr = fmt.Errorf("parse schema %s: %w", name, err)
			return
		}
		if err := c.AddResource(schemaURL(name), doc); err != nil {
			compileErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
	}
	compiled = make(map[string]*jsonschema.Schema, len(schemaDefs))
	for name := range schemaDefs {
		sch, err := c.Compile(schemaURL(name))
		if err != nil {
			compileErr = fmt.Errorf("compile schema %s: %w", name, err)
			return
		}
		compiled[name] = sch
	}
}

// validatePayload checks data against the named schema.
func validatePayload(name string, data json.RawMessage) error {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return compileErr
	}
	sch, ok := compiled[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrMalformed, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
