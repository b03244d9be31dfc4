package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"contractapi/internal/model"
)

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

var dateSchema = map[string]any{
	"type":    "string",
	"pattern": `^(\d{4}-\d{2}-\d{2}|TBD)$`,
}

var pageSchema = map[string]any{"type": "integer", "minimum": 0}

func arrayOf(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}

// resultSchema describes a normalized StructuredResult.
func resultSchema() map[string]any {
	str := map[string]any{"type": "string"}
	strList := map[string]any{"type": "array", "items": str}

	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"required": []string{
			"accordion", "tables", "timeline", "summary", "tasks", "deadlines", "propertyDetails",
		},
		"properties": map[string]any{
			"accordion": arrayOf(map[string]any{
				"question": str,
				"answer":   str,
				"page":     pageSchema,
			}, "question", "answer"),
			"tables": arrayOf(map[string]any{
				"title":   str,
				"headers": strList,
				"rows":    map[string]any{"type": "array", "items": strList},
				"page":    pageSchema,
			}, "title", "headers", "rows"),
			"timeline": arrayOf(map[string]any{
				"milestone":   str,
				"date":        dateSchema,
				"description": str,
				"page":        pageSchema,
			}, "milestone", "date"),
			"summary": map[string]any{"type": "string", "minLength": 1},
			"tasks": arrayOf(map[string]any{
				"id":        pageSchema,
				"title":     str,
				"dueDate":   dateSchema,
				"relatedTo": str,
				"priority":  map[string]any{"enum": []string{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}},
			}, "title", "dueDate"),
			"deadlines": arrayOf(map[string]any{
				"name":        str,
				"deadline":    dateSchema,
				"relatedTask": str,
				"page":        pageSchema,
			}, "name", "deadline"),
			"propertyDetails": map[string]any{
				"type":     "object",
				"required": []string{"datesAndDeadlines"},
				"properties": map[string]any{
					"datesAndDeadlines": arrayOf(map[string]any{
						"itemNo":    pageSchema,
						"reference": str,
						"event":     str,
						"deadline":  dateSchema,
					}, "event", "deadline"),
				},
			},
		},
	}
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(resultSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("result.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Validate checks a normalized result against the output JSON Schema.
func Validate(r model.StructuredResult) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}
