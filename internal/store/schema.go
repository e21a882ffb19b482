package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableCredentials = "credentials"
	tableAttempts    = "attempt_events"
	tableAnswers     = "answer_events"
	tableVark        = "vark_results"
	tableAPICalls    = "api_call_events"
	tableLLMRequests = "llm_request_events"
	tableSequence    = "global_sequence"
)

// eventColumns are shared by every event table. Timestamps are unix
// milliseconds; sequence comes from the global counter so cross-table
// ordering is well defined.
func eventColumns(cols ...*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
	}, cols...)
}

func text(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString}
}

func textDefault(name string) *schema.Column {
	c := text(name)
	c.Default = ""
	return c
}

func integer(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt64}
}

func intDefault(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt64, Default: 0}
}

func eventTable(name string, cols []*schema.Column, indexed ...string) *schema.Table {
	t := &schema.Table{Name: name, Columns: cols, PrimaryKey: cols[:1]}
	for _, col := range indexed {
		for _, c := range cols {
			if c.Name == col {
				t.Indexes = append(t.Indexes, &schema.Index{
					Name:    name + "_" + col,
					Columns: []*schema.Column{c},
				})
			}
		}
	}
	return t
}

var (
	credentialColumns = []*schema.Column{
		text("key"),
		text("value"),
		integer("updated_at"),
	}

	// A single row (id 1) holding the next event sequence number.
	sequenceColumns = []*schema.Column{
		integer("id"),
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}

	tables = []*schema.Table{
		{Name: tableSequence, Columns: sequenceColumns, PrimaryKey: sequenceColumns[:1]},
		{Name: tableCredentials, Columns: credentialColumns, PrimaryKey: credentialColumns[:1]},
		eventTable(tableAttempts, eventColumns(
			text("attempt_id"),
			text("session_id"),
			text("subject_id"),
			textDefault("subject_name"),
			text("action"),
			intDefault("answered"),
			intDefault("correct"),
		), "attempt_id"),
		eventTable(tableAnswers, eventColumns(
			text("attempt_id"),
			text("session_id"),
			text("subject_id"),
			text("question_id"),
			textDefault("difficulty"),
			integer("option_index"),
			integer("elapsed_ms"),
			integer("correct"),
		), "attempt_id"),
		eventTable(tableVark, eventColumns(
			integer("visual"),
			integer("auditory"),
			integer("read_write"),
			integer("kinesthetic"),
			text("vark_type"),
			intDefault("synced"),
		)),
		eventTable(tableAPICalls, eventColumns(
			text("method"),
			text("path"),
			intDefault("status"),
			integer("latency_ms"),
			integer("success"),
			textDefault("error_message"),
		)),
		eventTable(tableLLMRequests, eventColumns(
			text("provider"),
			text("model"),
			text("purpose"),
			integer("input_tokens"),
			integer("output_tokens"),
			integer("latency_ms"),
			integer("success"),
			textDefault("error_message"),
		)),
	}
)

// eventTables are cleared by Reset.
var eventTables = []string{tableAttempts, tableAnswers, tableVark, tableAPICalls, tableLLMRequests}

// migrate creates missing tables, columns and indexes. Nothing is dropped.
func migrate(ctx context.Context, db *sql.DB) error {
	m, err := schema.NewMigrate(entsql.OpenDB(dialect.SQLite, db))
	if err != nil {
		return fmt.Errorf("init migration: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
