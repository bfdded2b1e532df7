package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// generateDDL creates a CREATE TABLE statement from struct tags.
func generateDDL(model any, tableName string) string {
	t := modelType(model)

	var columns []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			columns = append(columns, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);",
		tableName,
		strings.Join(columns, ",\n"))
}

// Columns returns column names of a model in field order.
func Columns(model any) []string {
	t := modelType(model)
	var res []string
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("db"); tag != "" {
			res = append(res, tag)
		}
	}
	return res
}

// Values returns field values of a model in the order of Columns.
func Values(model any) []any {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()
	var res []any
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("db") != "" {
			res = append(res, v.Field(i).Interface())
		}
	}
	return res
}

// InsertSQL returns a parameterized INSERT statement with ?
// placeholders.
func InsertSQL(m DDLGenerator) string {
	cols := Columns(m)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		m.TableName(), strings.Join(cols, ", "), marks)
}

func modelType(model any) reflect.Type {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// ReplayRun DDL methods
func (r ReplayRun) TableDDL() string {
	return generateDDL(r, r.TableName())
}

func (r ReplayRun) IndexDDL() []string {
	return []string{}
}

func (r ReplayRun) TableName() string {
	return "replay_runs"
}

// ReplayResult DDL methods
func (r ReplayResult) TableDDL() string {
	return generateDDL(r, r.TableName())
}

func (r ReplayResult) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_replay_results_run ON replay_results(run_id);",
		"CREATE INDEX IF NOT EXISTS idx_replay_results_level ON replay_results(block_level);",
	}
}

func (r ReplayResult) TableName() string {
	return "replay_results"
}
