package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQL(t *testing.T) {
	stmts := splitSQL("-- header\nCREATE TABLE a (x int);\n\nINSERT INTO a VALUES (1);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x int)", "INSERT INTO a VALUES (1)"}, stmts)
}

func TestExtractTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.sql")
	require.NoError(t, os.WriteFile(path, []byte("create table if not exists vehicle_rates (x int);\nCREATE TABLE IF NOT EXISTS other (y int);"), 0o600))

	tables, err := extractTables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"vehicle_rates", "other"}, tables)
}

func TestSummarize(t *testing.T) {
	s := summarize([]Result{{Status: StatusPass}, {Status: StatusPass}, {Status: StatusFail}, {Status: StatusSkip}})
	assert.Equal(t, summary{pass: 2, fail: 1, skip: 1}, s)
}
