package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanScript_PGMode(t *testing.T) {
	script := "-- schema\n" +
		"CREATE TABLE t (a TEXT);\n" +
		"INSERT INTO t (a) VALUES ('x;y');\n" +
		"CREATE FUNCTION f() RETURNS int AS $$ SELECT 1; $$ LANGUAGE sql;\n"

	steps, err := PlanScript([]byte(script), SplitPG, CommitPerLine)
	require.NoError(t, err)

	stmts := statements(steps)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "CREATE TABLE t")
	assert.Contains(t, stmts[1], "'x;y'")
	assert.Contains(t, stmts[2], "$$ SELECT 1; $$")
	assert.Equal(t, 3, commits(steps))
	assert.Equal(t, 2, steps[0].Line)
	assert.Equal(t, 4, steps[2].Line)
}
