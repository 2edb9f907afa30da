package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statements(steps []Step) []string {
	var out []string
	for _, s := range steps {
		if s.Statement != "" {
			out = append(out, s.Statement)
		}
	}
	return out
}

func commits(steps []Step) int {
	var n int
	for _, s := range steps {
		if s.Commit {
			n++
		}
	}
	return n
}

func TestPlanScript_LineMode_SkipsCommentsAndBlankLines(t *testing.T) {
	steps, err := PlanScript([]byte("SELECT 1;\n-- comment\n\nSELECT 2;\n"), SplitLine, CommitPerLine)
	require.NoError(t, err)

	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;"}, statements(steps))
	assert.Equal(t, 2, commits(steps))
	assert.Equal(t, 1, steps[0].Line)
	assert.Equal(t, 4, steps[1].Line)
}

func TestPlanScript_LineMode_MultiLineConcatenatedWithoutSeparator(t *testing.T) {
	steps, err := PlanScript([]byte("INSERT INTO t (a)\nVALUES (1);\n"), SplitLine, CommitPerLine)
	require.NoError(t, err)

	assert.Equal(t, []string{"INSERT INTO t (a)VALUES (1);"}, statements(steps))
	// One commit per processed line, including the non-terminal one.
	require.Len(t, steps, 2)
	assert.Equal(t, Step{Line: 1, Commit: true}, steps[0])
	assert.True(t, steps[1].Commit)
}

func TestPlanScript_LineMode_CommitPerStatement(t *testing.T) {
	steps, err := PlanScript([]byte("INSERT INTO t (a)\nVALUES (1);\nSELECT 2;\n"), SplitLine, CommitPerStatement)
	require.NoError(t, err)

	assert.Equal(t, []string{"INSERT INTO t (a)VALUES (1);", "SELECT 2;"}, statements(steps))
	assert.Equal(t, 2, commits(steps))
}

func TestPlanScript_LineMode_CommentPrefixAnyContent(t *testing.T) {
	steps, err := PlanScript([]byte("--DROP TABLE users;\n-- SELECT 1;\nSELECT 3;"), SplitLine, CommitPerLine)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 3;"}, statements(steps))
}

func TestPlanScript_LineMode_IndentedCommentIsNotSkipped(t *testing.T) {
	steps, err := PlanScript([]byte("  -- note\nSELECT 1;\n"), SplitLine, CommitPerLine)
	require.NoError(t, err)
	assert.Equal(t, []string{"  -- noteSELECT 1;"}, statements(steps))
}

func TestPlanScript_LineMode_InlineSemicolonIsNotATerminator(t *testing.T) {
	steps, err := PlanScript([]byte("SELECT 1; SELECT 2\nSELECT 3;\n"), SplitLine, CommitPerLine)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1; SELECT 2SELECT 3;"}, statements(steps))
}

func TestPlanScript_LineMode_TrailingUnterminatedTextDropped(t *testing.T) {
	steps, err := PlanScript([]byte("SELECT 1;\nSELECT 2"), SplitLine, CommitPerLine)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1;"}, statements(steps))
	assert.Equal(t, 2, commits(steps))
}

func TestPlanScript_LineMode_CRLFNotNormalized(t *testing.T) {
	steps, err := PlanScript([]byte("SELECT 1;\r\nSELECT 2;\n"), SplitLine, CommitPerLine)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1;\rSELECT 2;"}, statements(steps))
}

func TestPlanScript_InvalidUTF8(t *testing.T) {
	_, err := PlanScript([]byte{'S', 0xff, ';'}, SplitLine, CommitPerLine)
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestPlanScript_EmptyScript(t *testing.T) {
	steps, err := PlanScript(nil, SplitLine, CommitPerLine)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestPlanScript_QuotedMode(t *testing.T) {
	script := "-- header\n" +
		"INSERT INTO t (a) VALUES ('x;y'); SELECT \"a;b\" FROM t;\n" +
		"/* block; comment */ SELECT 'it''s;';\n" +
		"SELECT 4"

	steps, err := PlanScript([]byte(script), SplitQuoted, CommitPerLine)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"INSERT INTO t (a) VALUES ('x;y');",
		"SELECT \"a;b\" FROM t;",
		"SELECT 'it''s;';",
		"SELECT 4",
	}, statements(steps))
	assert.Equal(t, 4, commits(steps))
	assert.Equal(t, 2, steps[0].Line)
	assert.Equal(t, 3, steps[2].Line)
}

func TestPlanScript_QuotedMode_MultiLineKeepsNewlines(t *testing.T) {
	steps, err := PlanScript([]byte("CREATE TABLE t (\n  a INT -- the a\n);\n"), SplitQuoted, CommitPerLine)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE TABLE t (\n  a INT \n);"}, statements(steps))
}

func TestPlanScript_UnknownMode(t *testing.T) {
	_, err := PlanScript([]byte("SELECT 1;"), SplitMode("nope"), CommitPerLine)
	require.Error(t, err)
}

func TestParseSplitMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SplitMode
		wantErr bool
	}{
		{in: "", want: SplitLine},
		{in: "line", want: SplitLine},
		{in: "QUOTED", want: SplitQuoted},
		{in: " pg ", want: SplitPG},
		{in: "regex", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSplitMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommitPolicy(t *testing.T) {
	p, err := ParseCommitPolicy("")
	require.NoError(t, err)
	assert.Equal(t, CommitPerLine, p)

	p, err = ParseCommitPolicy("Statement")
	require.NoError(t, err)
	assert.Equal(t, CommitPerStatement, p)

	_, err = ParseCommitPolicy("never")
	assert.Error(t, err)
}

func TestStatementError_Unwrap(t *testing.T) {
	err := &StatementError{Index: 2, Line: 7, Statement: "SELECT x;", Err: ErrNotFound}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "statement 2 (line 7)")
}
