package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrInvalidUTF8 = errors.New("script is not valid UTF-8")

// SplitMode selects how a script is broken into statements.
type SplitMode string

const (
	// SplitLine ends a statement only on a line whose last character is ';'.
	SplitLine SplitMode = "line"
	// SplitQuoted tracks quotes and comments and splits on any top-level ';'.
	SplitQuoted SplitMode = "quoted"
	// SplitPG uses the PostgreSQL scanner.
	SplitPG SplitMode = "pg"
)

// CommitPolicy selects when the script connection is committed.
type CommitPolicy string

const (
	// CommitPerLine commits after every processed (non-skipped) line.
	CommitPerLine CommitPolicy = "line"
	// CommitPerStatement commits only after a statement executes successfully.
	CommitPerStatement CommitPolicy = "statement"
)

func ParseSplitMode(s string) (SplitMode, error) {
	switch m := SplitMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SplitLine, SplitQuoted, SplitPG:
		return m, nil
	case "":
		return SplitLine, nil
	default:
		return "", fmt.Errorf("invalid split mode %q: must be line, quoted, or pg", s)
	}
}

func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch p := CommitPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case CommitPerLine, CommitPerStatement:
		return p, nil
	case "":
		return CommitPerLine, nil
	default:
		return "", fmt.Errorf("invalid commit policy %q: must be line or statement", s)
	}
}

// Step is one unit of script work: an optional statement to execute,
// then an optional commit. A step whose statement fails is not committed.
type Step struct {
	Line      int // 1-based source line the step ends on
	Statement string
	Commit    bool
}

// StatementError reports the statement that aborted a script run.
type StatementError struct {
	Index     int // 1-based position among executed statements
	Line      int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d (line %d) failed: %v", e.Index, e.Line, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// PlanScript decodes a script and turns it into the ordered steps a runner
// replays against a connection.
func PlanScript(data []byte, mode SplitMode, policy CommitPolicy) ([]Step, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}
	text := string(data)

	switch mode {
	case SplitLine, "":
		return planLines(text, policy), nil
	case SplitQuoted:
		return statementSteps(splitQuoted(text)), nil
	case SplitPG:
		stmts, err := splitPG(text)
		if err != nil {
			return nil, err
		}
		return statementSteps(stmts), nil
	default:
		return nil, fmt.Errorf("unknown split mode %q", mode)
	}
}

// planLines splits on '\n' and accumulates lines until one ends in ';'.
// Lines are concatenated without a separator. A trailing statement with no
// terminating line is dropped.
func planLines(text string, policy CommitPolicy) []Step {
	var (
		steps []Step
		acc   strings.Builder
	)
	for i, line := range strings.Split(text, "\n") {
		if isSkippedLine(line) {
			continue
		}
		acc.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			if policy != CommitPerStatement {
				steps = append(steps, Step{Line: i + 1, Commit: true})
			}
			continue
		}
		steps = append(steps, Step{Line: i + 1, Statement: acc.String(), Commit: true})
		acc.Reset()
	}
	return steps
}

func isSkippedLine(line string) bool {
	return strings.HasPrefix(line, "--") || line == "" || line == "\n"
}

type located struct {
	line int
	text string
}

func statementSteps(stmts []located) []Step {
	steps := make([]Step, 0, len(stmts))
	for _, s := range stmts {
		steps = append(steps, Step{Line: s.line, Statement: s.text, Commit: true})
	}
	return steps
}
