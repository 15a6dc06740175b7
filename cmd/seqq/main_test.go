package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runSeqq(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunTerminals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{"default to_array", `[1, 2, 2, 3, 1]`, nil, "[1,2,2,3,1]\n"},
		{"empty input", ``, nil, "[]\n"},
		{"empty array", `[]`, []string{"-t", "to_array"}, "[]\n"},
		{"count", `[1, 2, 3]`, []string{"-t", "count"}, "3\n"},
		{"count with predicate", `[{"ok": true}, {"ok": false}, {"ok": 1}]`, []string{"-t", "count", "-f", "ok"}, "2\n"},
		{"sum ints", `[1, 2, 3]`, []string{"-t", "sum"}, "6\n"},
		{"sum field", `[{"price": 1}, {"price": 2.5}]`, []string{"-t", "sum", "--field", "price"}, "3.5\n"},
		{"sum empty", `[]`, []string{"-t", "sum"}, "0\n"},
		{"average", `[1, 2, 3, 4]`, []string{"-t", "average"}, "2.5\n"},
		{"min", `[3, 1, 2]`, []string{"-t", "min"}, "1\n"},
		{"max nested", `[{"a": {"b": 3}}, {"a": {"b": 7}}]`, []string{"-t", "max", "-f", "a.b"}, "7\n"},
		{"max empty", `[]`, []string{"-t", "max"}, "null\n"},
		{"first", `[5, 6]`, []string{"-t", "first"}, "5\n"},
		{"last with predicate", `[{"id": 1, "x": true}, {"id": 2, "x": true}, {"id": 3}]`, []string{"-t", "last", "-f", "x"}, "{\"id\":2,\"x\":true}\n"},
		{"single", `[7]`, []string{"-t", "single"}, "7\n"},
		{"element_at", `["a", "b", "c"]`, []string{"-t", "element_at", "--index", "1"}, "\"b\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runSeqq(t, tt.input, tt.args...)
			if code != 0 {
				t.Fatalf("exit %d, stderr: %s", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestRunTerminalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{"average of empty", `[]`, []string{"-t", "average"}, "INVALID_OPERATION"},
		{"single with two", `[1, 2]`, []string{"-t", "single"}, "INVALID_OPERATION"},
		{"element_at past end", `[1, 2]`, []string{"-t", "element_at", "--index", "5"}, "ARGUMENT_OUT_OF_RANGE"},
		{"element_at negative", `[1, 2]`, []string{"-t", "element_at", "--index=-1"}, "ARGUMENT_OUT_OF_RANGE"},
		{"element_at empty", `[]`, []string{"-t", "element_at"}, "ARGUMENT_NULL"},
		{"sum of strings", `["a"]`, []string{"-t", "sum"}, "INVALID_ARGUMENT"},
		{"not an array", `{"a": 1}`, nil, "expected a JSON array"},
		{"malformed element", `[1, }`, nil, "malformed"},
		{"unknown terminal", `[]`, []string{"-t", "sort"}, "terminal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := runSeqq(t, tt.input, tt.args...)
			if code != 1 {
				t.Fatalf("expected exit 1, got %d (stdout %q)", code, stdout)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("expected stderr to contain %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestRunWithConfigSteps(t *testing.T) {
	tests := []struct {
		name  string
		steps string
		input string
		want  string
	}{
		{
			name:  "distinct then take",
			steps: "    - op: distinct\n    - op: take\n      count: 3\n",
			input: `[1, 1, 2, 2, 3, 4]`,
			want:  "[1,2,3]\n",
		},
		{
			name:  "distinct is adjacent only",
			steps: "    - op: distinct\n",
			input: `[1, 2, 1]`,
			want:  "[1,2,1]\n",
		},
		{
			name:  "except",
			steps: "    - op: except\n      values: [2, 3]\n",
			input: `[1, 2, 3, 4, 4]`,
			want:  "[1,4]\n",
		},
		{
			name:  "where and select",
			steps: "    - op: where\n      field: active\n    - op: select\n      field: name\n",
			input: `[{"name": "a", "active": true}, {"name": "b", "active": false}, {"name": "c", "active": true}]`,
			want:  "[\"a\",\"c\"]\n",
		},
		{
			name:  "where without field keeps truthy elements",
			steps: "    - op: where\n",
			input: `[0, 1, "", "x", null, false, true]`,
			want:  "[1,\"x\",true]\n",
		},
		{
			name:  "skip then prepend and append",
			steps: "    - op: skip\n      count: 1\n    - op: prepend\n      values: [0]\n    - op: append\n      values: [9]\n",
			input: `[1, 2, 3]`,
			want:  "[0,2,3,9]\n",
		},
		{
			name:  "of_type",
			steps: "    - op: of_type\n      kind: string\n",
			input: `[1, "a", 2.5, "b", null]`,
			want:  "[\"a\",\"b\"]\n",
		},
		{
			name:  "cast drops failures",
			steps: "    - op: cast\n      kind: int\n",
			input: `["1", "x", 2]`,
			want:  "[1,2]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeFile(t, "seqq.yml", "name: seqq\nquery:\n  steps:\n"+tt.steps)
			stdout, stderr, code := runSeqq(t, tt.input, "-c", cfgPath)
			if code != 0 {
				t.Fatalf("exit %d, stderr: %s", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestRunConfigTerminalAndFlagOverride(t *testing.T) {
	cfgPath := writeFile(t, "seqq.yml", "query:\n  terminal: count\n")

	stdout, stderr, code := runSeqq(t, `[1, 2]`, "-c", cfgPath)
	if code != 0 || stdout != "2\n" {
		t.Fatalf("expected 2, got %q (exit %d, stderr %s)", stdout, code, stderr)
	}

	stdout, stderr, code = runSeqq(t, `[1, 2]`, "-c", cfgPath, "-t", "sum")
	if code != 0 || stdout != "3\n" {
		t.Fatalf("expected 3, got %q (exit %d, stderr %s)", stdout, code, stderr)
	}
}

func TestRunInputFile(t *testing.T) {
	input := writeFile(t, "data.json", `[{"v": 2}, {"v": 4}]`)
	stdout, stderr, code := runSeqq(t, "", "-i", input, "-t", "average", "-f", "v")
	if code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	if stdout != "3\n" {
		t.Errorf("expected 3, got %q", stdout)
	}
}

func TestRunMissingInputFile(t *testing.T) {
	_, stderr, code := runSeqq(t, "", "-i", filepath.Join(t.TempDir(), "missing.json"))
	if code != 1 || !strings.Contains(stderr, "open input") {
		t.Errorf("unexpected result: exit %d, stderr %q", code, stderr)
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	_, stderr, code := runSeqq(t, "[]", "-c", filepath.Join(t.TempDir(), "missing.yml"))
	if code != 1 || !strings.Contains(stderr, "not found") {
		t.Errorf("unexpected result: exit %d, stderr %q", code, stderr)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		want string
	}{
		{"unknown op", "query:\n  steps:\n    - op: sort\n", "steps[0].op"},
		{"negative count", "query:\n  steps:\n    - op: take\n      count: -1\n", "steps[0].count"},
		{"select without field", "query:\n  steps:\n    - op: select\n", "query.steps[0].field"},
		{"cast with unknown kind", "query:\n  steps:\n    - op: distinct\n    - op: cast\n      kind: decimal\n", "query.steps[1].kind: must be one of"},
		{"of_type without kind", "query:\n  steps:\n    - op: of_type\n", "query.steps[0].kind: is required"},
		{"empty path segment", "query:\n  steps:\n    - op: select\n      field: user..name\n", "query.steps[0].field: does not match"},
		{"bad environment", "environment: moon\n", "environment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeFile(t, "seqq.yml", tt.cfg)
			stdout, stderr, code := runSeqq(t, "[]", "-c", cfgPath)
			if code != 1 {
				t.Fatalf("expected exit 1, got %d (stdout %q)", code, stdout)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("expected stderr to contain %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	stdout, _, code := runSeqq(t, "", "--version")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if strings.TrimSpace(stdout) == "" {
		t.Error("expected version output")
	}
}

func TestRunSchema(t *testing.T) {
	stdout, stderr, code := runSeqq(t, "", "--schema")
	if code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	for _, want := range []string{`"query"`, `"steps"`, `"terminal"`, `"element_at"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected schema to contain %s", want)
		}
	}
}

func TestRunBadFlag(t *testing.T) {
	_, _, code := runSeqq(t, "", "--no-such-flag")
	if code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
}

func TestRunHelp(t *testing.T) {
	_, stderr, code := runSeqq(t, "", "--help")
	if code != 0 {
		t.Errorf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stderr, "--terminal") {
		t.Errorf("expected usage on stderr, got %q", stderr)
	}
}

func TestRunPretty(t *testing.T) {
	cfgPath := writeFile(t, "seqq.yml", "query:\n  pretty: true\n")
	stdout, _, code := runSeqq(t, `[1]`, "-c", cfgPath)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if stdout != "[\n  1\n]\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}
