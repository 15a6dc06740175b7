package main

import (
	"context"
	"testing"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/query"
)

func TestLookup(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": int64(2)}, "c": "x"}
	tests := []struct {
		keys []string
		want any
	}{
		{[]string{"c"}, "x"},
		{[]string{"a", "b"}, int64(2)},
		{[]string{"a", "missing"}, nil},
		{[]string{"c", "deeper"}, nil},
	}
	for _, tt := range tests {
		if got := lookup(doc, tt.keys); got != tt.want {
			t.Errorf("lookup(%v) = %v, want %v", tt.keys, got, tt.want)
		}
	}
	if got := lookup(int64(1), []string{"a"}); got != nil {
		t.Errorf("expected nil for non-object, got %v", got)
	}
}

func TestEmptyPathHelpers(t *testing.T) {
	if pluck("") != nil {
		t.Error("expected nil selector")
	}
	if truthy("") != nil {
		t.Error("expected nil predicate")
	}
}

func TestApplyStepsIsDeferred(t *testing.T) {
	pulled := false
	src := func() any {
		pulled = true
		return []any{int64(1), int64(2), int64(3)}
	}
	d := query.Defer(src)
	err := applySteps(d, []Step{{Op: "skip", Count: 1}, {Op: "take", Count: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if pulled || d.Opened() {
		t.Fatal("steps must not touch the source")
	}
	if d.Pending() != 2 {
		t.Errorf("expected 2 pending commands, got %d", d.Pending())
	}

	got, err := runTerminal(context.Background(), d, QueryConfig{Terminal: "to_array"})
	if err != nil {
		t.Fatal(err)
	}
	arr := got.([]any)
	if len(arr) != 1 || arr[0] != int64(2) {
		t.Errorf("unexpected result: %v", arr)
	}
}

func TestApplyStepErrors(t *testing.T) {
	tests := []Step{
		{Op: "cast", Kind: "decimal"},
		{Op: "of_type", Kind: ""},
		{Op: "sort"},
	}
	for _, s := range tests {
		err := applySteps(query.Defer([]any{}), []Step{s})
		if !errors.Is(err, errors.ErrCodeInvalidArgument) {
			t.Errorf("%s: expected INVALID_ARGUMENT, got %v", s.Op, err)
		}
	}
}

func TestStrictExcept(t *testing.T) {
	d := query.Defer([]any{int64(1), 1.0, int64(2)})
	if err := applySteps(d, []Step{{Op: "except", Values: []any{1}, Strict: true}}); err != nil {
		t.Fatal(err)
	}
	got, err := d.ToArray(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// Identity compares type and value, so int(1) removes neither int64(1) nor 1.0.
	if len(got) != 3 {
		t.Errorf("expected all three elements, got %v", got)
	}
}

func TestRunTerminalUnknown(t *testing.T) {
	_, err := runTerminal(context.Background(), query.Defer([]any{}), QueryConfig{Terminal: "reverse"})
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}
}
