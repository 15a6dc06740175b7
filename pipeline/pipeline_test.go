package pipeline

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	apperrors "github.com/kbukum/lazyseq/errors"
)

func collect(t *testing.T, p *Pipeline) []any {
	t.Helper()
	got, err := p.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func assertItems(t *testing.T, got []any, want ...any) {
	t.Helper()
	if want == nil {
		want = []any{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func mustFrom(t *testing.T, source any, args ...any) *Pipeline {
	t.Helper()
	p, err := From(source, args...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDescribe(t *testing.T) {
	var it Iterator[any] = Slice([]any{1})
	tests := []struct {
		name   string
		source any
		want   SourceKind
	}{
		{"slice", []any{1}, SourceList},
		{"typed slice", []int{1}, SourceList},
		{"iterator", it, SourceSequence},
		{"seq", slices.Values([]any{1}), SourceSequence},
		{"pipeline", Empty(), SourceSequence},
		{"thunk", func() any { return nil }, SourceThunk},
		{"thunk with error", func() (any, error) { return nil, nil }, SourceThunk},
		{"scalar", 3, SourceScalar},
		{"nil", nil, SourceScalar},
		{"map", map[string]any{"a": 1}, SourceScalar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.source).Kind; got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDescribe_DoesNotInvokeThunk(t *testing.T) {
	calls := 0
	src := Describe(func() any {
		calls++
		return []any{1}
	})
	if calls != 0 {
		t.Fatalf("expected no calls, got %d", calls)
	}
	p, err := Open(src)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected one call on Open, got %d", calls)
	}
	assertItems(t, collect(t, p), 1)
}

func TestFrom_ThunkArgs(t *testing.T) {
	p := mustFrom(t, Thunk(func(args ...any) (any, error) { return args, nil }), "a", 2)
	assertItems(t, collect(t, p), "a", 2)
}

func TestFrom_ThunkError(t *testing.T) {
	boom := errors.New("boom")
	_, err := From(func() (any, error) { return nil, boom })
	if err != boom {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestFrom_NilIsOneElement(t *testing.T) {
	assertItems(t, collect(t, mustFrom(t, nil)), nil)
}

func TestRange_Threshold(t *testing.T) {
	if k := RangeSource(0, RangeThreshold-1).Kind; k != SourceList {
		t.Errorf("expected list below threshold, got %s", k)
	}
	if k := RangeSource(0, RangeThreshold).Kind; k != SourceGenerated {
		t.Errorf("expected generated at threshold, got %s", k)
	}

	eager, _ := RangeSource(0, 100).Open()
	if _, ok := eager.(*sliceIter[any]); !ok {
		t.Errorf("expected slice iterator, got %T", eager)
	}
	lazy, _ := RangeSource(0, 1_000_000).Open()
	r, ok := lazy.(*rangeIter)
	if !ok {
		t.Fatalf("expected range iterator, got %T", lazy)
	}
	if r.remaining != 1_000_000 {
		t.Errorf("expected 1000000 remaining, got %d", r.remaining)
	}
}

func TestRange_Values(t *testing.T) {
	assertItems(t, collect(t, Range(5, 3)), 5, 6, 7)
	assertItems(t, collect(t, Range(5, 0)))
	assertItems(t, collect(t, Range(5, -2)))

	got := collect(t, Range(-1, RangeThreshold+1))
	if len(got) != RangeThreshold+1 || got[0] != -1 || got[len(got)-1] != RangeThreshold-1 {
		t.Errorf("unexpected lazy range %v..%v (%d)", got[0], got[len(got)-1], len(got))
	}
}

func TestRepeat(t *testing.T) {
	assertItems(t, collect(t, Repeat("x", 2)), "x", "x")
	assertItems(t, collect(t, Repeat("x", 0)))
	if k := RepeatSource("x", 1).Kind; k != SourceGenerated {
		t.Errorf("expected generated, got %s", k)
	}
}

func TestStages_FuseInSourceOrder(t *testing.T) {
	p := mustFrom(t, []any{1, 2, 3})
	var trace []string
	_ = p.FlatMap("dup", func(_ context.Context, in any, emit func(any)) error {
		trace = append(trace, "dup")
		emit(in)
		emit(in)
		return nil
	})
	_ = p.Map(func(_ context.Context, v any) (any, error) {
		trace = append(trace, "map")
		return v.(int) * 10, nil
	})
	_ = p.Filter(func(v any) bool { return v.(int) != 20 })

	assertItems(t, collect(t, p), 10, 10, 30, 30)
	want := []string{"dup", "map", "map", "dup", "map", "map", "dup", "map", "map"}
	if !slices.Equal(trace, want) {
		t.Errorf("got trace %v, want %v", trace, want)
	}
}

func TestStages_DoNotReadAhead(t *testing.T) {
	pulls := 0
	src := Generator(func(context.Context) (any, bool, error) {
		pulls++
		return pulls, true, nil
	})
	p := New(src)
	_ = p.FlatMap("triple", func(_ context.Context, in any, emit func(any)) error {
		emit(in)
		emit(in)
		emit(in)
		return nil
	})
	it, err := p.Iter()
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, _, err := it.Next(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if pulls != 1 {
		t.Errorf("expected one source pull for three outputs, got %d", pulls)
	}
	_ = it.Close()
}

func TestFilter_NilIsTruthy(t *testing.T) {
	p := mustFrom(t, []any{0, 1, "", "a", nil})
	_ = p.Filter(nil)
	assertItems(t, collect(t, p), 1, "a")
}

func TestUnpack(t *testing.T) {
	p := mustFrom(t, []any{[]any{1, 2}, 3})
	_ = p.Unpack(nil)
	assertItems(t, collect(t, p), 1, 2, 3)

	p = mustFrom(t, []any{[]any{1, 2}, []any{3}})
	_ = p.Unpack(func(_ context.Context, args ...any) (any, error) { return len(args), nil })
	assertItems(t, collect(t, p), 2, 1)
}

func TestStage_ErrorStops(t *testing.T) {
	boom := errors.New("boom")
	p := mustFrom(t, []any{1, 2, 3})
	_ = p.Map(func(_ context.Context, v any) (any, error) {
		if v == 2 {
			return nil, boom
		}
		return v, nil
	})
	var seen []any
	err := p.ForEach(context.Background(), func(v any) (bool, error) {
		seen = append(seen, v)
		return true, nil
	})
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}
	assertItems(t, seen, 1)
	if p.State() != StateClosed {
		t.Errorf("expected closed, got %s", p.State())
	}
}

func TestCompose(t *testing.T) {
	p := mustFrom(t, []any{1, 2, 3})
	_ = p.Map(func(_ context.Context, v any) (any, error) { return v.(int) + 1, nil })
	_ = p.Compose("first-two", func(up Iterator[any]) Iterator[any] {
		n := 0
		return Generator(func(ctx context.Context) (any, bool, error) {
			if n == 2 {
				return nil, false, nil
			}
			n++
			return up.Next(ctx)
		})
	})
	_ = p.Map(func(_ context.Context, v any) (any, error) { return v.(int) * 10, nil })
	if p.Operators() != 3 {
		t.Errorf("expected 3 operators, got %d", p.Operators())
	}
	assertItems(t, collect(t, p), 20, 30)
}

func TestOpen_AdoptedIteratorOnce(t *testing.T) {
	src := Describe(Slice[any]([]any{1, 2}))
	if src.Restartable() {
		t.Fatal("expected adopted iterator not to be restartable")
	}
	if _, err := src.Open(); err != nil {
		t.Fatal(err)
	}
	copied := src
	if _, err := copied.Open(); !apperrors.Is(err, apperrors.ErrCodeSequenceClosed) {
		t.Errorf("expected SEQUENCE_CLOSED on second open, got %v", err)
	}
	list := Describe([]any{1})
	for range 2 {
		if _, err := list.Open(); err != nil {
			t.Errorf("expected list source to reopen, got %v", err)
		}
	}
}

func TestStateMachine(t *testing.T) {
	p := mustFrom(t, []any{1, 2})
	if p.State() != StateOpen {
		t.Fatalf("expected open, got %s", p.State())
	}
	it, err := p.Iter()
	if err != nil {
		t.Fatal(err)
	}
	if p.State() != StateConsuming {
		t.Errorf("expected consuming, got %s", p.State())
	}
	if err := p.Map(nil); !apperrors.Is(err, apperrors.ErrCodeSequenceClosed) {
		t.Errorf("expected SEQUENCE_CLOSED while consuming, got %v", err)
	}
	for {
		_, ok, err := it.Next(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
	}
	if p.State() != StateClosed {
		t.Errorf("expected closed after exhaustion, got %s", p.State())
	}
	if _, err := p.Collect(context.Background()); !apperrors.Is(err, apperrors.ErrCodeSequenceClosed) {
		t.Errorf("expected SEQUENCE_CLOSED, got %v", err)
	}
	if _, _, err := it.Next(context.Background()); !apperrors.Is(err, apperrors.ErrCodeSequenceClosed) {
		t.Errorf("expected SEQUENCE_CLOSED from a drained iterator, got %v", err)
	}
}

func TestForEach_EarlyStopCloses(t *testing.T) {
	pulls := 0
	p := New(Generator(func(context.Context) (any, bool, error) {
		pulls++
		return pulls, true, nil
	}))
	err := p.ForEach(context.Background(), func(v any) (bool, error) {
		return v.(int) < 2, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if pulls != 2 {
		t.Errorf("expected 2 pulls, got %d", pulls)
	}
	if p.State() != StateClosed {
		t.Errorf("expected closed, got %s", p.State())
	}
}

func TestClose_Idempotent(t *testing.T) {
	p := mustFrom(t, []any{1})
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Iter(); !apperrors.Is(err, apperrors.ErrCodeSequenceClosed) {
		t.Errorf("expected SEQUENCE_CLOSED, got %v", err)
	}
}

func TestDetach_TransfersOwnership(t *testing.T) {
	donor := mustFrom(t, []any{1, 2})
	_ = donor.Map(func(_ context.Context, v any) (any, error) { return v.(int) * 3, nil })

	p := mustFrom(t, donor)
	if donor.State() != StateClosed {
		t.Errorf("expected donor closed, got %s", donor.State())
	}
	assertItems(t, collect(t, p), 3, 6)
	if _, err := donor.Detach(); !apperrors.Is(err, apperrors.ErrCodeSequenceClosed) {
		t.Errorf("expected SEQUENCE_CLOSED on second detach, got %v", err)
	}
}

func TestReduce(t *testing.T) {
	got, err := mustFrom(t, []any{1, 2, 3.5}).Reduce(context.Background(), nil, nil)
	if err != nil || got != 6.5 {
		t.Errorf("expected 6.5, got %v (%v)", got, err)
	}
	got, err = mustFrom(t, []any{1, 2}).Reduce(context.Background(), func(acc, v any) (any, error) {
		return append(acc.([]any), v), nil
	}, []any{})
	if err != nil {
		t.Fatal(err)
	}
	assertItems(t, got.([]any), 1, 2)

	_, err = mustFrom(t, []any{1, "x"}).Reduce(context.Background(), nil, nil)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidArgument) {
		t.Errorf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestRestart(t *testing.T) {
	p := Range(0, 3)
	assertItems(t, collect(t, p), 0, 1, 2)
	r, err := p.Restart()
	if err != nil {
		t.Fatal(err)
	}
	assertItems(t, collect(t, r), 0, 1, 2)

	adopted := New(Slice([]any{1}))
	if _, err := adopted.Restart(); !apperrors.Is(err, apperrors.ErrCodeInvalidOperation) {
		t.Errorf("expected INVALID_OPERATION, got %v", err)
	}
	fromIter := mustFrom(t, Slice([]any{1}))
	if _, err := fromIter.Restart(); !apperrors.Is(err, apperrors.ErrCodeInvalidOperation) {
		t.Errorf("expected INVALID_OPERATION, got %v", err)
	}
}

func TestSeqSource(t *testing.T) {
	started := false
	seq := func(yield func(any) bool) {
		started = true
		for _, v := range []any{"a", "b", "c"} {
			if !yield(v) {
				return
			}
		}
	}
	p := mustFrom(t, seq)
	if started {
		t.Fatal("expected sequence not started before pulling")
	}
	var got []any
	_ = p.ForEach(context.Background(), func(v any) (bool, error) {
		got = append(got, v)
		return len(got) < 2, nil
	})
	assertItems(t, got, "a", "b")
}

func TestSourceKindAndStateStrings(t *testing.T) {
	if SourceThunk.String() != "thunk" || SourceKind(42).String() != "unknown" {
		t.Error("unexpected SourceKind names")
	}
	if StateConsuming.String() != "consuming" || State(42).String() != "unknown" {
		t.Error("unexpected State names")
	}
}

func TestID_Unique(t *testing.T) {
	if Empty().ID() == Empty().ID() {
		t.Error("expected distinct pipeline IDs")
	}
}
