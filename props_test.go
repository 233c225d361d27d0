package inertia

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestPropConstructors(t *testing.T) {
	tests := []struct {
		name   string
		prop   Prop
		kind   Kind
		policy Policy
		group  string
	}{
		{"always", Always(1), KindAlways, PolicyAlways, ""},
		{"optional", Optional(1), KindOptional, PolicyPartialOnly, ""},
		{"defer default group", Defer(1), KindDeferred, PolicyPartialOnly, "default"},
		{"defer named group", Defer(1, "g"), KindDeferred, PolicyPartialOnly, "g"},
		{"defer empty group", Defer(1, ""), KindDeferred, PolicyPartialOnly, "default"},
		{"merge", Merge(1), KindMerge, PolicyPartialOnly, ""},
		{"deep merge", DeepMerge(1), KindMerge, PolicyPartialOnly, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prop.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.prop.Kind(), tt.kind)
			}
			if tt.prop.Policy() != tt.policy {
				t.Errorf("Policy() = %v, want %v", tt.prop.Policy(), tt.policy)
			}
			if tt.prop.Group() != tt.group {
				t.Errorf("Group() = %q, want %q", tt.prop.Group(), tt.group)
			}
		})
	}
}

func TestMergeStrategy(t *testing.T) {
	tests := []struct {
		name         string
		prop         Prop
		appendsRoot  bool
		prependsRoot bool
		deep         bool
		appendPaths  []string
		prependPaths []string
		matchOn      []string
	}{
		{"default appends", Merge(1), true, false, false, nil, nil, nil},
		{"prepend", Merge(1).Prepend(), false, true, false, nil, nil, nil},
		{"prepend then append", Merge(1).Prepend().Append(), true, false, false, nil, nil, nil},
		{"append at path", Merge(1).Append("data"), false, false, false, []string{"data"}, nil, nil},
		{"prepend at path", Merge(1).Prepend("data"), true, false, false, nil, []string{"data"}, nil},
		{"match on", Merge(1).MatchOn("id").MatchOn("uuid"), true, false, false, nil, nil, []string{"id", "uuid"}},
		{"deep", DeepMerge(1), true, false, true, nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.prop
			if !p.ShouldMerge() {
				t.Error("ShouldMerge() = false")
			}
			if p.AppendsAtRoot() != tt.appendsRoot {
				t.Errorf("AppendsAtRoot() = %v, want %v", p.AppendsAtRoot(), tt.appendsRoot)
			}
			if p.PrependsAtRoot() != tt.prependsRoot {
				t.Errorf("PrependsAtRoot() = %v, want %v", p.PrependsAtRoot(), tt.prependsRoot)
			}
			if p.ShouldDeepMerge() != tt.deep {
				t.Errorf("ShouldDeepMerge() = %v, want %v", p.ShouldDeepMerge(), tt.deep)
			}
			if !slices.Equal(p.AppendsAtPaths(), tt.appendPaths) {
				t.Errorf("AppendsAtPaths() = %v, want %v", p.AppendsAtPaths(), tt.appendPaths)
			}
			if !slices.Equal(p.PrependsAtPaths(), tt.prependPaths) {
				t.Errorf("PrependsAtPaths() = %v, want %v", p.PrependsAtPaths(), tt.prependPaths)
			}
			if !slices.Equal(p.MatchesOn(), tt.matchOn) {
				t.Errorf("MatchesOn() = %v, want %v", p.MatchesOn(), tt.matchOn)
			}
		})
	}
}

func TestMergeBuildersIgnoreOtherKinds(t *testing.T) {
	p := Optional(1).Prepend().Deep().MatchOn("id").Append("data")
	if p.ShouldMerge() || p.ShouldDeepMerge() || p.PrependsAtRoot() {
		t.Errorf("merge builders changed an optional prop: %+v", p)
	}
	if len(p.MatchesOn()) != 0 || len(p.AppendsAtPaths()) != 0 {
		t.Errorf("merge builders recorded data on an optional prop: %+v", p)
	}
}

func TestMergeBuildersDoNotShareState(t *testing.T) {
	base := Merge(1).Append("a")
	left := base.Append("b")
	right := base.Append("c")

	if !slices.Equal(left.AppendsAtPaths(), []string{"a", "b"}) {
		t.Errorf("left = %v", left.AppendsAtPaths())
	}
	if !slices.Equal(right.AppendsAtPaths(), []string{"a", "c"}) {
		t.Errorf("right = %v", right.AppendsAtPaths())
	}
	if !slices.Equal(base.AppendsAtPaths(), []string{"a"}) {
		t.Errorf("base = %v", base.AppendsAtPaths())
	}
}

type ctxKey struct{}

func TestPropResolve(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey{}, "from-ctx")
	boom := errors.New("boom")

	tests := []struct {
		name    string
		value   any
		want    any
		wantErr error
	}{
		{"plain", 5, 5, nil},
		{"func any", func() any { return "a" }, "a", nil},
		{"func any error", func() (any, error) { return "b", nil }, "b", nil},
		{"func ctx", func(ctx context.Context) (any, error) { return ctx.Value(ctxKey{}), nil }, "from-ctx", nil},
		{"func ctx any", func(ctx context.Context) any { return ctx.Value(ctxKey{}) }, "from-ctx", nil},
		{"error", func() (any, error) { return nil, boom }, nil, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Always(tt.value).Resolve(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindAlways:   "always",
		KindOptional: "optional",
		KindDeferred: "deferred",
		KindMerge:    "merge",
	}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
