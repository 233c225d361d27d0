package inertia

import (
	"context"
	"reflect"
)

// Props maps prop names to values, thunks, nested Props, or Prop markers.
//
// Thunks are zero-argument functions evaluated at render time, and only when
// the prop is actually sent to the client:
//
//	inertia.Props{
//	    "user":  user,
//	    "stats": func() any { return loadStats() },
//	    "feed":  func(ctx context.Context) (any, error) { return feed.Load(ctx) },
//	}
//
// A thunk is any function taking no arguments, or only a context.Context,
// that returns a value, optionally followed by an error: func() []Todo,
// func(context.Context) (*User, error) and so on.
type Props map[string]any

// Policy decides when a prop is resolved.
type Policy int

const (
	// PolicyAlways resolves the prop whenever it survives filtering.
	PolicyAlways Policy = iota

	// PolicyPartialOnly drops the prop on the first page load. It is only
	// resolved when a partial reload asks for it by name.
	PolicyPartialOnly
)

// Kind identifies the behaviour attached to a Prop marker.
type Kind int

const (
	KindAlways Kind = iota
	KindOptional
	KindDeferred
	KindMerge
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindOptional:
		return "optional"
	case KindDeferred:
		return "deferred"
	case KindMerge:
		return "merge"
	default:
		return "always"
	}
}

// DefaultDeferredGroup is the group used by Defer when none is given.
const DefaultDeferredGroup = "default"

// Prop is a tagged prop marker. The zero value is not useful; build one with
// Always, Optional, Defer, Merge or DeepMerge.
//
// Prop is a value type and every builder method returns a modified copy, so
// a configured marker can be shared between pages safely:
//
//	posts := inertia.Merge(loadPosts).Append("data").MatchOn("id")
type Prop struct {
	kind   Kind
	policy Policy
	value  any
	group  string
	merge  mergeStrategy
}

// mergeStrategy holds the client-side merge instructions of a merge prop.
type mergeStrategy struct {
	deep         bool
	prependRoot  bool
	appendPaths  []string
	prependPaths []string
	matchOn      []string
}

// Always wraps v so it is resolved on every load where it is selected.
func Always(v any) Prop {
	return Prop{kind: KindAlways, policy: PolicyAlways, value: v}
}

// Optional wraps v so it is only resolved on partial reloads that request it.
func Optional(v any) Prop {
	return Prop{kind: KindOptional, policy: PolicyPartialOnly, value: v}
}

// Defer wraps v so it is excluded from the first load and advertised in
// deferredProps under group. The client fetches each group with a follow-up
// partial reload. Group defaults to "default".
//
//	inertia.Defer(loadComments, "content")
func Defer(v any, group ...string) Prop {
	g := DefaultDeferredGroup
	if len(group) > 0 && group[0] != "" {
		g = group[0]
	}
	return Prop{kind: KindDeferred, policy: PolicyPartialOnly, value: v, group: g}
}

// Merge wraps v so the client combines it with its current value instead of
// replacing it. The default strategy appends at the root.
//
//	inertia.Merge(nextPage)                      // append
//	inertia.Merge(newest).Prepend()              // prepend
//	inertia.Merge(users).Append("data")          // append at data
//	inertia.Merge(users).Append().MatchOn("id")  // de-duplicate on id
//
// Merge props are excluded from the first page load, like the other markers.
func Merge(v any) Prop {
	return Prop{kind: KindMerge, policy: PolicyPartialOnly, value: v}
}

// DeepMerge wraps v so the client merges it recursively.
func DeepMerge(v any) Prop {
	return Merge(v).Deep()
}

// Kind returns the marker kind.
func (p Prop) Kind() Kind {
	return p.kind
}

// Policy returns the resolution policy.
func (p Prop) Policy() Policy {
	return p.policy
}

// Group returns the deferred group, or "" for non-deferred props.
func (p Prop) Group() string {
	return p.group
}

// Value returns the wrapped value or thunk, unresolved.
func (p Prop) Value() any {
	return p.value
}

// Deep enables recursive merging. No-op for non-merge props.
func (p Prop) Deep() Prop {
	if p.kind != KindMerge {
		return p
	}
	p.merge.deep = true
	return p
}

// Append sets the append strategy. Without paths the whole prop is appended
// at the root; with paths, only the named nested paths are appended and the
// root direction is left unchanged.
func (p Prop) Append(paths ...string) Prop {
	if p.kind != KindMerge {
		return p
	}
	if len(paths) == 0 {
		p.merge.prependRoot = false
		return p
	}
	p.merge.appendPaths = appendCopy(p.merge.appendPaths, paths...)
	return p
}

// Prepend sets the prepend strategy. Without paths the whole prop is
// prepended at the root; with paths, only the named nested paths are.
func (p Prop) Prepend(paths ...string) Prop {
	if p.kind != KindMerge {
		return p
	}
	if len(paths) == 0 {
		p.merge.prependRoot = true
		return p
	}
	p.merge.prependPaths = appendCopy(p.merge.prependPaths, paths...)
	return p
}

// MatchOn records a field the client uses to de-duplicate merged items.
// When called more than once, the first field wins in matchPropsOn.
func (p Prop) MatchOn(field string) Prop {
	if p.kind != KindMerge || field == "" {
		return p
	}
	p.merge.matchOn = appendCopy(p.merge.matchOn, field)
	return p
}

// ShouldMerge reports whether the prop is a merge prop.
func (p Prop) ShouldMerge() bool {
	return p.kind == KindMerge
}

// ShouldDeepMerge reports whether the prop merges recursively.
func (p Prop) ShouldDeepMerge() bool {
	return p.kind == KindMerge && p.merge.deep
}

// MatchesOn returns the configured de-duplication fields.
func (p Prop) MatchesOn() []string {
	return p.merge.matchOn
}

// AppendsAtRoot reports whether the prop appends at the root.
func (p Prop) AppendsAtRoot() bool {
	return p.kind == KindMerge && !p.merge.prependRoot && len(p.merge.appendPaths) == 0
}

// PrependsAtRoot reports whether the prop prepends at the root.
func (p Prop) PrependsAtRoot() bool {
	return p.kind == KindMerge && p.merge.prependRoot && len(p.merge.prependPaths) == 0
}

// AppendsAtPaths returns the nested paths appended to.
func (p Prop) AppendsAtPaths() []string {
	return p.merge.appendPaths
}

// PrependsAtPaths returns the nested paths prepended to.
func (p Prop) PrependsAtPaths() []string {
	return p.merge.prependPaths
}

// Resolve evaluates the wrapped value. Thunks are called; plain values are
// returned unchanged. Nested maps are not walked here, see resolveProps.
func (p Prop) Resolve(ctx context.Context) (any, error) {
	return callThunk(ctx, p.value)
}

func appendCopy(dst []string, src ...string) []string {
	out := make([]string, 0, len(dst)+len(src))
	out = append(out, dst...)
	return append(out, src...)
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// callThunk invokes v when it is a thunk and returns it otherwise.
func callThunk(ctx context.Context, v any) (any, error) {
	switch fn := v.(type) {
	case func() any:
		return fn(), nil
	case func() (any, error):
		return fn()
	case func(context.Context) (any, error):
		return fn(ctx)
	case func(context.Context) any:
		return fn(ctx), nil
	}

	if !isThunk(v) {
		return v, nil
	}
	fn := reflect.ValueOf(v)
	var args []reflect.Value
	if fn.Type().NumIn() == 1 {
		args = []reflect.Value{reflect.ValueOf(&ctx).Elem()}
	}
	out := fn.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// isThunk reports whether v is a function taking nothing or a
// context.Context and returning a value, optionally followed by an error.
func isThunk(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Func || t.IsVariadic() {
		return false
	}
	if reflect.ValueOf(v).IsNil() {
		return false
	}
	switch t.NumIn() {
	case 0:
	case 1:
		if t.In(0) != contextType {
			return false
		}
	default:
		return false
	}
	switch t.NumOut() {
	case 1:
		return t.Out(0) != errorType
	case 2:
		return t.Out(1) == errorType
	default:
		return false
	}
}
