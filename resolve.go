package inertia

import (
	"context"
	"fmt"
	"slices"
	"sort"
)

// negotiation captures the per-request inputs of prop resolution.
type negotiation struct {
	component string
	partial   bool
	only      []string
	except    []string
}

// filterProps keeps the props that should be sent for this request.
//
// On a full load every PolicyPartialOnly marker is dropped. On a partial
// reload only keys in the include list and not in the exclude list survive.
func (n negotiation) filterProps(props Props) Props {
	out := make(Props, len(props))
	if !n.partial {
		for key, value := range props {
			if p, ok := value.(Prop); ok && p.policy == PolicyPartialOnly {
				continue
			}
			out[key] = value
		}
		return out
	}

	for key, value := range props {
		if !slices.Contains(n.only, key) {
			continue
		}
		if slices.Contains(n.except, key) {
			continue
		}
		out[key] = value
	}
	return out
}

// resolveProps evaluates thunks and markers. Nested Props and map[string]any
// values are walked; slices are left untouched, so thunks inside them are
// never called.
func resolveProps(ctx context.Context, props map[string]any) (Props, error) {
	resolved := make(Props, len(props))
	for key, value := range props {
		v, err := resolveValue(ctx, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrPropResolution, key, err)
		}
		resolved[key] = v
	}
	return resolved, nil
}

func resolveValue(ctx context.Context, value any) (any, error) {
	switch v := value.(type) {
	case Prop:
		return v.Resolve(ctx)
	case Props:
		return resolveProps(ctx, v)
	case map[string]any:
		return resolveProps(ctx, v)
	default:
		if isThunk(v) {
			return callThunk(ctx, v)
		}
		return v, nil
	}
}

// deferredGroups groups deferred keys by group name. Returns nil on partial
// reloads, where the client already knows what it asked for.
func (n negotiation) deferredGroups(props Props) map[string][]string {
	if n.partial {
		return nil
	}

	groups := make(map[string][]string)
	for key, value := range props {
		p, ok := value.(Prop)
		if !ok || p.kind != KindDeferred {
			continue
		}
		groups[p.group] = append(groups[p.group], key)
	}
	if len(groups) == 0 {
		return nil
	}
	for _, keys := range groups {
		sort.Strings(keys)
	}
	return groups
}

// mergeMeta is the merge strategy metadata attached to a page.
type mergeMeta struct {
	merge     []string
	prepend   []string
	deepMerge []string
	matchOn   map[string]string
}

// mergeMetadata collects merge instructions for every merge prop on the page.
// It runs on full and partial loads alike.
func mergeMetadata(props Props) mergeMeta {
	var meta mergeMeta
	for key, value := range props {
		p, ok := value.(Prop)
		if !ok || !p.ShouldMerge() {
			continue
		}

		meta.merge = append(meta.merge, key)
		if p.PrependsAtRoot() {
			meta.prepend = append(meta.prepend, key)
		}
		if p.ShouldDeepMerge() {
			meta.deepMerge = append(meta.deepMerge, key)
		}
		if fields := p.MatchesOn(); len(fields) > 0 {
			if meta.matchOn == nil {
				meta.matchOn = make(map[string]string)
			}
			meta.matchOn[key] = fields[0]
		}
	}

	sort.Strings(meta.merge)
	sort.Strings(meta.prepend)
	sort.Strings(meta.deepMerge)
	return meta
}
