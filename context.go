package inertia

import (
	"context"
	"errors"
	"maps"
	"sync"
)

// ErrNoRequestContext is returned by Share when the request did not pass
// through Inertia.Middleware or NewContext.
var ErrNoRequestContext = errors.New("inertia: request context not installed")

type contextKey struct{}

// requestState holds the request-scoped shared props. It lives exactly as long
// as the request, so values shared by one request never leak into another.
type requestState struct {
	mu    sync.Mutex
	props Props

	// flash written during this request, handed to the FlashStore in full on
	// every write so repeated writes accumulate.
	flash     Props
	sessionID string
}

func stateFrom(ctx context.Context) *requestState {
	st, _ := ctx.Value(contextKey{}).(*requestState)
	return st
}

// pendingFlash records key=value for the current request and returns every
// flash value written so far.
func pendingFlash(ctx context.Context, key string, value any) Props {
	st := stateFrom(ctx)
	if st == nil {
		return Props{key: value}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.flash == nil {
		st.flash = Props{}
	}
	st.flash[key] = value
	return maps.Clone(st.flash)
}

// NewContext returns a copy of ctx carrying an empty request-scoped prop set.
// Inertia.Middleware calls this for every request; call it yourself only when
// rendering outside the middleware.
func NewContext(ctx context.Context) context.Context {
	if _, ok := ctx.Value(contextKey{}).(*requestState); ok {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, &requestState{props: Props{}})
}

// Share adds a prop to every page rendered for the current request.
//
// Use it from middleware that knows about the request, such as auth:
//
//	func withUser(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        _ = inertia.Share(r.Context(), "auth", authProps(r))
//	        next.ServeHTTP(w, r)
//	    })
//	}
//
// Application-wide values belong in WithSharedProps instead.
func Share(ctx context.Context, key string, value any) error {
	st, ok := ctx.Value(contextKey{}).(*requestState)
	if !ok {
		return ErrNoRequestContext
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.props[key] = value
	return nil
}

// SharedProps returns a copy of the props shared for the current request.
func SharedProps(ctx context.Context) Props {
	st, ok := ctx.Value(contextKey{}).(*requestState)
	if !ok {
		return Props{}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return maps.Clone(st.props)
}

// takePendingFlash returns and forgets the flash values written during the
// current request.
func takePendingFlash(ctx context.Context) Props {
	st := stateFrom(ctx)
	if st == nil {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	flash := st.flash
	st.flash = nil
	return flash
}
