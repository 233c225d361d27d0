package inertia

import "errors"

// Sentinel errors for page rendering.
var (
	ErrNoSession        = errors.New("inertia: no flash store configured")
	ErrPropResolution   = errors.New("inertia: prop resolution failed")
	ErrNoRootTemplate   = errors.New("inertia: no root template configured")
	ErrTemplateNotFound = errors.New("inertia: template not found")
	ErrMarshal          = errors.New("inertia: page marshal failed")
	ErrInvalidFlash     = errors.New("inertia: invalid flash payload")
)

// IsNoSession checks if err is caused by a missing flash store.
func IsNoSession(err error) bool {
	return errors.Is(err, ErrNoSession)
}

// IsPropResolution checks if err was raised while resolving a prop thunk.
func IsPropResolution(err error) bool {
	return errors.Is(err, ErrPropResolution)
}

// IsTemplateError checks if err is a root template lookup error.
func IsTemplateError(err error) bool {
	return errors.Is(err, ErrNoRootTemplate) || errors.Is(err, ErrTemplateNotFound)
}
