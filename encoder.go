package inertia

import (
	"errors"

	"github.com/pthm/inertia/lib/encoding"
)

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// NewEncoder creates a new encoder with the given secret key.
func NewEncoder(key []byte, opts ...encoding.Option) (*Encoder, error) {
	return encoding.NewEncoder(key, opts...)
}

// wrapEncodingError maps encoding package errors onto ErrInvalidFlash.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) ||
		errors.Is(err, encoding.ErrSignatureInvalid) ||
		errors.Is(err, encoding.ErrDecryptFailed) ||
		errors.Is(err, encoding.ErrExpired) {
		return errors.Join(ErrInvalidFlash, err)
	}
	return err
}
