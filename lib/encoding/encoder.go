// Package encoding seals small key/value payloads into cookie-safe strings.
//
// A payload is sealed for a purpose, usually the cookie name, and only opens
// for the same purpose. Two modes are supported:
//   - Signed (default): base64 msgpack + HMAC-SHA256 tag, readable but tamper-proof
//   - Encrypted: AES-256-GCM with the purpose as additional data, fully opaque
//
// Every sealed value records when it was issued; an Encoder built with
// WithMaxAge rejects older values with ErrExpired.
//
// The flash cookie store uses it to carry one-shot messages across a redirect.
package encoding

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors returned by NewEncoder and Decode.
var (
	ErrEmptyKey         = errors.New("encoding: empty key")
	ErrInvalidFormat    = errors.New("encoding: invalid format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: decryption failed")
	ErrExpired          = errors.New("encoding: payload expired")
)

// envelope is what actually gets packed.
type envelope struct {
	Data   map[string]any `msgpack:"d"`
	Issued int64          `msgpack:"t"`
}

// Encoder seals and opens payloads.
type Encoder struct {
	macKey []byte
	gcm    cipher.AEAD
	maxAge time.Duration
	now    func() time.Time
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithMaxAge rejects payloads issued more than d ago. Zero disables the
// check.
func WithMaxAge(d time.Duration) Option {
	return func(e *Encoder) {
		e.maxAge = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Encoder) {
		e.now = now
	}
}

// NewEncoder creates an encoder from a secret of any length. Separate MAC and
// encryption keys are derived from it.
func NewEncoder(secret []byte, opts ...Option) (*Encoder, error) {
	if len(secret) == 0 {
		return nil, ErrEmptyKey
	}

	block, err := aes.NewCipher(derive(secret, "encrypt"))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		macKey: derive(secret, "sign"),
		gcm:    gcm,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func derive(secret []byte, label string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("inertia/encoding/" + label))
	return mac.Sum(nil)
}

// Encode seals data for purpose. If sensitive is true the payload is
// encrypted; otherwise it is signed.
func (e *Encoder) Encode(purpose string, data map[string]any, sensitive bool) (string, error) {
	packed, err := msgpack.Marshal(envelope{Data: data, Issued: e.now().Unix()})
	if err != nil {
		return "", err
	}

	if sensitive {
		return e.encrypt(purpose, packed)
	}
	return e.sign(purpose, packed), nil
}

// Decode opens a string produced by Encode with the same purpose and
// sensitive flag.
func (e *Encoder) Decode(purpose, encoded string, sensitive bool) (map[string]any, error) {
	var packed []byte
	var err error

	if sensitive {
		packed, err = e.decrypt(purpose, encoded)
	} else {
		packed, err = e.verify(purpose, encoded)
	}
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := msgpack.Unmarshal(packed, &env); err != nil {
		return nil, errors.Join(ErrInvalidFormat, err)
	}
	if e.maxAge > 0 && e.now().Sub(time.Unix(env.Issued, 0)) > e.maxAge {
		return nil, ErrExpired
	}
	if env.Data == nil {
		env.Data = map[string]any{}
	}
	return env.Data, nil
}

// sign produces base64(payload) "." base64(tag).
func (e *Encoder) sign(purpose string, data []byte) string {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	return b64 + "." + base64.RawURLEncoding.EncodeToString(e.mac(purpose, data))
}

func (e *Encoder) mac(purpose string, data []byte) []byte {
	mac := hmac.New(sha256.New, e.macKey)
	mac.Write([]byte(purpose))
	mac.Write([]byte{0})
	mac.Write(data)
	return mac.Sum(nil)[:16]
}

func (e *Encoder) verify(purpose, encoded string) ([]byte, error) {
	payload, tag, ok := strings.Cut(encoded, ".")
	if !ok {
		return nil, ErrInvalidFormat
	}

	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(tag)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	if !hmac.Equal(sig, e.mac(purpose, data)) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

// encrypt seals data with a random nonce prepended to the ciphertext.
func (e *Encoder) encrypt(purpose string, data []byte) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := e.gcm.Seal(nonce, nonce, data, []byte(purpose))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (e *Encoder) decrypt(purpose, encoded string) ([]byte, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	n := e.gcm.NonceSize()
	if len(sealed) < n+e.gcm.Overhead() {
		return nil, ErrInvalidFormat
	}

	plain, err := e.gcm.Open(nil, sealed[:n], sealed[n:], []byte(purpose))
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}
