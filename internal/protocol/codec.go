package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"
)

// ErrUnknownMessageType is returned by Marshal for a type this codec
// does not know how to encode.
var ErrUnknownMessageType = errors.New("protocol: unknown message type")

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Marshal encodes any outbound message type defined in this package to
// its wire JSON form.
func Marshal(msg any) ([]byte, error) {
	switch msg.(type) {
	case *Waiting, *GameStart, *HandStart, *ActionRequest, *ActionResult,
		*HandEnd, *GameEnd, *Error,
		Waiting, GameStart, HandStart, ActionRequest, ActionResult,
		HandEnd, GameEnd, Error:
		// fall through to the shared encode path below
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMessageType, msg)
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(msg); err != nil {
		return nil, fmt.Errorf("protocol: encode %T: %w", msg, err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// PeekType reports the "type" field of a raw inbound frame without
// fully decoding it, or an error if the frame is not valid JSON.
func PeekType(raw []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("protocol: invalid JSON: %w", err)
	}
	return env.Type, nil
}

// ParseJoin decodes and validates an inbound join frame. Name must be
// 1-32 Unicode code points; uniqueness against already-registered bots
// is the session coordinator's responsibility, not the codec's.
func ParseJoin(raw []byte) (*Join, error) {
	var j Join
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("protocol: invalid join: %w", err)
	}
	if err := ValidateName(j.Name); err != nil {
		return nil, err
	}
	return &j, nil
}

// ValidateName reports whether name satisfies the 1-32 code point rule.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > 32 {
		return fmt.Errorf("protocol: name must be 1-32 code points, got %d", n)
	}
	return nil
}

// ActionParseError tags a ParseAction failure with the exact §7 wire
// error code the caller should report to the offending seat: BAD_JSON
// for malformed JSON, UNKNOWN_TYPE for a non-"action" envelope, or
// BAD_ACTION for a structurally invalid action payload.
type ActionParseError struct {
	Code string
	Err  error
}

func (e *ActionParseError) Error() string { return e.Err.Error() }
func (e *ActionParseError) Unwrap() error { return e.Err }

// ParseAction decodes an inbound action frame. It does not validate
// the action against the currently legal set — only structural shape
// (the envelope is "action"; the nested action type is known; raise
// carries an integer amount). That semantic check belongs to the hand
// engine via the session coordinator.
func ParseAction(raw []byte) (*Action, error) {
	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, &ActionParseError{Code: CodeBadJSON, Err: fmt.Errorf("protocol: invalid action: %w", err)}
	}
	if a.Type != TypeAction {
		return nil, &ActionParseError{Code: CodeUnknownType, Err: fmt.Errorf("protocol: expected action, got %q", a.Type)}
	}
	switch a.Action.Type {
	case "fold", "check", "call":
		return &a, nil
	case "raise":
		if a.Action.Amount == nil {
			return nil, &ActionParseError{Code: CodeBadAction, Err: fmt.Errorf("protocol: raise requires an integer amount")}
		}
		return &a, nil
	default:
		return nil, &ActionParseError{Code: CodeBadAction, Err: fmt.Errorf("protocol: unrecognized action type %q", a.Action.Type)}
	}
}

// IntPtr is a small helper for building wire messages with optional
// integer fields (Amount, MinAmount, MaxAmount).
func IntPtr(v int) *int {
	return &v
}
