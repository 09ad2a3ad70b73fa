package action

import (
	"fmt"
	"strconv"
)

// Kind classifies an action failure.
type Kind string

const (
	// KindAuth is a rejected token grant.
	KindAuth Kind = "auth"
	// KindAPI is a failed call to the Sentinel REST API.
	KindAPI Kind = "api"
	// KindInput is a missing or malformed action parameter.
	KindInput Kind = "input"
)

// Result is the single tagged outcome every action resolves to: either a
// raw JSON payload, or a failure kind with a message. Failures all render
// the same JSON shape regardless of which action produced them.
type Result struct {
	ok      bool
	payload string
	kind    Kind
	message string
}

func Ok(payload string) Result {
	return Result{ok: true, payload: payload}
}

func Fail(kind Kind, message string) Result {
	return Result{kind: kind, message: message}
}

func Failf(kind Kind, format string, args ...interface{}) Result {
	return Fail(kind, fmt.Sprintf(format, args...))
}

func (r Result) OK() bool {
	return r.ok
}

func (r Result) Kind() Kind {
	return r.kind
}

func (r Result) Message() string {
	return r.message
}

// JSON renders the result for the workflow engine.
func (r Result) JSON() string {
	if r.ok {
		return r.payload
	}

	return fmt.Sprintf(`{"success": false, "error": %s}`, strconv.Quote(r.message))
}
