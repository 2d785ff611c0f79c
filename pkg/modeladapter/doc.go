// Package modeladapter defines the interface and shared plumbing for calling
// hosted inference backends.
//
// It contains:
//   - [Invoker] interface: one bounded-time call to a single backend
//   - embeddable [ModelAdapter] base struct with HTTP helpers, auth, custom headers, and the call timeout
//   - the failure taxonomy shared by every backend ([ErrUnavailable], [ErrTimeout], [ErrMalformedPayload])
//
// This package contains no backend-specific code. Concrete adapters live in
// separate packages that import modeladapter.
package modeladapter
