// Package fallback tries an ordered list of model candidates until one of
// them produces a usable response.
//
// A run moves through explicit states: it starts [Pending] with every
// candidate in priority order, each [Sequencer.Step] formats, invokes, and
// normalizes the head candidate, and the run ends [Succeeded] on the first
// usable response or [Exhausted] once no candidates remain. Candidates are
// tried strictly one at a time; later ones are never called once an earlier
// one succeeds.
//
// Per-attempt failures are ordinary [Outcome] values reported to an
// [Observer]; only the aggregate [ErrExhausted] reaches the caller.
package fallback
