// Package schema provides pure field-contract operations over signal
// payloads: validation, default injection, and sanitization.
//
// A schema definition maps field names to a declared type, a required flag,
// and an optional default. The three operations are side-effect free and
// share no state across calls:
//
//   - Validate checks required-field presence and type conformance; unknown
//     fields are not errors.
//   - ValidateAndProcess additionally returns a copy of the payload with
//     declared defaults injected for absent optional fields.
//   - Sanitize returns a copy restricted to exactly the declared fields,
//     discarding all others.
//
// Strict wire rules combine all three: a failed validation blocks delivery,
// and a successful one delivers the processed, sanitized payload so a node
// cannot smuggle undeclared data through the graph.
package schema
