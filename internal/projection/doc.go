// Package projection compiles the selection set of a resolved GraphQL field
// into the minimal projection handed to the data-access layer.
//
// # Overview
//
// A resolver knows which fields the caller actually requested; forwarding
// that shape to the store avoids over-fetching. The Parser walks the field's
// selection set in document order and produces a nested map where each
// requested scalar becomes `true` and each requested relation becomes
// `{select: <nested map>, <forwarded args>...}`. A parallel extractor turns
// the selection set of an aggregate or groupBy root into a flat
// aggregate-function map (`_count`, `_avg`, `_sum`, `_min`, `_max`).
//
// Named fragments are resolved through the document's fragment table and
// inline fragments in place; both merge into the surrounding map with
// last-write-wins semantics in document order. Argument literals are
// converted to plain Go values with variable substitution; only the
// relation argument whitelist (where, orderBy, take, skip, cursor,
// distinct) is forwarded, and an argument whose value cannot be resolved is
// omitted rather than forwarded as a non-value.
//
// # Modes
//
// With WithRegistry, parsing is schema-aware: fields absent from the active
// model type's scalar and relation sets are treated as resolver-only and
// dropped, and relation recursion switches to the related type's metadata.
// A type name the registry cannot resolve is a generator/schema mismatch
// and fails the whole parse.
//
// By default unresolved fragments and variables degrade silently: the
// spread contributes nothing, the argument is omitted. WithStrict turns
// both into errors for callers that prefer failing loudly over a
// best-effort projection.
//
// Parsing is pure and synchronous: no I/O, no shared mutable state, safe to
// call from any number of requests at once. An empty result for a root
// field means "request default/all fields"; the data layer decides what
// that defaults to.
package projection
