// Package model interprets declarative network architecture descriptions.
//
// # Overview
//
// A description is a mapping with two scaling factors and two ordered
// sequences of layer specifications:
//
//	depth_multiple: 0.33
//	width_multiple: 0.25
//	backbone:
//	  - [-1, 1, Conv, [64, 6, 2, 2]]
//	  - [-1, 3, C3, [128]]
//	head:
//	  - [[-1, 0], 1, Concat, [1]]
//	  - [-1, 1, Detect, [80]]
//
// Each specification is a 4-tuple of source(s), repeat count, module
// identifier and argument list. [Interpret] walks the backbone and then the
// head in a single forward pass, computing the output channel count of every
// layer, and returns a [Result] holding one [LayerRecord] per accepted
// specification plus the directed [Edge] list between them.
//
// # Tolerance
//
// Interpretation never fails. Entries that are not sequences of at least four
// elements are skipped, unparsable numbers fall back to documented defaults,
// and channel lookups for invalid source indices reuse the most recent value.
// Every channel lookup is reported as a [Resolution] so callers can tell a
// normal lookup from a fallback.
//
// # Module kinds
//
// Output channels depend on the module's [Kind]. Concatenations sum their
// inputs, detection heads keep their channels unscaled, and every other layer
// is scaled by the width multiplier and aligned to a multiple of 8. When no
// kind is given, [Classify] derives one from the module identifier.
//
// # Arguments
//
// Textual arguments are evaluated with [ParseLiteral], a restricted parser
// for numbers, booleans, None, quoted strings, lists and tuples. Anything
// else is kept verbatim.
package model
