// Package adapter parses heterogeneous position records — free-text lines,
// JSON documents, and CSV files — into the canonical gpsfix.Fix stream the
// detector consumes, and serializes a stats.ProcessingResult back out.
//
// Every parse function is lenient: a malformed record is logged and
// skipped rather than aborting the whole input (spec.md §7, InputFormat and
// RangeViolation are both skip-and-log policies).
package adapter
