// Package gcj02 implements the WGS-84 → GCJ-02 coordinate shift used by
// Chinese map bases (spec.md §6, "for external renderers only" — the
// detector itself is unaware of this transform and never imports this
// package).
package gcj02
