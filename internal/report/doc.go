// Package report renders a stats.ProcessingResult two ways (SPEC_FULL.md
// §4.5 expansion): an interactive go-echarts HTML dashboard for live review,
// and a static gonum/plot PNG for batch/offline report generation without a
// browser.
//
// Neither renderer mutates or re-derives detector state; both consume the
// already-computed ProcessingResult and (for the dashboard's time series) a
// caller-supplied history of statistics snapshots.
package report
