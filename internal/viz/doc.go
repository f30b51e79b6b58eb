// Package viz renders reports for the terminal.
//
// Panels are drawn with lipgloss and sampled responses with asciigraph:
//
//   - [RenderReport]: every panel of an [analysis.Report]
//   - [RenderL1]: estimate, bounds and refinement count of an L1 result
//   - [RenderMatrix], [RenderValues]: raw gramians and singular values
//   - [RenderRuns]: the saved-report listing
//
// Sparkline and ProgressBar are shared with the watch TUI.
package viz
