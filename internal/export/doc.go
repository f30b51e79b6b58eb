// Package export writes plots of reports to image files with gonum/plot.
package export
