// Package crm is the calling layer over the stores: it validates input
// before any I/O, runs the collaborators (mail, document rendering) on
// the background pool, and reports store errors to its caller without
// printing anything itself.
package crm
