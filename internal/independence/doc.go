// Package independence provides the statistical test steps and orientation
// rules the bundled PC-family algorithms are assembled from.
//
// Every step satisfies the pipeline.TestStep contract: pure over the given
// graph, and degrading to a do-nothing result whenever a prerequisite
// payload (a correlation computed by an earlier step) is not present on an
// edge. Under broad candidate enumeration that situation is routine, not an
// error.
package independence
