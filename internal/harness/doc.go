// Package harness provides a conformance testing framework for discovery
// pipelines.
//
// Scenarios are YAML files pairing a dataset with an algorithm and a list
// of assertions over the final graph and the applied-action trace. Every
// scenario runs deterministically: one worker and ordered apply, so the
// same dataset and algorithm always produce the same trace. Golden trace
// files pin that trace down exactly; assertions express the structural
// expectations a reader should be able to check by hand.
package harness
