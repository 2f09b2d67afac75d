// Package policy gates bootstrap runs on a Rego support matrix:
// end-of-life releases and channel/distribution combinations the
// package repositories do not serve are rejected after identity
// resolution and before any handler dispatch.
package policy
