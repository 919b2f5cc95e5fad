// Package mir defines the mid-level intermediate representation consumed by
// the placement core: SSA-form bodies made of basic blocks, locals, places,
// rvalues, and terminators.
//
// A Body is the unit of analysis. Every pass in this module receives a
// finalized, type-annotated Body from the upstream lowering stage and treats
// it as read-only. Bodies are required to be in SSA form: every assignment
// targets a bare local with no projections. Violations are compiler bugs and
// are reported via panics, not diagnostics.
package mir
