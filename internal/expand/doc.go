// Package expand implements the attached-macro expansion engine: attribute
// resolution, scheduling, invocation, hygiene validation, dependency/cycle
// detection and fragment merging.
//
// # Control flow
//
// The engine processes one unit tree in feedback rounds. Each round:
//
//  1. The resolver walks the scope tree in pre-order and maps every
//     not-yet-executed attribute occurrence to a macro definition and the
//     subset of its roles applicable at that syntactic position.
//  2. Requests execute in the fixed role order memberAttribute → member →
//     peer → accessor. memberAttribute output is unioned into member
//     attribute lists immediately and fed back to the next round's
//     resolution; the other roles stage fragments in the round's batch.
//  3. Hygiene validation runs per fragment; a violation discards only that
//     fragment.
//  4. Before anything is merged, the dependency graph recorded during
//     invocation is checked for cycles. A cycle aborts the whole batch:
//     none of its fragments reach the tree.
//  5. Surviving fragments merge into a new immutable tree version.
//
// Rounds repeat until no new requests appear. The loop is bounded: a fixed
// round cap plus a visited (declaration, attribute-set) state set turn
// runaway feedback into a NonterminatingExpansion diagnostic instead of an
// infinite loop.
//
// Requests targeting independent declarations run concurrently within one
// phase; the unique-name allocator and the diagnostic sink are the only
// shared mutable state.
package expand
