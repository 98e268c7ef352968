// Package engine implements the event bus that drives user scripts.
//
// Every domain event goes through Emit: it is stamped with a logical
// sequence number, appended to the bounded history in the state store, and
// then handed to each matching script in store order.
//
// Dispatch is synchronous and depth-first. A script that triggers another
// event (directly, or through a capability such as addItem) sees that
// event's full dispatch complete before its own call returns. Events of one
// cascade share a flow token, which the cascade guard uses to bound the
// work a single user action can cause:
//
//   - CycleDetector skips a script already handling the same event further
//     up the stack.
//   - QuotaEnforcer caps the number of script runs per flow.
//   - The depth limit refuses events nested too deeply.
//
// Script failures are logged and reported, never propagated to the caller
// of Emit.
package engine
