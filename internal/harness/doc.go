// Package harness runs YAML scenarios against a complete in-process game.
//
// Each scenario gets a fresh in-memory SQLite store, a frozen clock, a
// seeded random source and sequential IDs and flow tokens, so the recorded
// event history is identical on every run. That history is the scenario's
// trace: assertions inspect it, and golden files pin it down.
//
// A scenario looks like:
//
//	name: task_completion
//	description: completing a task pays out and runs its script
//	scripts:
//	  - name: bonus
//	    events: [onTaskComplete]
//	    code: x.inventory.addItem("coin", 2)
//	flow:
//	  - op: add_task
//	    args: {name: Clean, points: "temizlik:10", scripts: [bonus]}
//	  - op: complete_task
//	    args: {name: Clean}
//	    expect: {ok: true}
//	assertions:
//	  - type: event_order
//	    events: [onTaskAdd, onTaskComplete, onInventoryAdd]
//	  - type: final_state
//	    table: inventory
//	    where: {name: coin}
//	    expect: {amount: 2}
//
// Steps name an operation listed by OpNames. Setup steps must succeed; flow steps
// may carry an expect clause checked against the operation's outcome.
//
// Golden traces render one event per line:
//
//	<seq> <flow> <depth> <event> <data...>
//
// Scalar payload fields print as key=value, records print their name as
// key.name="...", and other nested values print only their size.
package harness
