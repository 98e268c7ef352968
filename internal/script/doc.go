// Package script runs user-authored automation against the game API.
//
// A Host turns source text into behavior. It receives the capability surface
// and a per-invocation Context on every call and must not retain either after
// Run returns. LuaHost is the production host: each run gets a fresh Lua
// interpreter with three globals:
//
//	x        the capability table (x.tasks, x.inventory, x.achievements, ...)
//	task     context.task, when present
//	context  {event, eventData, ...eventData keys}
//
// Runtime wraps a Host with logging and typed errors. Scripts are not
// sandboxed beyond what the host exposes; failures surface as *ExecError for
// the caller to log or report.
package script
