// Package planner handles the planning phase of route moves.
//
// The planner turns a discovered snapshot and a target route into a
// deterministic, ordered list of directory moves. It never touches the
// filesystem beyond existence probes; execution belongs to the engine.
//
// Key responsibilities:
//   - Generate MovePlan with ordered operations for archiving or activating a route
//   - Evict every active route that conflicts with a route being activated
//   - Keep shared resources in place while a remaining active route still binds them
//   - Detect missing sources and occupied destinations before anything is moved
package planner
