// Package rules runs project-specific consistency checks written in Lua.
//
// A rules script defines a global function
//
//	function analyze(text, verse_index, pane_id)
//
// returning an array of suggestion tables with the fields start, stop
// (half-open rune offsets into text), message, severity ("hint",
// "warning", or "error"), and an optional alternatives array.
//
// The interpreter state is not safe for concurrent use, so all script
// calls are serialized through a single goroutine that owns the state.
// Scripts run sandboxed: file, OS, and module-loading facilities are
// stripped before the script loads.
package rules
