// Package service defines the contracts for the external collaborators the
// editing core talks to: linguistic analysis, dictionary learning, verse
// translation, autosave transport, and chapter loading.
//
// The core only ever depends on these interfaces. Reference implementations
// live in the subpackages remote (HTTP), translate (AI providers), and
// rules (local Lua rule scripts).
package service
