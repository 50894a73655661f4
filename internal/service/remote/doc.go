// Package remote provides HTTP-backed implementations of the analysis,
// dictionary, autosave, and chapter-loading collaborators.
//
// Requests and responses are plain JSON. The wire shapes are built with
// sjson and read with gjson so the clients stay tolerant of fields the
// server adds; only the paths named here are contractual.
package remote
