// Package config loads, validates, and persists versepane settings.
//
// Settings live in a single TOML file. Loading a missing file yields the
// defaults rather than an error, so a fresh install starts without any
// setup step. Per-pane preferences (sync participation, annotation
// visibility) are keyed by pane ID and survive restarts.
//
// A Watcher built on fsnotify reloads the file when it changes on disk,
// debouncing the write bursts editors produce when saving.
package config
