// Package runstore persists run history in a SQLite database under the log
// directory: one row per pipeline invocation plus the artifacts it produced.
// The CLI's runs command reads it; nothing in the core depends on it.
package runstore
