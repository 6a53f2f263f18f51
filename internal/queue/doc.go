// Package queue persists per-lecture pipeline state in SQLite so runs
// can be interrupted and resumed without repeating completed work.
package queue
