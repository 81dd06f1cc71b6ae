// Package report serializes transfer results: a single JSON document per
// run and an append-only JSONL log with one line per item.
package report
