// Package observability records archive builds in a structured JSON Lines
// (JSONL) event log and derives build metrics on demand from it.
package observability
