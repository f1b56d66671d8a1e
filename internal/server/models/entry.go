// Package models defines the journal's persisted records. Models are plain
// data; storage lives in the repositories packages.
package models

import "time"

// Entry is one journal post. Text holds the raw Markdown source.
type Entry struct {
	ID    int64
	Title string
	Text  string
	Date  time.Time
}
