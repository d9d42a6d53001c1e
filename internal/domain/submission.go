package domain

import "time"

// Submission describes one pack copied into the showcase tree.
type Submission struct {
	PackName    string
	Author      string // "@<username>"
	Version     string
	Description string
	SubmittedAt time.Time
	Destination string
}
