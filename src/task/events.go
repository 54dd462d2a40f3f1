package task

import "time"

type TaskEvent struct {
	File      string        `json:"file"`
	Type      TaskEventType `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
}

type TaskEventType string

const (
	Started   TaskEventType = "started"
	Read      TaskEventType = "read"
	Decoded   TaskEventType = "decoded"
	Keyed     TaskEventType = "keyed"
	Encoded   TaskEventType = "encoded"
	Written   TaskEventType = "written"
	Skipped   TaskEventType = "skipped"
	Failed    TaskEventType = "failed"
	Completed TaskEventType = "completed"
)
