// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// SchedulePublishedEvent is published when a schedule completes the
// draft-to-published transition. It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type SchedulePublishedEvent struct {
	ScheduleID   uint64 `json:"schedule_id"`
	ScheduleName string `json:"schedule_name"`
	ClientID     uint64 `json:"client_id"`
	Version      uint64 `json:"version"`
	ShowCount    int    `json:"show_count"`
	RangeStart   string `json:"range_start"`
	RangeEnd     string `json:"range_end"`
	PublishedBy  uint64 `json:"published_by"`
	PublishedAt  string `json:"published_at"`
}
