// Package cron defines the contract of the external scheduling collaborator
// and provides an in-process timer implementation of it.
//
// The core only enqueues, dequeues and inspects tasks; storage, timer firing
// and rescheduling belong to the collaborator. The fire callback hands the
// stored kind tag and payload back for dispatch.
package cron

import (
	"time"
)

// TaskID is the collaborator-issued handle of a scheduled task.
type TaskID string

// KindTag labels what a task's payload decodes into.
type KindTag string

// Iterations bounds how many times a task fires.
type Iterations struct {
	Infinite bool   `json:"infinite"`
	Exact    uint64 `json:"exact,omitempty"`
}

// Schedule describes the periodic re-invocation timing.
type Schedule struct {
	Interval   time.Duration `json:"interval"`
	Iterations Iterations    `json:"iterations"`
}

// TaskDetail is the collaborator's view of one task.
type TaskDetail struct {
	ID            TaskID    `json:"id"`
	Kind          KindTag   `json:"kind"`
	Payload       []byte    `json:"payload"`
	Schedule      Schedule  `json:"schedule"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	RescheduledAt time.Time `json:"rescheduled_at"`
	FiresLeft     *uint64   `json:"fires_left,omitempty"`
}

// FireFunc is invoked by the collaborator on each interval elapse.
type FireFunc func(id TaskID, kind KindTag, payload []byte)

// Scheduler is the collaborator contract the core consumes.
type Scheduler interface {
	// Enqueue stores the task and starts its timer. It fails only when the
	// payload cannot be encoded for storage.
	Enqueue(kind KindTag, payload any, schedule Schedule) (TaskID, error)
	// Dequeue stops and forgets a task. Unknown ids are ignored.
	Dequeue(id TaskID)
	// Get resolves scheduling detail for display.
	Get(id TaskID) (TaskDetail, error)
}
