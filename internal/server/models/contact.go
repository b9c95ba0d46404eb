package models

import "time"

// Contact is an inquiry submitted through the public contact form.
// Status is free text; "new", "in_progress" and "resolved" are the
// conventional values.
type Contact struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Topic       string    `json:"topic"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	LegacyID    *string   `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ContactStats summarizes contacts by status and topic.
type ContactStats struct {
	Total          int64            `json:"total"`
	New            int64            `json:"new"`
	InProgress     int64            `json:"inProgress"`
	Resolved       int64            `json:"resolved"`
	TopicBreakdown map[string]int64 `json:"topicBreakdown"`
}

// StatusCount is one row of a GROUP BY count.
type StatusCount struct {
	Key   string
	Count int64
}
