// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// ZoomRegistrant is a raw registrant row from the Zoom registrants listing.
// Empty strings mean the field was absent.
type ZoomRegistrant struct {
	ID              string                 `json:"id" mapstructure:"id"`
	FirstName       string                 `json:"first_name" mapstructure:"first_name"`
	LastName        string                 `json:"last_name" mapstructure:"last_name"`
	Email           string                 `json:"email" mapstructure:"email"`
	City            string                 `json:"city" mapstructure:"city"`
	State           string                 `json:"state" mapstructure:"state"`
	Country         string                 `json:"country" mapstructure:"country"`
	Status          string                 `json:"status" mapstructure:"status"`
	CustomQuestions []CustomQuestionAnswer `json:"custom_questions,omitempty" mapstructure:"custom_questions"`
}

// CustomQuestionAnswer is a registrant's answer to a custom registration question.
type CustomQuestionAnswer struct {
	Title string `json:"title" mapstructure:"title"`
	Value string `json:"value" mapstructure:"value"`
}

// RegistrantRecord is a normalized registrant.
type RegistrantRecord struct {
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Location        string                 `json:"location"`
	CustomQuestions []CustomQuestionAnswer `json:"custom_questions,omitempty"`
	SortKey         string                 `json:"-"`
}

// ZoomParticipant is one join/leave row from the Zoom participants report.
type ZoomParticipant struct {
	ID        string    `json:"id" mapstructure:"id"`
	Name      string    `json:"name" mapstructure:"name"`
	UserEmail string    `json:"user_email" mapstructure:"user_email"`
	JoinTime  time.Time `json:"join_time" mapstructure:"join_time"`
	LeaveTime time.Time `json:"leave_time" mapstructure:"leave_time"`
	Duration  int       `json:"duration" mapstructure:"duration"`
}
