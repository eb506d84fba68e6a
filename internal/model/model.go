// Package model contains typed views of the payloads exchanged with the
// transcription backend. The client itself treats payloads as opaque; these
// types are for callers that want structure.
package model

// Session status values reported by the backend.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Pipeline stages a session moves through, in order.
const (
	StageDownload   = "download"
	StageTranscribe = "transcribe"
	StageNote       = "note"
)

// Stages lists the pipeline stages in execution order.
var Stages = []string{StageDownload, StageTranscribe, StageNote}

// ConfigStatus is the GET /api/config response. The key itself is never
// returned, only a masked form.
type ConfigStatus struct {
	HasKey       bool   `json:"has_key"`
	APIKeyMasked string `json:"api_key_masked,omitempty"`
}

// ConfigInput is the POST /api/config request body.
type ConfigInput struct {
	APIKey string `json:"api_key" validate:"required,min=10"`
}

// SessionInput is the POST /api/sessions request body.
type SessionInput struct {
	URL    string `json:"url" validate:"required,url"`
	Style  string `json:"style,omitempty"`
	Remark string `json:"remark,omitempty"`
}

// Created is the POST /api/sessions response.
type Created struct {
	ID int64 `json:"id"`
}

// Ack is the response of mutating calls that return no resource.
type Ack struct {
	OK bool `json:"ok"`
}

// Session is one transcription job.
type Session struct {
	ID         int64  `json:"id"`
	URL        string `json:"url"`
	Style      string `json:"style,omitempty"`
	Remark     string `json:"remark,omitempty"`
	Status     string `json:"status"`
	Stage      string `json:"stage"`
	Error      string `json:"error,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	Note       string `json:"note,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Step is the progress record of one pipeline stage.
type Step struct {
	Step      string `json:"step"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SessionDetail is the GET /api/sessions/{id} response.
type SessionDetail struct {
	Session Session `json:"session"`
	Steps   []Step  `json:"steps"`
}

// SessionList is the GET /api/sessions response.
type SessionList struct {
	Items []Session `json:"items"`
}

// Terminal reports whether the session will not change any more.
func (s Session) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}
