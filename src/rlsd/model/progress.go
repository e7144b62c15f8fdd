package model

// WindowProgress is the payload of the window/progress notification sent by RLS.
type WindowProgress struct {
	ID         string   `json:"id"`
	Title      string   `json:"title,omitempty"`
	Message    string   `json:"message,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
	Done       bool     `json:"done,omitempty"`
}
