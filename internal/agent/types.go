// Package agent implements the conversation pipeline behind the chat widget.
package agent

// DefaultSessionKey is used when a request carries no usable session id.
const DefaultSessionKey = "guest"

// ErrorReplyText is the visitor-facing text for any internal fault.
const ErrorReplyText = "System Error."

// ChatRequest is one visitor message from the widget.
type ChatRequest struct {
	SessionID     string `json:"session_id"`
	Message       string `json:"message"`
	StoredContact string `json:"stored_contact,omitempty"`
	Language      string `json:"language,omitempty"`
}

// ChatResponse is the reply to a ChatRequest. SaveContact carries the contact on
// file after the turn, for the widget to persist and send back as
// stored_contact; it is null while no contact is known.
type ChatResponse struct {
	Text         string   `json:"text"`
	QuickReplies []string `json:"quick_replies"`
	SaveContact  *string  `json:"save_contact"`
}

// ErrorReply is returned for malformed requests and internal faults.
func ErrorReply() ChatResponse {
	return ChatResponse{Text: ErrorReplyText, QuickReplies: []string{}}
}

// ReportRequest asks for a session's transcript to be forwarded to the operator.
type ReportRequest struct {
	SessionID string `json:"session_id"`
}

// Report statuses.
const (
	ReportStatusSuccess = "success"
	ReportStatusError   = "error"
)

// ReportResponse is the result of a ReportRequest.
type ReportResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Stats contains relay statistics.
type Stats struct {
	ActiveSessions int `json:"active_sessions"`
}
