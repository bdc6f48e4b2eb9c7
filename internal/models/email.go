package models

// EmailSummary is the voice-friendly view of one unread message: decoded
// sender and subject plus a whitespace-collapsed text body.
type EmailSummary struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// OutboundEmail describes a single plain-text message to transmit.
type OutboundEmail struct {
	FromAddress string
	ToAddress   string
	Subject     string
	Body        string
}
