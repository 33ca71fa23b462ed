package middleware

// Context keys used to store request metadata.
const (
	ContextKeyUserEmail = "user_email"
	ContextKeyRequestID = "request_id"
)
