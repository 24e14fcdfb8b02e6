package observability

// EventEnvelope wraps every message published to the events exchange, so
// consumers can route on type/name without parsing the payload.
type EventEnvelope struct {
	EventType string `json:"event_type"`
	EventName string `json:"event_name"`
	Payload   any    `json:"payload"`
}

// BuildHeaders carries request and trace correlation onto published events.
// Empty values are omitted rather than sent blank.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := make(map[string]string, 2)
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
