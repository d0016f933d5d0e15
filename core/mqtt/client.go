package mqtt

// Publisher represents a client capable of shipping telemetry payloads to a
// per-project topic. Delivery is at-most-once: a failed publish is reported
// to the caller and never retried.
type Publisher interface {
	// Publish ships one payload to the given topic.
	Publish(topic string, payload []byte) error

	// Disconnect closes the connection, waiting up to the quiesce period in
	// milliseconds for in-flight work to finish.
	Disconnect(quiesce uint)
}

// ProjectTopic returns the conventional per-project telemetry topic.
func ProjectTopic(projectID string) string {
	return "projects/" + projectID
}
