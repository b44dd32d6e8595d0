package dto

// RegisterPollRequest adds an attribute to the poll queue
type RegisterPollRequest struct {
	Attribute uint64 `json:"attribute" validate:"gt=0" example:"12"`
	// IntervalSeconds of 0 selects the configured default interval
	IntervalSeconds uint32 `json:"interval_seconds" example:"30"`
}

// CommandAcceptedResponse is returned once a command is queued for the engine
type CommandAcceptedResponse struct {
	Command       string `json:"command" example:"register"`
	Attribute     uint64 `json:"attribute,omitempty" example:"12"`
	CorrelationID string `json:"correlation_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type HealthResponse struct {
	Status          string `json:"status" example:"healthy"`
	Service         string `json:"service" example:"attribute-poll"`
	PendingCommands int    `json:"pending_commands" example:"0"`
}
