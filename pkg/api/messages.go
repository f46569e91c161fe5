package api

type (
	// CreateFlowRequest contains parameters for creating a new flow
	CreateFlowRequest struct {
		ID          FlowID `json:"id,omitempty"`
		DisplayName string `json:"displayName"`
	}

	// VersionResponse carries the canonical flow version after an operation
	// has been applied by the reconciler
	VersionResponse struct {
		Version *FlowVersion `json:"version"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service string `json:"service"`
		Status  string `json:"status"`
	}

	// MessageResponse contains a simple message string
	MessageResponse struct {
		Message string `json:"message"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)
