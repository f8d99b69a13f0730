package model

// CreateRequest is the intake payload
type CreateRequest struct {
	Recipient string  `json:"recipient"`
	Subject   string  `json:"subject"`
	Body      string  `json:"body"`
	Channel   Channel `json:"channel"`
}

// CreateResponse is returned to the intake caller
type CreateResponse struct {
	ID      string `json:"id"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// OptimizationRequest asks the optimizer to rewrite a subject and body for a channel.
type OptimizationRequest struct {
	Subject string  `json:"subject"`
	Message string  `json:"message"`
	Channel Channel `json:"channel"`
}

// OptimizationResponse holds both original and rewritten content.
type OptimizationResponse struct {
	OriginalSubject      string  `json:"original_subject"`
	OptimizedSubject     string  `json:"optimized_subject"`
	OriginalMessage      string  `json:"original_message"`
	EnhancedMessage      string  `json:"enhanced_message"`
	OptimizationStrategy string  `json:"optimization_strategy"`
	ConfidenceScore      float64 `json:"confidence_score"`
}
