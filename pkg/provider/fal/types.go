package fal

// Queue states reported by the status endpoint. Failures do not get a
// state of their own; they surface when the terminal response is fetched.
const (
	queueStatusInQueue    = "IN_QUEUE"
	queueStatusInProgress = "IN_PROGRESS"
	queueStatusCompleted  = "COMPLETED"
)

// queueSubmitResponse is returned when the queue accepts a request. The
// URLs are absolute and specific to this request.
type queueSubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
	CancelURL   string `json:"cancel_url"`
}

// queueStatusResponse is returned by the status endpoint while a request
// works its way through the queue.
type queueStatusResponse struct {
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
}

// generationPayload is the terminal response body for image generation
// targets. Every model family reports its images under the same key.
type generationPayload struct {
	Images []imagePayload `json:"images"`
	Seed   int64          `json:"seed"`
}

// imagePayload is one generated image in the terminal response.
type imagePayload struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type"`
}
