package gemini

// promptData represents the data passed to the prompt template
type promptData struct {
	// LabelList is the comma-separated candidate topics, empty when the
	// model may choose its own topics
	LabelList string

	// Count is the number of texts to classify
	Count int

	// Items are the numbered texts, in input order
	Items []promptItem
}

// promptItem is a single numbered text in the prompt
type promptItem struct {
	Number int
	Text   string
}

// responseSchema represents the expected structure of the model response
type responseSchema struct {
	// Assignments is the array of topic assignments, one per input text
	Assignments []assignmentSchema `json:"assignments"`
}

// assignmentSchema represents a single topic assignment in the API response
type assignmentSchema struct {
	// Topic is the assigned topic label
	Topic string `json:"topic"`

	// Confidence is the model's certainty in the assignment, in [0, 1]
	Confidence float64 `json:"confidence"`
}
