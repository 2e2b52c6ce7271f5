package polls

import (
	"encoding/json"
	"fmt"
)

// Submission is the result of the event creation form.
type Submission struct {
	Title   string
	Options []string
}

type submissionPayload struct {
	Title   *string   `json:"title"`
	Options *[]string `json:"options"`
}

// ParseSubmission decodes {"title": string, "options": [string]}. Both keys
// are required, anything else in the object is ignored.
func ParseSubmission(payload string) (Submission, error) {
	var data submissionPayload
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return Submission{}, fmt.Errorf("%w: %s", ErrMalformedSubmission, err.Error())
	}
	if data.Title == nil {
		return Submission{}, fmt.Errorf("%w: title is missing", ErrMalformedSubmission)
	}
	if data.Options == nil {
		return Submission{}, fmt.Errorf("%w: options are missing", ErrMalformedSubmission)
	}
	return Submission{Title: *data.Title, Options: *data.Options}, nil
}
