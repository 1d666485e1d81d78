package model

import "encoding/json"

// PromptKind says what the judge is being asked for.
type PromptKind string

const (
	PromptRate        PromptKind = "rate"
	PromptAcknowledge PromptKind = "acknowledge"
	PromptContinue    PromptKind = "continue"
)

type Prompt struct {
	ID         string     `json:"id"`
	Kind       PromptKind `json:"kind"`
	Generation int        `json:"generation"`
	Index      int        `json:"index"`
	Total      int        `json:"total"`
	Label      string     `json:"label,omitempty"`
	MaxRating  int        `json:"max_rating"`
	Genome     string     `json:"genome,omitempty"`
	Notes      [][]int    `json:"notes,omitempty"`
	Velocity   []int      `json:"velocity,omitempty"`
	Beat       []float64  `json:"beat,omitempty"`
}

// RatingRequestBody takes the rating as a JSON number or string.
type RatingRequestBody struct {
	ID     string          `json:"id"`
	Rating json.RawMessage `json:"rating"`
}

// RatingText is the rating as the judge typed it.
func (b RatingRequestBody) RatingText() string {
	var s string
	if err := json.Unmarshal(b.Rating, &s); err == nil {
		return s
	}
	return string(b.Rating)
}

type AcknowledgeRequestBody struct {
	ID string `json:"id"`
}

type ContinueRequestBody struct {
	ID       string `json:"id"`
	Continue bool   `json:"continue"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
