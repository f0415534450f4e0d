package domain

import "strings"

// Idea is one title/description record. It has no identity beyond its position in the list.
type Idea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewIdea constructs an idea from raw draft text. Text is kept verbatim.
func NewIdea(title, description string) Idea {
	return Idea{
		Title:       title,
		Description: description,
	}
}

// HasTitle reports whether the title contains anything besides whitespace.
func (i Idea) HasTitle() bool {
	return strings.TrimSpace(i.Title) != ""
}
