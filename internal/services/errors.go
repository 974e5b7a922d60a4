package services

import "errors"

var (
	ErrInvalidPDF    = errors.New("invalid pdf document")
	ErrTextTooShort  = errors.New("resume text too short or unreadable")
	ErrAIUnavailable = errors.New("AI service unavailable")
	ErrAIRequest     = errors.New("AI request failed")
	ErrAIResponse    = errors.New("AI response could not be parsed")
)
