package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatMessage is an audit record of one chatbot exchange. Kind is
// "directive", "fallback" or "error". Directive holds the raw
// {operation, params} JSON when the completion returned a tool call.
type ChatMessage struct {
	gorm.Model

	Input     string `gorm:"not null"`
	Kind      string `gorm:"not null"`
	Operation string
	Directive datatypes.JSON
}
