// Package sidecar persists per-document writing state (concept,
// outline, conversation, edit history) in a JSON file that travels
// next to the markdown document.
package sidecar

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	writecraft "github.com/writecraft/writecraft-go"
)

// Stage is the document's position in the writing workflow.
type Stage string

const (
	StageIdea    Stage = "idea"
	StageConcept Stage = "concept"
	StageOutline Stage = "outline"
	StageDraft   Stage = "draft"
	StageEdits   Stage = "edits"
	StagePolish  Stage = "polish"
)

const (
	formatVersion = "1.0"
	appVersion    = "0.1.0"

	// defaultChatModel is the model new documents start with.
	defaultChatModel = "claude-sonnet-4-20250514"
)

// MessageContent is either plain text or a list of content blocks
// (for tool calling turns). Exactly one representation is active.
type MessageContent struct {
	Text   string
	Blocks []writecraft.ContentBlock
}

// NewTextContent wraps plain text.
func NewTextContent(text string) MessageContent {
	return MessageContent{Text: text}
}

// NewBlockContent wraps content blocks.
func NewBlockContent(blocks ...writecraft.ContentBlock) MessageContent {
	return MessageContent{Blocks: blocks}
}

func (m MessageContent) MarshalJSON() ([]byte, error) {
	if m.Blocks != nil {
		return json.Marshal(m.Blocks)
	}
	return json.Marshal(m.Text)
}

func (m *MessageContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		m.Text = text
		m.Blocks = nil
		return nil
	}
	var blocks []writecraft.ContentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("message content is neither text nor blocks: %w", err)
	}
	m.Text = ""
	m.Blocks = blocks
	return nil
}

// ChatMessage is one turn of the document's conversation.
type ChatMessage struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   MessageContent `json:"content"`
	CreatedAt string         `json:"createdAt"`
}

// ConceptSnapshot is one version of the working concept.
type ConceptSnapshot struct {
	Title        string `json:"title"`
	CoreArgument string `json:"coreArgument"`
	Audience     string `json:"audience"`
	Tone         string `json:"tone"`
	UpdatedAt    string `json:"updatedAt"`
}

// Concept holds the current concept and its history.
type Concept struct {
	Current  *ConceptSnapshot  `json:"current"`
	Versions []ConceptSnapshot `json:"versions"`
}

// OutlinePrompt is one section of the outline.
type OutlinePrompt struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	EstimatedWords *int   `json:"estimatedWords"`
}

// OutlineSnapshot is a superseded outline kept for history.
type OutlineSnapshot struct {
	Prompts   []OutlinePrompt `json:"prompts"`
	CreatedAt string          `json:"createdAt"`
}

// Outline holds the current outline and its history.
type Outline struct {
	Current  []OutlinePrompt   `json:"current"`
	Versions []OutlineSnapshot `json:"versions"`
}

// Conversation is the chat history attached to the document.
type Conversation struct {
	Messages []ChatMessage `json:"messages"`
	Summary  string        `json:"summary"`
}

// EditHistoryEntry records one accepted or rejected edit.
type EditHistoryEntry struct {
	ID        string  `json:"id"`
	Scope     string  `json:"scope"`
	Before    string  `json:"before"`
	After     string  `json:"after"`
	Accepted  bool    `json:"accepted"`
	CreatedAt string  `json:"createdAt"`
	Rationale *string `json:"rationale"`
}

// Settings are per-document preferences.
type Settings struct {
	Model string `json:"model"`
}

// Meta records bookkeeping about the sidecar itself.
type Meta struct {
	AppVersion   string `json:"appVersion"`
	LastOpenedAt string `json:"lastOpenedAt"`
}

// Sidecar is the full persisted state for one document.
type Sidecar struct {
	Version        string             `json:"version"`
	DocumentID     string             `json:"documentId"`
	CreatedAt      string             `json:"createdAt"`
	Stage          Stage              `json:"stage"`
	Concept        Concept            `json:"concept"`
	Outline        Outline            `json:"outline"`
	Conversation   Conversation       `json:"conversation"`
	EditingHistory []EditHistoryEntry `json:"editingHistory"`
	Settings       Settings           `json:"settings"`
	Meta           Meta               `json:"meta"`
}

// New creates a fresh sidecar for a document that has none yet.
func New() *Sidecar {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Sidecar{
		Version:        formatVersion,
		DocumentID:     uuid.NewString(),
		CreatedAt:      now,
		Stage:          StageConcept,
		Concept:        Concept{Versions: []ConceptSnapshot{}},
		Outline:        Outline{Versions: []OutlineSnapshot{}},
		Conversation:   Conversation{Messages: []ChatMessage{}},
		EditingHistory: []EditHistoryEntry{},
		Settings:       Settings{Model: defaultChatModel},
		Meta:           Meta{AppVersion: appVersion, LastOpenedAt: now},
	}
}

// UpdateConcept replaces the current concept, archiving the previous
// one in the version history.
func (s *Sidecar) UpdateConcept(title, coreArgument, audience, tone string) {
	if s.Concept.Current != nil {
		s.Concept.Versions = append(s.Concept.Versions, *s.Concept.Current)
	}
	s.Concept.Current = &ConceptSnapshot{
		Title:        title,
		CoreArgument: coreArgument,
		Audience:     audience,
		Tone:         tone,
		UpdatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

// UpdateOutline replaces the current outline, archiving the previous
// one. Prompts without an ID are assigned one.
func (s *Sidecar) UpdateOutline(prompts []OutlinePrompt) {
	if s.Outline.Current != nil {
		s.Outline.Versions = append(s.Outline.Versions, OutlineSnapshot{
			Prompts:   s.Outline.Current,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	for i := range prompts {
		if prompts[i].ID == "" {
			prompts[i].ID = uuid.NewString()
		}
	}
	s.Outline.Current = prompts
}

// AppendMessage adds a conversation turn and returns it.
func (s *Sidecar) AppendMessage(role string, content MessageContent) *ChatMessage {
	msg := ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.Conversation.Messages = append(s.Conversation.Messages, msg)
	return &s.Conversation.Messages[len(s.Conversation.Messages)-1]
}

// RecordEdit appends an edit history entry and returns it.
func (s *Sidecar) RecordEdit(scope, before, after string, accepted bool, rationale *string) *EditHistoryEntry {
	entry := EditHistoryEntry{
		ID:        uuid.NewString(),
		Scope:     scope,
		Before:    before,
		After:     after,
		Accepted:  accepted,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Rationale: rationale,
	}
	s.EditingHistory = append(s.EditingHistory, entry)
	return &s.EditingHistory[len(s.EditingHistory)-1]
}

// Touch updates the last-opened timestamp.
func (s *Sidecar) Touch() {
	s.Meta.LastOpenedAt = time.Now().UTC().Format(time.RFC3339)
}
