package sidecar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	writecraft "github.com/writecraft/writecraft-go"
)

func TestPathFor(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"essay.md", "essay.writing.json"},
		{"/home/ada/notes/essay.md", "/home/ada/notes/essay.writing.json"},
		{"essay.markdown", "essay.writing.json"},
		{"no-extension", "no-extension.writing.json"},
	}
	for _, tt := range tests {
		if got := PathFor(tt.doc); got != tt.want {
			t.Errorf("PathFor(%q) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}

func TestLoadCreatesFreshSidecar(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "essay.md")

	s, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", s.Version)
	}
	if s.Stage != StageConcept {
		t.Errorf("Stage = %q, want concept", s.Stage)
	}
	if s.DocumentID == "" {
		t.Error("DocumentID not assigned")
	}

	// The fresh sidecar must have been written to disk.
	if _, err := os.Stat(PathFor(doc)); err != nil {
		t.Errorf("sidecar file not created: %v", err)
	}

	// Loading again returns the same document, not a new one.
	again, err := Load(doc)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again.DocumentID != s.DocumentID {
		t.Errorf("DocumentID changed across loads: %q vs %q", again.DocumentID, s.DocumentID)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "essay.md")

	s := New()
	s.Stage = StageOutline
	s.UpdateConcept("Fall of Rome", "Overextension broke the empire", "general readers", "authoritative")
	words := 800
	s.UpdateOutline([]OutlinePrompt{
		{Title: "Introduction", Description: "Set the scene", EstimatedWords: &words},
	})
	s.AppendMessage("user", NewTextContent("Help me outline this essay"))
	s.AppendMessage("assistant", NewBlockContent(
		writecraft.NewTextBlock("Here is a starting outline."),
	))

	if err := Save(doc, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Stage != StageOutline {
		t.Errorf("Stage = %q, want outline", got.Stage)
	}
	if got.Concept.Current == nil || got.Concept.Current.Title != "Fall of Rome" {
		t.Errorf("Concept.Current = %+v", got.Concept.Current)
	}
	if len(got.Outline.Current) != 1 || got.Outline.Current[0].ID == "" {
		t.Errorf("Outline.Current = %+v, want one prompt with an ID", got.Outline.Current)
	}
	if len(got.Conversation.Messages) != 2 {
		t.Fatalf("Messages = %d, want 2", len(got.Conversation.Messages))
	}
	if got.Conversation.Messages[0].Content.Text != "Help me outline this essay" {
		t.Errorf("text content = %q", got.Conversation.Messages[0].Content.Text)
	}
	blocks := got.Conversation.Messages[1].Content.Blocks
	if len(blocks) != 1 || blocks[0].Text != "Here is a starting outline." {
		t.Errorf("block content = %+v", blocks)
	}
}

func TestUpdateConceptArchivesPrevious(t *testing.T) {
	s := New()
	s.UpdateConcept("v1", "arg", "aud", "tone")
	s.UpdateConcept("v2", "arg", "aud", "tone")

	if s.Concept.Current.Title != "v2" {
		t.Errorf("Current.Title = %q, want v2", s.Concept.Current.Title)
	}
	if len(s.Concept.Versions) != 1 || s.Concept.Versions[0].Title != "v1" {
		t.Errorf("Versions = %+v, want the v1 snapshot", s.Concept.Versions)
	}
}

func TestUpdateOutlineArchivesPrevious(t *testing.T) {
	s := New()
	s.UpdateOutline([]OutlinePrompt{{Title: "old", Description: "d"}})
	s.UpdateOutline([]OutlinePrompt{{Title: "new", Description: "d"}})

	if len(s.Outline.Current) != 1 || s.Outline.Current[0].Title != "new" {
		t.Errorf("Current = %+v", s.Outline.Current)
	}
	if len(s.Outline.Versions) != 1 || s.Outline.Versions[0].Prompts[0].Title != "old" {
		t.Errorf("Versions = %+v", s.Outline.Versions)
	}
}

func TestSidecarJSONShape(t *testing.T) {
	s := New()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"documentId"`, `"createdAt"`, `"editingHistory"`, `"stage":"concept"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("serialized sidecar missing %s: %s", key, data)
		}
	}
}

func TestDocumentReadWrite(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "essay.md")

	if err := WriteDocument(doc, "# Draft\n\nFirst line.\n"); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	got, err := ReadDocument(doc)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if got != "# Draft\n\nFirst line.\n" {
		t.Errorf("content = %q", got)
	}

	// Overwrite goes through the same atomic path.
	if err := WriteDocument(doc, "replaced"); err != nil {
		t.Fatal(err)
	}
	if got, _ := ReadDocument(doc); got != "replaced" {
		t.Errorf("content after overwrite = %q", got)
	}

	if _, err := ReadDocument(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("ReadDocument of missing file should fail")
	}
}
