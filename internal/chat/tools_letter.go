package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"resume-studio-backend/internal/coverletters"
	"resume-studio-backend/internal/llm"
	"resume-studio-backend/internal/shadow"
	"resume-studio-backend/internal/updates"
)

// LetterTools binds the cover letter tool set to one document in a
// request-scoped shadow store.
func LetterTools(store *shadow.LetterStore, docID string) []Tool {
	return []Tool{
		{
			Spec: llm.ToolSpec{
				Name:        "get_cover_letter",
				Description: "Read the current state of the cover letter being edited.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no cover letter loaded")
				}
				return Outcome{Result: doc}, nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "update_cover_letter",
				Description: "Replace the cover letter title and/or content. Omitted fields are kept.",
				Parameters: json.RawMessage(`{"type":"object","properties":{
					"title":{"type":"string"},
					"content":{"type":"string"}
				}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				var patch struct {
					Title   *string `json:"title"`
					Content *string `json:"content"`
				}
				if err := json.Unmarshal(args, &patch); err != nil {
					return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
				}
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no cover letter loaded")
				}
				if patch.Title != nil {
					doc.Title = *patch.Title
				}
				if patch.Content != nil {
					doc.Content = *patch.Content
				}
				return saveLetter(store, doc)
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "set_template",
				Description: "Switch the letter layout. Template is one of classic, modern, minimal, creative.",
				Parameters: json.RawMessage(`{"type":"object","required":["template"],"properties":{
					"template":{"type":"string"}
				}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				var in struct {
					Template coverletters.TemplateKind `json:"template"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
				}
				if !in.Template.Valid() {
					return Outcome{}, fmt.Errorf("unknown template %q", in.Template)
				}
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no cover letter loaded")
				}
				doc.Template = in.Template
				return saveLetter(store, doc)
			},
		},
	}
}

func saveLetter(store *shadow.LetterStore, doc coverletters.CoverLetter) (Outcome, error) {
	saved, err := store.Save(doc)
	if err != nil {
		return Outcome{}, err
	}
	raw, err := json.Marshal(saved)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Result:  saved,
		Updated: raw,
		DocID:   saved.ID,
		Kind:    updates.KindCoverLetter,
	}, nil
}
