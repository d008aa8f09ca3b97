package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"resume-studio-backend/internal/llm"
	"resume-studio-backend/internal/resumes"
	"resume-studio-backend/internal/shadow"
	"resume-studio-backend/internal/updates"
)

// ResumeTools binds the resume tool set to one document in a request-scoped
// shadow store. Every mutating tool saves through the store, so the outcome
// always carries a validated, version-stamped snapshot.
func ResumeTools(store *shadow.ResumeStore, docID string) []Tool {
	return []Tool{
		{
			Spec: llm.ToolSpec{
				Name:        "get_resume",
				Description: "Read the current state of the resume being edited.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no resume loaded")
				}
				return Outcome{Result: doc}, nil
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "update_resume",
				Description: "Replace the resume title and/or the full sections array. Omitted fields are kept.",
				Parameters: json.RawMessage(`{"type":"object","properties":{
					"title":{"type":"string"},
					"sections":{"type":"array","items":{"type":"object"}}
				}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				var patch struct {
					Title    *string            `json:"title"`
					Sections *[]resumes.Section `json:"sections"`
				}
				if err := json.Unmarshal(args, &patch); err != nil {
					return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
				}
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no resume loaded")
				}
				if patch.Title != nil {
					doc.Title = *patch.Title
				}
				if patch.Sections != nil {
					doc.Sections = *patch.Sections
				}
				return saveResume(store, doc)
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "update_section",
				Description: "Update one section's title and/or items by section id.",
				Parameters: json.RawMessage(`{"type":"object","required":["sectionId"],"properties":{
					"sectionId":{"type":"string"},
					"title":{"type":"string"},
					"items":{"type":"array","items":{"type":"object"}}
				}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				var patch struct {
					SectionID string             `json:"sectionId"`
					Title     *string            `json:"title"`
					Items     *[]json.RawMessage `json:"items"`
				}
				if err := json.Unmarshal(args, &patch); err != nil {
					return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
				}
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no resume loaded")
				}
				idx := sectionIndex(doc.Sections, patch.SectionID)
				if idx < 0 {
					return Outcome{}, fmt.Errorf("section %q not found", patch.SectionID)
				}
				if patch.Title != nil {
					doc.Sections[idx].Title = *patch.Title
				}
				if patch.Items != nil {
					doc.Sections[idx].Items = *patch.Items
				}
				return saveResume(store, doc)
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "add_section",
				Description: "Append a new section. Type is one of experience, education, skills, projects, summary, certifications, languages, custom.",
				Parameters: json.RawMessage(`{"type":"object","required":["type","title"],"properties":{
					"type":{"type":"string"},
					"title":{"type":"string"},
					"items":{"type":"array","items":{"type":"object"}}
				}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				var in struct {
					Type  resumes.SectionType `json:"type"`
					Title string              `json:"title"`
					Items []json.RawMessage   `json:"items"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
				}
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no resume loaded")
				}
				doc.Sections = append(doc.Sections, resumes.Section{
					Type:  in.Type,
					Title: in.Title,
					Items: in.Items,
				})
				return saveResume(store, doc)
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "remove_section",
				Description: "Remove a section by id.",
				Parameters: json.RawMessage(`{"type":"object","required":["sectionId"],"properties":{
					"sectionId":{"type":"string"}
				}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				var in struct {
					SectionID string `json:"sectionId"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
				}
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no resume loaded")
				}
				idx := sectionIndex(doc.Sections, in.SectionID)
				if idx < 0 {
					return Outcome{}, fmt.Errorf("section %q not found", in.SectionID)
				}
				doc.Sections = append(doc.Sections[:idx], doc.Sections[idx+1:]...)
				return saveResume(store, doc)
			},
		},
		{
			Spec: llm.ToolSpec{
				Name:        "reorder_sections",
				Description: "Reorder sections. sectionIds must list every existing section id exactly once, in the desired order.",
				Parameters: json.RawMessage(`{"type":"object","required":["sectionIds"],"properties":{
					"sectionIds":{"type":"array","items":{"type":"string"}}
				}}`),
			},
			Run: func(ctx context.Context, args json.RawMessage) (Outcome, error) {
				var in struct {
					SectionIDs []string `json:"sectionIds"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
				}
				doc, ok := store.Get(docID)
				if !ok {
					return Outcome{}, fmt.Errorf("no resume loaded")
				}
				reordered, err := reorderSections(doc.Sections, in.SectionIDs)
				if err != nil {
					return Outcome{}, err
				}
				doc.Sections = reordered
				return saveResume(store, doc)
			},
		},
	}
}

func saveResume(store *shadow.ResumeStore, doc resumes.Resume) (Outcome, error) {
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
		Kind:    updates.KindResume,
	}, nil
}

func sectionIndex(sections []resumes.Section, id string) int {
	for i, sec := range sections {
		if sec.ID == id {
			return i
		}
	}
	return -1
}

// reorderSections rearranges sections to match ids, which must be a
// permutation of the existing section ids.
func reorderSections(sections []resumes.Section, ids []string) ([]resumes.Section, error) {
	if len(ids) != len(sections) {
		return nil, fmt.Errorf("sectionIds must list all %d sections, got %d", len(sections), len(ids))
	}
	byID := make(map[string]resumes.Section, len(sections))
	for _, sec := range sections {
		byID[sec.ID] = sec
	}
	out := make([]resumes.Section, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("duplicate section id %q", id)
		}
		seen[id] = true
		sec, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("section %q not found", id)
		}
		out = append(out, sec)
	}
	return out, nil
}
