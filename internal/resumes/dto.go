package resumes

// summaryResponse is the list-view shape returned by the API.
type summaryResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	SectionCount int    `json:"sectionCount"`
	Version      int    `json:"version"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toSummary(doc Resume) summaryResponse {
	return summaryResponse{
		ID:           doc.ID,
		Title:        doc.Title,
		SectionCount: doc.Meta.SectionCount,
		Version:      doc.Meta.Version,
		CreatedAt:    doc.Meta.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    doc.Meta.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toSummaries(docs []Resume) []summaryResponse {
	out := make([]summaryResponse, len(docs))
	for i, doc := range docs {
		out[i] = toSummary(doc)
	}
	return out
}
