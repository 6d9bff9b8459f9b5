package models

// RetrievableDocument is one populated section of a record, the unit that gets embedded
// and ranked. FullText carries the whole record so the embedding sees cross-section context.
type RetrievableDocument struct {
	Country     string  `json:"country"`
	VehicleType string  `json:"vehicle_type"`
	Section     Section `json:"section"`
	Content     string  `json:"content"`
	FullText    string  `json:"full_text"`
}

// ScoredResult is a document annotated with its cosine similarity to the query.
type ScoredResult struct {
	RetrievableDocument
	SimilarityScore float64 `json:"similarity_score"`
}
