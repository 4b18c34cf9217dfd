package types

// SourceKind discriminates the kinds of records held in the embedding index.
type SourceKind string

const (
	SourceKindPlace            SourceKind = "place"
	SourceKindInsight          SourceKind = "insight"
	SourceKindEmergencyContact SourceKind = "emergency_contact"
)

func (k SourceKind) Valid() bool {
	switch k {
	case SourceKindPlace, SourceKindInsight, SourceKindEmergencyContact:
		return true
	}
	return false
}

// ItemMetadata carries the source-specific attributes of a knowledge item.
// Which fields are populated depends on the item's SourceKind: places carry
// coordinates and a category, insights carry district and content, emergency
// contacts carry phone and availability.
type ItemMetadata struct {
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Category     string   `json:"category,omitempty"`
	Area         string   `json:"area,omitempty"`
	District     string   `json:"district,omitempty"`
	Content      string   `json:"content,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Available247 bool     `json:"available_24_7,omitempty"`
	Languages    []string `json:"languages,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// KnowledgeItem is one retrievable fact record. All items loaded into one
// index generation share a single embedding dimension and a unique ID across
// source kinds.
type KnowledgeItem struct {
	ID         string       `json:"id"`
	SourceKind SourceKind   `json:"source_kind"`
	Text       string       `json:"text"`
	Metadata   ItemMetadata `json:"metadata"`
	Embedding  []float32    `json:"embedding"`
}

// SearchResult is one ranked hit returned by the similarity search engine.
type SearchResult struct {
	ID         string       `json:"id"`
	SourceKind SourceKind   `json:"source_kind"`
	Text       string       `json:"text"`
	Metadata   ItemMetadata `json:"metadata"`
	Score      float64      `json:"score"`
}

// SearchRequest is the JSON body accepted by the semantic search endpoint.
type SearchRequest struct {
	Query       string       `json:"query"`
	TopK        int          `json:"top_k,omitempty"`
	MinScore    *float64     `json:"min_score,omitempty"`
	SourceKinds []SourceKind `json:"source_kinds,omitempty"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}
