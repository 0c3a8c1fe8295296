package models

// TagAll marks a chunk as applicable to every organization or tier.
const TagAll = "all"

// DocumentChunk is one embedded span of a knowledge base document. Chunks are
// created at index-build time and immutable afterwards.
type DocumentChunk struct {
	ID           string    `bson:"chunk_id" json:"chunk_id"`
	DocumentID   string    `bson:"document_id" json:"document_id"`
	Order        int       `bson:"order" json:"order"`
	Text         string    `bson:"text" json:"text"`
	Vector       []float32 `bson:"vector" json:"-"`
	Organization string    `bson:"organization" json:"organization"`
	Tier         string    `bson:"tier" json:"tier"`
	Language     string    `bson:"language,omitempty" json:"language,omitempty"`
}

// AppliesTo reports whether the chunk is a candidate for the given
// organization and tier. Chunks tagged "all" match everyone.
func (c DocumentChunk) AppliesTo(organization, tier string) bool {
	if c.Organization != TagAll && c.Organization != organization {
		return false
	}
	if c.Tier != TagAll && c.Tier != tier {
		return false
	}
	return true
}

// ChunkFilter restricts retrieval to chunks applicable to one user.
type ChunkFilter struct {
	Organization string
	Tier         string
}

// ScoredChunk pairs a chunk with its similarity score for one query.
type ScoredChunk struct {
	Chunk DocumentChunk
	Score float64
}
