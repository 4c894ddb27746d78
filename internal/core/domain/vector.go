package domain

// Collection is a vector store collection.
type Collection struct {
	ID       string
	Name     string
	Metadata map[string]any
}

// Identity describes the authenticated caller of the vector store.
type Identity struct {
	UserID    string
	Tenant    string
	Databases []string
}

// Include values accepted by Get and Query.
const (
	IncludeDocuments = "documents"
	IncludeMetadatas = "metadatas"
	IncludeDistances = "distances"
)

// UpsertRequest writes records keyed by IDs. Slices are parallel.
type UpsertRequest struct {
	IDs        []string
	Documents  []string
	Metadatas  []map[string]any
	Embeddings [][]float32
}

// QueryRequest is a nearest-neighbour query.
type QueryRequest struct {
	Embeddings [][]float32
	NResults   int
	Where      map[string]any
	Include    []string
}

// QueryResult holds one result list per query embedding.
type QueryResult struct {
	IDs       [][]string
	Documents [][]string
	Metadatas [][]map[string]any
	Distances [][]float64
}

// GetRequest fetches records by id.
type GetRequest struct {
	IDs     []string
	Include []string
	Limit   int
}

// GetResult holds the records returned by Get. Slices are parallel.
type GetResult struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]any
}

// Match is one row of the first result list of a query.
type Match struct {
	ID       string         `json:"id"`
	Distance float64        `json:"distance"`
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocumentID returns the page the matched chunk belongs to.
func (m Match) DocumentID() DocumentID {
	return DocumentID(StripChunkSuffix(m.ID))
}

// Matches flattens the first result list. Missing parallel entries are
// left zero. A nil result yields an empty, non-nil slice.
func (r *QueryResult) Matches() []Match {
	if r == nil || len(r.IDs) == 0 {
		return []Match{}
	}
	out := make([]Match, 0, len(r.IDs[0]))
	for i, id := range r.IDs[0] {
		m := Match{ID: id}
		if len(r.Distances) > 0 && i < len(r.Distances[0]) {
			m.Distance = r.Distances[0][i]
		}
		if len(r.Documents) > 0 && i < len(r.Documents[0]) {
			m.Document = r.Documents[0][i]
		}
		if len(r.Metadatas) > 0 && i < len(r.Metadatas[0]) {
			m.Metadata = r.Metadatas[0][i]
		}
		out = append(out, m)
	}
	return out
}
