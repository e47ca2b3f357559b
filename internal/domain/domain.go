package domain

// MenuItem is the indexed unit: one distinct dish name from the source catalog.
type MenuItem struct {
	Name string
}

// Payload is the metadata stored alongside each indexed vector.
type Payload struct {
	ItemName string `json:"item_name"`
}

// Point is a single indexed vector. The ID is generated fresh on every
// rebuild; a name appearing in two successive rebuilds gets two different ids.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// ScoredPoint pairs an indexed point with its similarity score, as returned
// by a nearest-neighbor search.
type ScoredPoint struct {
	ID      string
	Payload Payload
	Score   float32
}

// CollectionInfo describes the state of a named vector collection.
type CollectionInfo struct {
	PointCount int
	Dimension  int
	Distance   string
}

// SearchHit is a nearest-neighbor match that passed the score threshold.
type SearchHit struct {
	Name  string
	Score float32
}

// Resolution is the outcome of a single query: either exactly one accepted
// hit, or an explicit no-match. A no-match is not an error.
type Resolution struct {
	Matched bool
	Hit     SearchHit
}
