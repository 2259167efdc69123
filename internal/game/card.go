package game

import "github.com/google/uuid"

// Card is a single card on the table.
type Card struct {
	ID      uuid.UUID
	Content Content
	FaceUp  bool
	Matched bool // a matched card is always face up
}

// NewCard creates a face-down card with a fresh identity.
func NewCard(content Content) Card {
	return Card{ID: uuid.New(), Content: content}
}

// PairFromSymbol creates two symbol cards sharing a glyph name.
func PairFromSymbol(name string) []Card {
	return []Card{NewCard(Symbol(name)), NewCard(Symbol(name))}
}

// PairFromImageURL creates two image cards sharing a URL.
func PairFromImageURL(url string) []Card {
	return []Card{NewCard(Image(url)), NewCard(Image(url))}
}

// RemoteItem is one record from the remote content source.
type RemoteItem struct {
	ID       string
	Name     string
	ImageURL string
}
