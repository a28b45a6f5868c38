package wishlist

import "time"

// Item is one saved product. Extra carries display fields through unchanged.
type Item struct {
	ProductID string         `json:"id"`
	AddedAt   time.Time      `json:"added_at"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Result is returned by wishlist mutations.
type Result struct {
	Items   []Item `json:"items"`
	Added   bool   `json:"added"`
	Message string `json:"message"`
}

const (
	MsgAdded          = "Ditambahkan ke wishlist"
	MsgAlreadyPresent = "Sudah ada di wishlist"
	MsgRemoved        = "Dihapus dari wishlist"
)
