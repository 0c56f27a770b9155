package domain

// Feed is an RSS feed opened for a library item or another entity.
type Feed struct {
	Syncable
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id"`
	LibraryItemID string `json:"library_item_id,omitempty"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	FeedURL       string `json:"feed_url"`
	ServerAddress string `json:"server_address,omitempty"`
}
