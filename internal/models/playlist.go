package models

// Playlist is a user-owned set of songs.
type Playlist struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	UserID string `json:"userId"`
	Songs  []Song `json:"songs"`
}
