package models

// Artist owns zero or more albums.
type Artist struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Genre     string         `json:"genre"`
	Biography string         `json:"biography"`
	Picture   *BlobRef       `json:"picture,omitempty"`
	Albums    []AlbumSummary `json:"albums,omitempty"`
}

// AlbumSummary is the album shape embedded in artist listings.
type AlbumSummary struct {
	ID        string `json:"id"`
	AlbumName string `json:"albumName"`
}

// ArtistFields are the values required to create an artist.
type ArtistFields struct {
	Name      string `json:"name"`
	Genre     string `json:"genre"`
	Biography string `json:"biography"`
}

// ArtistPatch lists the artist fields an update may change.
type ArtistPatch struct {
	Name      Optional[string] `json:"name"`
	Genre     Optional[string] `json:"genre"`
	Biography Optional[string] `json:"biography"`
}

// Album belongs to exactly one artist and owns zero or more songs.
type Album struct {
	ID        string   `json:"id"`
	AlbumName string   `json:"albumName"`
	ArtistID  string   `json:"artistId"`
	Picture   *BlobRef `json:"picture,omitempty"`
	Artist    *Artist  `json:"artist,omitempty"`
	Songs     []Song   `json:"songs,omitempty"`
}

// AlbumPatch lists the album fields an update may change. Setting ArtistID moves the album.
type AlbumPatch struct {
	AlbumName Optional[string] `json:"albumName"`
	ArtistID  Optional[string] `json:"artistId"`
}

// Song belongs to exactly one album.
type Song struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Duration int      `json:"duration"`
	AlbumID  string   `json:"albumId"`
	Audio    *BlobRef `json:"audio,omitempty"`
	Album    *Album   `json:"album,omitempty"`
}

// SongFields are the values required to create a song.
type SongFields struct {
	Title    string `json:"title"`
	Duration int    `json:"duration"`
}

// SongPatch lists the song fields an update may change. Setting AlbumID moves the song.
type SongPatch struct {
	Title    Optional[string] `json:"title"`
	Duration Optional[int]    `json:"duration"`
	AlbumID  Optional[string] `json:"albumId"`
}
