package lastfm

// Chart periods accepted by user.getTop* methods.
const (
	PeriodOverall = "overall"
	Period7Day    = "7day"
	Period1Month  = "1month"
	Period3Month  = "3month"
	Period6Month  = "6month"
	Period12Month = "12month"
)

// Artwork size tiers returned in <image size="..."> elements.
const (
	ImageSmall      = "small"
	ImageMedium     = "medium"
	ImageLarge      = "large"
	ImageExtraLarge = "extralarge"
)

// TopAlbumsParams holds the parameters for user.getTopAlbums.
type TopAlbumsParams struct {
	User   string // Required: Last.fm username
	Period string // Optional: one of the Period* constants (API default: overall)
	Limit  int    // Optional: number of albums per page (API default: 50)
	Page   int    // Optional: page number (API default: 1)
}

// TopAlbums represents the response from user.getTopAlbums.
type TopAlbums struct {
	User       string
	Page       int
	PerPage    int
	TotalPages int
	Total      int
	Albums     []Album // In chart order, as returned by the API
}

// Album represents a single chart entry.
type Album struct {
	Rank      int
	Name      string
	MBID      string
	URL       string
	PlayCount int
	Artist    Artist
	Images    []Image
}

// Artist represents the artist of a chart entry.
type Artist struct {
	Name string
	MBID string
	URL  string
}

// Image is one artwork variant of an album.
type Image struct {
	Size string // One of the Image* constants
	URL  string // Empty when Last.fm has no artwork at this size
}

// AlbumImageRef points at the artwork of one album in a chart.
type AlbumImageRef struct {
	AlbumIndex int    // Position of the album in the chart, 0-based
	ImageURL   string // Never empty
}
