// Package quillpress provides a Go SDK for the Quillpress admin API.
//
// Quillpress is a web-novel publishing platform. This SDK enables Go
// developers to authenticate against the platform backend and read the
// catalog and wallet endpoints programmatically. It uses only the Go
// standard library (net/http) with zero external dependencies.
//
// Quick start:
//
//	// Set QUILLPRESS_BASE_URL and optionally QUILLPRESS_TOKEN, then:
//	client := quillpress.NewClient()
//
//	if err := client.Login(ctx, "admin@example.com", "hunter22"); err != nil {
//	    log.Fatal(err)
//	}
//	page, err := client.Books(ctx, 1, 10)
//	if err != nil {
//	    var expired *quillpress.SessionExpiredError
//	    if errors.As(err, &expired) {
//	        fmt.Println("session ended:", expired.Message)
//	    }
//	}
package quillpress

// Book is a catalog entry as returned by the books endpoints.
type Book struct {
	// ID is the platform identifier of the book.
	ID string `json:"_id"`

	// Title is the display title.
	Title string `json:"title"`

	// Author is the credited author name.
	Author string `json:"author"`

	// Description is the long-form synopsis.
	Description string `json:"description,omitempty"`

	// Image is the cover image URL.
	Image string `json:"bookImage,omitempty"`

	// Category is the genre label.
	Category string `json:"category,omitempty"`

	// Country is the origin country label.
	Country string `json:"country,omitempty"`

	// Tags are free-form labels attached to the book.
	Tags []string `json:"tags,omitempty"`

	// Status is the publication status (e.g. "ongoing", "completed").
	Status string `json:"status,omitempty"`

	// Views is the lifetime view counter.
	Views int `json:"views,omitempty"`

	// LikeCount is the lifetime like counter.
	LikeCount int `json:"likeCount,omitempty"`

	// Chapters is the embedded chapter listing, when the endpoint includes it.
	Chapters []Chapter `json:"chapters,omitempty"`

	// CreatedAt is the ISO 8601 creation timestamp.
	CreatedAt string `json:"createdAt,omitempty"`
}

// Chapter is a single chapter of a book.
type Chapter struct {
	// ID is the platform identifier of the chapter.
	ID string `json:"_id"`

	// Title is the chapter title.
	Title string `json:"title"`

	// ChapterNo is the 1-based reading order of the chapter.
	ChapterNo int `json:"chapterNo"`

	// Content is the chapter body. Empty in listing responses.
	Content string `json:"content,omitempty"`

	// IsLocked reports whether the chapter requires coins to unlock.
	IsLocked bool `json:"isLocked,omitempty"`

	// CoinCost is the unlock price in coins.
	CoinCost int `json:"coinCost,omitempty"`

	// CreatedAt is the ISO 8601 creation timestamp.
	CreatedAt string `json:"createdAt,omitempty"`
}

// Pagination describes the window of a paginated listing.
type Pagination struct {
	// Total is the number of books across all pages.
	Total int `json:"total"`

	// CurrentPage is the 1-based page the response covers.
	CurrentPage int `json:"currentPage"`

	// TotalPages is the number of pages at the requested limit.
	TotalPages int `json:"totalPages"`
}

// BookPage is one page of the catalog listing.
type BookPage struct {
	// Books are the entries of this page.
	Books []Book `json:"data"`

	// Pagination describes where this page sits in the listing.
	Pagination Pagination `json:"pagination"`
}

// Profile is the authenticated account's profile.
type Profile struct {
	// CoinBalance is the account's current coin balance.
	CoinBalance int `json:"coinBalance"`
}
