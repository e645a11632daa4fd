package client

// TokenResponse is the wire shape of the token-granting endpoints. The
// refresh_token field exists because some deployments return it in-body, but
// this client always ignores it: the server sets the refresh credential as
// an HttpOnly cookie and the jar is its only home.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// User is the profile returned by GET /users/me.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Book is a book record in the user's library.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn,omitempty"`
}

// Highlight is a passage saved from a book, with an optional note and tags.
type Highlight struct {
	ID       int64    `json:"id"`
	BookID   int64    `json:"book_id"`
	Text     string   `json:"text"`
	Note     string   `json:"note,omitempty"`
	Location string   `json:"location,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Flashcard is a spaced-repetition card derived from a highlight.
type Flashcard struct {
	ID    int64  `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
	Due   string `json:"due,omitempty"`
}

// bookPage is one page of the paginated GET /books response.
type bookPage struct {
	Items     []Book `json:"items"`
	Page      int    `json:"page"`
	PageCount int    `json:"page_count"`
	Total     int    `json:"total"`
}
