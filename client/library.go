package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// FetchBooks retrieves the user's whole library, following pagination until
// the last page.
func (c *Client) FetchBooks(ctx context.Context, accessToken string) ([]Book, error) {
	var books []Book
	page := 1
	for {
		pg, err := c.fetchBookPage(ctx, accessToken, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch library page %d: %w", page, err)
		}
		books = append(books, pg.Items...)
		if pg.PageCount == 0 || page >= pg.PageCount {
			break
		}
		page++
	}
	log.Info().Int("count", len(books)).Msg("Fetched library book list")
	return books, nil
}

func (c *Client) fetchBookPage(ctx context.Context, accessToken string, page int) (*bookPage, error) {
	path := fmt.Sprintf("/books?page=%d", page)
	req, err := c.newRequest(ctx, http.MethodGet, path, accessToken, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	var pg bookPage
	if err := json.Unmarshal(body, &pg); err != nil {
		return nil, fmt.Errorf("failed to parse book page JSON: %w", err)
	}
	return &pg, nil
}

// FetchHighlights retrieves all highlights saved for a book.
func (c *Client) FetchHighlights(ctx context.Context, accessToken string, bookID int64) ([]Highlight, error) {
	path := fmt.Sprintf("/books/%d/highlights", bookID)
	req, err := c.newRequest(ctx, http.MethodGet, path, accessToken, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch highlights for book %d: %w", bookID, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read highlights response body: %w", err)
	}
	var highlights []Highlight
	if err := json.Unmarshal(body, &highlights); err != nil {
		return nil, fmt.Errorf("failed to parse highlights JSON: %w", err)
	}
	return highlights, nil
}

// FetchDueFlashcards retrieves the flashcards due for review.
func (c *Client) FetchDueFlashcards(ctx context.Context, accessToken string) ([]Flashcard, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/flashcards/due", accessToken, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due flashcards: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read flashcards response body: %w", err)
	}
	var cards []Flashcard
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("failed to parse flashcards JSON: %w", err)
	}
	log.Info().Int("count", len(cards)).Msg("Fetched due flashcards")
	return cards, nil
}
