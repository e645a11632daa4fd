package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/shelfmark/shelfmark/client"
	"github.com/shelfmark/shelfmark/db"
	"github.com/shelfmark/shelfmark/pkg/pool"
	"github.com/shelfmark/shelfmark/pkg/validation"
	"github.com/spf13/cobra"
)

// libraryCmd represents the base command when called without any subcommands
func libraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the local library cache",
	}

	// Add subcommands to the library command
	cmd.AddCommand(
		listCmd(),
		searchCmd(),
		infoCmd(),
		syncCmd(),
		exportCmd(),
		cardsCmd(),
	)

	return cmd
}

// listCmd shows the list of books in the library cache
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all books in the local library cache",
		Run:   listBooks,
	}
}

func listBooks(cmd *cobra.Command, args []string) {
	log.Info().Msg("Listing all books in the library cache...")

	books, err := db.GetLibrary()
	if err != nil {
		cmd.PrintErrln("Error: Unable to list books. Please check the logs for details.")
		log.Error().Err(err).Msg("Failed to fetch books from the library cache.")
		return
	}

	if len(books) == 0 {
		cmd.Println("No books found in the library cache. Use `shelfmark library sync` to fetch your library.")
		return
	}

	renderBookTable(books)
	log.Info().Msgf("Successfully listed %d books in the library cache.", len(books))
}

// renderBookTable prints books as a table on stdout.
func renderBookTable(books []db.Book) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Row ID", "Book ID", "Title", "Author"})

	// Table appearance settings
	table.SetColMinWidth(2, 50)                      // Set minimum width for the Title column
	table.SetAlignment(tablewriter.ALIGN_LEFT)       // Align all columns to the left
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT) // Align headers to the left
	table.SetAutoWrapText(false)                     // Disable text wrapping in all columns
	table.SetRowLine(false)                          // Disable row line breaks

	for i, book := range books {
		cleanedTitle := strings.ReplaceAll(book.Title, "\n", " ")
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", book.ID),
			cleanedTitle,
			book.Author,
		})
	}

	table.Render()
}

// searchCmd finds books in the cache by title substring
func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [title]",
		Short: "Search the local library cache by title",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			books, err := db.SearchBooksByTitle(args[0])
			if err != nil {
				cmd.PrintErrln("Error: Unable to search books. Please check the logs for details.")
				return
			}
			if len(books) == 0 {
				cmd.Println("No books matched the query.")
				return
			}
			renderBookTable(books)
		},
	}
}

// infoCmd shows a book's details and cached highlights, given its ID
func infoCmd() *cobra.Command {
	var bookID int64
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show information about a specific book",
		Run: func(cmd *cobra.Command, args []string) {
			showBookInfo(cmd, bookID)
		},
	}

	cmd.Flags().Int64VarP(&bookID, "id", "i", 0, "ID of the book to show its information")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		log.Error().Err(err).Msg("Failed to mark 'id' flag as required")
	}

	return cmd
}

func showBookInfo(cmd *cobra.Command, bookID int64) {
	if err := validation.ValidateBookID(bookID); err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	log.Info().Msgf("Fetching info for book with ID=%d", bookID)

	book, err := db.GetBookByID(bookID)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to fetch info for book with ID=%d", bookID)
		cmd.PrintErrln("Error:", err)
		return
	}

	if book == nil {
		log.Info().Msgf("No book found with ID=%d", bookID)
		cmd.Println("No book found with the specified ID.")
		return
	}

	cmd.Println("Book Information:")
	cmd.Printf("ID: %d\n", book.ID)
	cmd.Printf("Title: %s\n", book.Title)
	cmd.Printf("Author: %s\n", book.Author)
	if book.ISBN != "" {
		cmd.Printf("ISBN: %s\n", book.ISBN)
	}

	highlights, err := db.GetHighlightsByBook(bookID)
	if err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}
	cmd.Printf("Cached highlights: %d\n", len(highlights))
	for _, h := range highlights {
		cmd.Printf("  - %s\n", strings.ReplaceAll(h.Text, "\n", " "))
		if h.Note != "" {
			cmd.Printf("    note: %s\n", h.Note)
		}
	}
}

// syncCmd refreshes the library cache with the latest data from the server
func syncCmd() *cobra.Command {
	var numThreads int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Update the local cache with the latest library data from the server",
		Run: func(cmd *cobra.Command, args []string) {
			syncLibrary(cmd, numThreads)
		},
	}

	cmd.Flags().IntVarP(&numThreads, "threads", "t", 5, "Number of threads to use for fetching highlights")
	return cmd
}

func syncLibrary(cmd *cobra.Command, numThreads int) {
	log.Info().Msg("Syncing the library cache...")

	if err := validation.ValidateThreadCount(numThreads); err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	token, api, err := currentAccessToken(cmd.Context())
	if err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	books, err := api.FetchBooks(cmd.Context(), token)
	if err != nil {
		cmd.PrintErrln("Error: Failed to fetch the library from the server.")
		log.Error().Err(err).Msg("Library fetch failed")
		return
	}
	if len(books) == 0 {
		cmd.Println("Your library on the server is empty.")
		return
	}

	if err := db.EmptyLibrary(); err != nil {
		log.Error().Err(err).Msg("Failed to empty the library cache.")
		cmd.PrintErrln("Error: Failed to reset the local cache.")
		return
	}

	log.Info().Msgf("Found %d books; fetching highlights...", len(books))

	bar := progressbar.NewOptions(len(books),
		progressbar.OptionSetDescription("Syncing library..."),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)

	errs := pool.RunWithOptions(cmd.Context(), books, numThreads,
		func(ctx context.Context, book client.Book) error {
			return syncBook(ctx, api, token, book)
		},
		pool.Options{OnDone: func() { _ = bar.Add(1) }},
	)

	_ = bar.Finish()

	if len(errs) > 0 {
		for _, err := range errs {
			log.Error().Err(err).Msg("Book sync failed")
		}
		cmd.PrintErrf("Sync finished with %d errors; run with DEBUG_SHELFMARK=1 for details.\n", len(errs))
		return
	}
	cmd.Printf("Synced %d books.\n", len(books))
}

// syncBook caches one book and its highlights.
func syncBook(ctx context.Context, api *client.Client, token string, book client.Book) error {
	if err := db.UpsertBook(db.Book{ID: book.ID, Title: book.Title, Author: book.Author, ISBN: book.ISBN}); err != nil {
		return fmt.Errorf("failed to cache book %d: %w", book.ID, err)
	}

	highlights, err := api.FetchHighlights(ctx, token, book.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch highlights for book %d: %w", book.ID, err)
	}

	cached := make([]db.Highlight, 0, len(highlights))
	for _, h := range highlights {
		cached = append(cached, db.Highlight{
			ID:       h.ID,
			BookID:   h.BookID,
			Text:     h.Text,
			Note:     h.Note,
			Location: h.Location,
		})
	}
	if err := db.ReplaceHighlights(book.ID, cached); err != nil {
		return fmt.Errorf("failed to cache highlights for book %d: %w", book.ID, err)
	}
	return nil
}

// exportCmd writes the cached library to a JSON file
func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [exportDir]",
		Short: "Export the local library cache to a JSON file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			exportLibrary(cmd, args[0])
		},
	}
}

func exportLibrary(cmd *cobra.Command, exportDir string) {
	books, err := db.GetLibrary()
	if err != nil {
		cmd.PrintErrln("Error: Unable to read the library cache.")
		return
	}
	if len(books) == 0 {
		cmd.Println("Nothing to export. Use `shelfmark library sync` first.")
		return
	}

	type exportedBook struct {
		db.Book
		Highlights []db.Highlight `json:"highlights"`
	}

	exported := make([]exportedBook, 0, len(books))
	for _, book := range books {
		highlights, err := db.GetHighlightsByBook(book.ID)
		if err != nil {
			cmd.PrintErrln("Error:", err)
			return
		}
		exported = append(exported, exportedBook{Book: book, Highlights: highlights})
	}

	if err := os.MkdirAll(exportDir, 0o750); err != nil {
		cmd.PrintErrln("Error: Failed to create the export directory:", err)
		return
	}

	path := filepath.Join(exportDir, "library.json")
	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		cmd.PrintErrln("Error: Failed to write the export file:", err)
		return
	}

	cmd.Printf("Exported %d books to %s\n", len(exported), path)
}

// cardsCmd lists the flashcards currently due for review
func cardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "Show flashcards due for review",
		Run: func(cmd *cobra.Command, args []string) {
			token, api, err := currentAccessToken(cmd.Context())
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			cards, err := api.FetchDueFlashcards(cmd.Context(), token)
			if err != nil {
				cmd.PrintErrln("Error: Failed to fetch due flashcards.")
				return
			}
			if len(cards) == 0 {
				cmd.Println("No flashcards are due. Nice.")
				return
			}

			for i, card := range cards {
				cmd.Printf("%d. %s\n   -> %s\n", i+1, card.Front, card.Back)
			}
		},
	}
}
