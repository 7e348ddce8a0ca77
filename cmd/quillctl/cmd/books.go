package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	booksPage  int
	booksLimit int
	booksAll   bool
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Browse the catalog",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books",
	RunE:  withApp(runBooksList),
}

var booksShowCmd = &cobra.Command{
	Use:   "show <book-id>",
	Short: "Show one book with its chapter listing",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runBooksShow),
}

func init() {
	booksListCmd.Flags().IntVar(&booksPage, "page", 1, "page number")
	booksListCmd.Flags().IntVar(&booksLimit, "limit", 10, "books per page")
	booksListCmd.Flags().BoolVar(&booksAll, "all", false, "fetch every page")
	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksShowCmd)
	rootCmd.AddCommand(booksCmd)
}

func runBooksList(ctx context.Context, a *app, _ []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCHAPTERS\tVIEWS\tLIKES")

	if booksAll {
		books, err := a.catalog.ListAllBooks(ctx, booksLimit)
		if err != nil {
			return err
		}
		for _, b := range books {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				b.ID, b.Title, b.Status, len(b.Chapters), b.Views, b.LikeCount)
		}
		return nil
	}

	page, err := a.catalog.ListBooks(ctx, booksPage, booksLimit)
	if err != nil {
		return err
	}
	for _, b := range page.Books {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			b.ID, b.Title, b.Status, len(b.Chapters), b.Views, b.LikeCount)
	}
	fmt.Fprintf(w, "\npage %d of %d (%d total)\n",
		page.Pagination.CurrentPage, page.Pagination.TotalPages, page.Pagination.Total)
	return nil
}

func runBooksShow(ctx context.Context, a *app, args []string) error {
	book, err := a.catalog.GetBook(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s by %s\n", book.Title, book.Author)
	if book.Category != "" {
		fmt.Printf("Category: %s\n", book.Category)
	}
	fmt.Printf("Status: %s  Views: %d  Likes: %d\n", book.Status, book.Views, book.LikeCount)
	if book.Description != "" {
		fmt.Printf("\n%s\n", book.Description)
	}

	if len(book.Chapters) > 0 {
		fmt.Printf("\nChapters (%d):\n", len(book.Chapters))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintln(w, "  NO\tID\tTITLE\tLOCKED\tCOST")
		for _, ch := range book.Chapters {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%v\t%d\n",
				ch.ChapterNo, ch.ID, ch.Title, ch.IsLocked, ch.CoinCost)
		}
	}
	return nil
}
