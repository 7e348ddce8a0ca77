package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "Read chapters",
}

var chaptersListCmd = &cobra.Command{
	Use:   "list <book-id>",
	Short: "List a book's chapters",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runChaptersList),
}

var chaptersShowCmd = &cobra.Command{
	Use:   "show <book-id> <chapter-id>",
	Short: "Print a chapter's content",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runChaptersShow),
}

func init() {
	chaptersCmd.AddCommand(chaptersListCmd)
	chaptersCmd.AddCommand(chaptersShowCmd)
	rootCmd.AddCommand(chaptersCmd)
}

func runChaptersList(ctx context.Context, a *app, args []string) error {
	chapters, err := a.catalog.ListChapters(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "NO\tID\tTITLE\tLOCKED\tCOST")
	for _, ch := range chapters {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%d\n",
			ch.ChapterNo, ch.ID, ch.Title, ch.IsLocked, ch.CoinCost)
	}
	return nil
}

func runChaptersShow(ctx context.Context, a *app, args []string) error {
	ch, err := a.catalog.GetChapter(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Printf("Chapter %d: %s\n\n", ch.ChapterNo, ch.Title)
	fmt.Println(ch.Content)
	return nil
}
