package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var coinsCmd = &cobra.Command{
	Use:   "coins",
	Short: "Coin balance and purchases",
}

var coinsBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the account's coin balance",
	RunE:  withApp(runCoinsBalance),
}

var coinsPackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List the purchasable coin packages",
	RunE:  withApp(runCoinsPackages),
}

var coinsBuyCmd = &cobra.Command{
	Use:   "buy <coins>",
	Short: "Start a coin purchase and print the payment link",
	Long: `Start a purchase for one of the fixed coin packages. The argument is
the package's base coin amount (see "coins packages"). The returned
payment link must be opened in a browser to complete the checkout.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runCoinsBuy),
}

func init() {
	coinsCmd.AddCommand(coinsBalanceCmd)
	coinsCmd.AddCommand(coinsPackagesCmd)
	coinsCmd.AddCommand(coinsBuyCmd)
	rootCmd.AddCommand(coinsCmd)
}

func runCoinsBalance(ctx context.Context, a *app, _ []string) error {
	balance, err := a.wallet.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Balance: %d coins\n", balance)
	return nil
}

func runCoinsPackages(ctx context.Context, a *app, _ []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "COINS\tBONUS\tTOTAL\tPRICE\t")
	for _, p := range a.wallet.Packages() {
		tag := ""
		if p.Popular {
			tag = "popular"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t$%.2f\t%s\n",
			p.BaseCoins, p.Bonus, p.Total(), p.PriceUSD, tag)
	}
	return nil
}

func runCoinsBuy(ctx context.Context, a *app, args []string) error {
	coins, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid coin amount %q", args[0])
	}
	link, err := a.wallet.Purchase(ctx, coins)
	if err != nil {
		return err
	}
	fmt.Printf("Complete the purchase here:\n%s\n", link)
	return nil
}
