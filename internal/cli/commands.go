package cli

import (
	"context"

	"github.com/danielcaballero88/binance-trader/pkg/binance"
	"github.com/danielcaballero88/binance-trader/pkg/protocol"
	"github.com/spf13/cobra"
)

var exchangeInfoSymbol string

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Print the server time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, operation{
			call: func(ctx context.Context, c *binance.Client) (protocol.Result, error) {
				return c.Time(ctx)
			},
			deferred: (*binance.Client).TimeAsync,
		})
	},
}

var exchangeInfoCmd = &cobra.Command{
	Use:   "exchange-info",
	Short: "Print exchange trading rules and symbol information",
	Long: `Print exchange trading rules and symbol information.

Examples:
  binance-trader exchange-info                 All symbols
  binance-trader exchange-info --symbol BTCUSDT`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := exchangeInfoSymbol
		return runOperation(cmd, operation{
			call: func(ctx context.Context, c *binance.Client) (protocol.Result, error) {
				return c.ExchangeInfo(ctx, symbol)
			},
			deferred: func(c *binance.Client) *protocol.Call {
				return c.ExchangeInfoAsync(symbol)
			},
		})
	},
}

func init() {
	exchangeInfoCmd.Flags().StringVar(&exchangeInfoSymbol, "symbol", "", "Limit the result to one symbol, e.g. BTCUSDT")

	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(exchangeInfoCmd)
}
