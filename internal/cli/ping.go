package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/danielcaballero88/binance-trader/internal/tui"
	"github.com/danielcaballero88/binance-trader/pkg/binance"
	"github.com/danielcaballero88/binance-trader/pkg/protocol"
	"github.com/spf13/cobra"
)

var pingCount int

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test connectivity to the API",
	Long: `Test connectivity to the API.

With --count greater than 1 the ping is repeated sequentially and a latency
summary is printed to stderr. Stdout gets the last result.

Examples:
  binance-trader ping
  binance-trader ping --count 20 --requester resty`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	pingCmd.Flags().IntVar(&pingCount, "count", 1, "Number of sequential pings")
	rootCmd.AddCommand(pingCmd)
}

var pingOperation = operation{
	call: func(ctx context.Context, c *binance.Client) (protocol.Result, error) {
		return c.Ping(ctx)
	},
	deferred: (*binance.Client).PingAsync,
}

func runPing(cmd *cobra.Command, args []string) error {
	if pingCount < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", pingCount)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	// 1µs to 60s at 3 significant figures
	hist := hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)

	var res protocol.Result
	for i := 0; i < pingCount; i++ {
		start := time.Now()
		res, err = s.invoke(cmd.Context(), pingOperation)
		if err != nil {
			s.log.Debug().Stack().Err(err).Int("attempt", i+1).Msg("ping failed")
			return err
		}
		elapsed := time.Since(start).Microseconds()
		if elapsed < 1 {
			elapsed = 1
		}
		if err := hist.RecordValue(elapsed); err != nil {
			s.log.Warn().Stack().Err(err).Int64("elapsed_us", elapsed).Msg("latency out of histogram range")
		}
	}

	if pingCount > 1 {
		printLatencySummary(cmd.ErrOrStderr(), hist)
	}
	return printResult(cmd.OutOrStdout(), res)
}

func printLatencySummary(w io.Writer, hist *hdrhistogram.Histogram) {
	us := func(v int64) string {
		return (time.Duration(v) * time.Microsecond).String()
	}

	fmt.Fprintf(w, "%s %d requests\n",
		tui.Render(w, tui.TitleStyle, "ping:"), hist.TotalCount())
	fmt.Fprintf(w, "  %s %s  %s %s  %s %s  %s %s  %s %s\n",
		tui.Render(w, tui.DimStyle, "min"), tui.Render(w, tui.ValueStyle, us(hist.Min())),
		tui.Render(w, tui.DimStyle, "p50"), tui.Render(w, tui.ValueStyle, us(hist.ValueAtQuantile(50))),
		tui.Render(w, tui.DimStyle, "p99"), tui.Render(w, tui.ValueStyle, us(hist.ValueAtQuantile(99))),
		tui.Render(w, tui.DimStyle, "max"), tui.Render(w, tui.ValueStyle, us(hist.Max())),
		tui.Render(w, tui.DimStyle, "mean"), tui.Render(w, tui.ValueStyle, us(int64(hist.Mean()))),
	)
}
