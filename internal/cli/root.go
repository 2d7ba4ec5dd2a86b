package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/danielcaballero88/binance-trader/internal/tui"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var (
	cfgFile        string
	baseURL        string
	requesterName  string
	timeoutSeconds float64
	useHTTP2       bool
	useAsync       bool
	debugLog       bool
	dumpMetrics    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "binance-trader",
	Short: "Minimal client for the Binance public REST API",
	Long: `binance-trader queries the Binance public REST API.

Examples:
  binance-trader ping
  binance-trader time --requester resty --timeout 2.5
  binance-trader exchange-info --symbol BTCUSDT`,
	Version:       versionString(),
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if code := run(os.Args[1:], os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// run executes args and returns the process exit code. Every failure is
// reported here as a single line on stderr.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, tui.Render(stderr, tui.ErrorStyle, "Error: "+errorMessage(err)))
		return 1
	}
	return 0
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to YAML config file")
	flags.StringVar(&baseURL, "base-url", "https://api.binance.com", "API base URL")
	flags.StringVar(&requesterName, "requester", "http", "HTTP backend (http, resty)")
	flags.Float64Var(&timeoutSeconds, "timeout", 0, "Per-request timeout in seconds (0 = none)")
	flags.BoolVar(&useHTTP2, "http2", false, "Use HTTP/2 for the http backend")
	flags.BoolVar(&useAsync, "async", false, "Issue the request as a deferred call and await it")
	flags.BoolVar(&debugLog, "debug", false, "Log requests to stderr")
	flags.BoolVar(&dumpMetrics, "metrics", false, "Print request metrics to stderr when done")
}

// SetVersion sets the version info
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = versionString()
}

// SetGitCommit sets the commit the binary was built from
func SetGitCommit(gc string) {
	gitCommit = gc
	rootCmd.Version = versionString()
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, gitCommit, buildTime)
}
