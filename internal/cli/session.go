package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/danielcaballero88/binance-trader/internal/config"
	"github.com/danielcaballero88/binance-trader/internal/health"
	"github.com/danielcaballero88/binance-trader/internal/logger"
	"github.com/danielcaballero88/binance-trader/pkg/binance"
	"github.com/danielcaballero88/binance-trader/pkg/protocol"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// session holds everything one command invocation needs. The requester is
// created once and closed when the command returns.
type session struct {
	cfg       *config.Config
	log       zerolog.Logger
	metrics   *health.Metrics
	requester protocol.Requester
	client    *binance.Client
	stderr    io.Writer
}

// resolveConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("requester") {
		cfg.Requester = requesterName
	}
	if flags.Changed("timeout") {
		cfg.Timeout = time.Duration(timeoutSeconds * float64(time.Second))
	}
	if flags.Changed("http2") {
		cfg.HTTP2 = useHTTP2
	}
	if flags.Changed("async") {
		cfg.Async = useAsync
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Enabled = dumpMetrics
	}
	if debugLog {
		cfg.Log.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		log:    logger.New(cmd.ErrOrStderr(), cfg.Log.Level),
		stderr: cmd.ErrOrStderr(),
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = s.log
	clientCfg.Debug = s.log.GetLevel() <= zerolog.DebugLevel
	if cfg.Metrics.Enabled {
		s.metrics = health.NewMetrics()
		clientCfg.Observer = s.metrics
	}

	s.requester, err = protocol.New(cfg.Requester, clientCfg)
	if err != nil {
		return nil, err
	}

	s.client = binance.New(s.requester,
		binance.WithBaseURL(cfg.BaseURL),
		binance.WithTimeout(cfg.Timeout),
	)

	s.log.Debug().
		Str("requester", s.requester.Name()).
		Str("base_url", s.client.BaseURL()).
		Dur("timeout", cfg.Timeout).
		Bool("http2", cfg.HTTP2).
		Bool("async", cfg.Async).
		Msg("session ready")

	return s, nil
}

// operation pairs the blocking and deferred forms of one client call.
type operation struct {
	call     func(ctx context.Context, c *binance.Client) (protocol.Result, error)
	deferred func(c *binance.Client) *protocol.Call
}

// invoke runs op through the blocking path, or through a deferred call that
// is awaited immediately when async is configured.
func (s *session) invoke(ctx context.Context, op operation) (protocol.Result, error) {
	if s.cfg.Async {
		return op.deferred(s.client).Await(ctx)
	}
	return op.call(ctx, s.client)
}

// Close dumps metrics if enabled and releases the requester's connections.
func (s *session) Close() error {
	if s.metrics != nil {
		if err := s.metrics.WriteText(s.stderr); err != nil {
			s.log.Warn().Stack().Err(err).Msg("failed to write metrics")
		}
	}
	return s.requester.Close()
}

// runOperation is the shared body of every subcommand.
func runOperation(cmd *cobra.Command, op operation) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.invoke(cmd.Context(), op)
	if err != nil {
		s.log.Debug().Stack().Err(err).Msg("request failed")
		return err
	}
	return printResult(cmd.OutOrStdout(), res)
}
