// Package command wires the CLI subcommands to the gateways.
package command

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"solana-cli/internal/config"
	"solana-cli/internal/helius"
	"solana-cli/internal/jsonrpc"
	"solana-cli/internal/logging"
	"solana-cli/internal/observability"
	"solana-cli/internal/solana"
	"solana-cli/internal/wallet"
)

// NewApp builds the CLI. Command output goes to stdout, diagnostics to stderr.
func NewApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "solana-cli",
		Usage:     "query accounts, move SOL, create mints and analyse token holders",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"C"},
				Usage:   "Solana CLI config file (default ~/.config/solana/cli/config.yml)",
			},
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "RPC URL or moniker (mainnet-beta, devnet, testnet, localhost)",
			},
			&cli.StringFlag{
				Name:    "keypair",
				Aliases: []string{"k"},
				Usage:   "keypair file used to sign transactions",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (default from " + config.EnvLogLevel + ", else warn)",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "print RPC and price feed statistics to stderr on exit",
			},
		},
		Commands: []*cli.Command{
			transferCommand(),
			accountCommand(),
			balanceCommand(),
			mintTokenCommand(),
			tokenAnalysisCommand(),
		},
	}
}

// runtime is everything one invocation builds from flags, config and
// environment. Nothing in it outlives the command.
type runtime struct {
	stdout   io.Writer
	stderr   io.Writer
	settings config.Settings
	cluster  *config.Solana
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func newRuntime(c *cli.Context) (*runtime, error) {
	settings := config.LoadSettings()

	level := settings.LogLevel
	if l := c.String("log-level"); l != "" {
		level = l
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, err
	}
	for _, w := range settings.Warnings {
		logger.Warn(w)
	}

	path := c.String("config")
	if path == "" {
		if path, err = config.DefaultSolanaPath(); err != nil {
			return nil, err
		}
	}
	cluster, found, err := config.LoadSolana(path)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Warn("Solana CLI config not found, using defaults", zap.String("path", path))
	}
	if u := c.String("url"); u != "" {
		cluster.JSONRPCURL = config.ResolveURL(u)
		cluster.WebsocketURL = ""
	}
	if k := c.String("keypair"); k != "" {
		cluster.KeypairPath = k
	}

	return &runtime{
		stdout:   c.App.Writer,
		stderr:   c.App.ErrWriter,
		settings: settings,
		cluster:  cluster,
		logger:   logger,
		metrics:  observability.NewMetrics(observability.DefaultNamespace),
	}, nil
}

// action builds the runtime, runs fn and prints statistics when asked.
func action(fn func(ctx context.Context, c *cli.Context, rt *runtime) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := newRuntime(c)
		if err != nil {
			return err
		}
		defer rt.logger.Sync() //nolint:errcheck

		runErr := fn(c.Context, c, rt)
		if c.Bool("stats") {
			if err := rt.metrics.WriteSummary(rt.stderr); err != nil {
				rt.logger.Warn("Failed to write statistics", zap.Error(err))
			}
		}
		return runErr
	}
}

// node returns a client for the configured RPC URL.
func (rt *runtime) node() *solana.Client {
	rpc := jsonrpc.NewClient(rt.cluster.JSONRPCURL,
		jsonrpc.WithTimeout(rt.settings.RPCTimeout),
		jsonrpc.WithMaxRetries(rt.settings.RPCMaxRetries),
		jsonrpc.WithObserver(rt.metrics.RPCObserver("node")),
	)
	return solana.NewClient(rpc, rt.cluster.Commitment)
}

// indexer returns a DAS client authenticated with apiKey.
func (rt *runtime) indexer(apiKey string) (*helius.Client, error) {
	endpoint, err := helius.Endpoint(rt.settings.HeliusURL, apiKey)
	if err != nil {
		return nil, err
	}
	rpc := jsonrpc.NewClient(endpoint,
		jsonrpc.WithTimeout(rt.settings.RPCTimeout),
		jsonrpc.WithMaxRetries(rt.settings.RPCMaxRetries),
		jsonrpc.WithRateLimit(rt.settings.HeliusRPS),
		jsonrpc.WithObserver(rt.metrics.RPCObserver("helius")),
	)
	return helius.NewClient(rpc), nil
}

// sender returns a transaction sender confirming over websocket when the
// endpoint is reachable and by polling otherwise. release closes the socket.
func (rt *runtime) sender(ctx context.Context, node *solana.Client) (s *wallet.Sender, release func()) {
	release = func() {}

	var subscriber wallet.Subscriber
	wsURL, err := rt.cluster.WSURL()
	if err == nil {
		var ws *solana.WSClient
		ws, err = solana.DialWS(ctx, wsURL, nil)
		if err == nil {
			subscriber = ws
			release = func() { ws.Close() }
		}
	}
	if err != nil {
		rt.logger.Warn("Websocket unavailable, confirming by polling", zap.String("url", wsURL), zap.Error(err))
	}

	cfg := wallet.SenderConfig{
		Commitment:     node.Commitment(),
		ConfirmTimeout: rt.settings.ConfirmTimeout,
		PollInterval:   rt.settings.ConfirmPoll,
	}
	return wallet.NewSender(node, subscriber, cfg, rt.logger, rt.metrics), release
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s expects %d argument(s): %s", c.Command.Name, n, c.Command.ArgsUsage)
	}
	return nil
}
