package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ruteri/royalty-registry/authority"
	"github.com/ruteri/royalty-registry/cmd/flags"
	"github.com/ruteri/royalty-registry/httpserver"
	"github.com/ruteri/royalty-registry/interfaces"
	"github.com/ruteri/royalty-registry/royalty"
	"github.com/ruteri/royalty-registry/storage"
	"github.com/urfave/cli/v2"
)

var serverFlags = append([]cli.Flag{
	flags.ListenAddrFlag,
	flags.StoreURIFlag,
	flags.AuthorityFlag,
	flags.RpcAddrFlag,
	flags.StaticAuthorityFileFlag,
	flags.OracleTimeoutFlag,
	flags.UncappedFeeRateFlag,
	flags.MaxDeadlineWindowFlag,
	flags.LogServiceFlagFn("royalty-server"),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:   "royalty-server",
		Usage:  "Serve the royalty registry API",
		Flags:  serverFlags,
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServer(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	storeFactory := storage.NewStoreFactory(logger)
	store, err := storeFactory.StoreFor(cCtx.String(flags.StoreURIFlag.Name))
	if err != nil {
		logger.Error("Failed to open royalty store", "err", err)
		return err
	}
	defer store.Close()
	logger.Info("Royalty store ready", "store", store.Name())

	assetAuthority, err := setupAuthority(cCtx, logger)
	if err != nil {
		logger.Error("Failed to set up asset authority", "err", err)
		return err
	}

	var opts []royalty.Option
	if cCtx.Bool(flags.UncappedFeeRateFlag.Name) {
		logger.Warn("Fee rates above the denominator are accepted")
		opts = append(opts, royalty.WithUncappedFeeRate())
	}
	registry := royalty.NewRegistry(store, assetAuthority, logger, opts...)

	cfg := flags.ConfigureServer(cCtx, logger)
	server, err := httpserver.New(cfg, httpserver.NewHandler(registry, store, logger))
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server")
	server.RunInBackground()

	// Wait for termination signal
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")
	return nil
}

func setupAuthority(cCtx *cli.Context, logger *slog.Logger) (interfaces.AssetAuthority, error) {
	switch kind := cCtx.String(flags.AuthorityFlag.Name); kind {
	case "onchain":
		rpcAddress := cCtx.String(flags.RpcAddrFlag.Name)
		logger.Info("Connecting to Ethereum RPC", "address", rpcAddress)
		ethClient, err := ethclient.Dial(rpcAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to dial RPC: %w", err)
		}

		onchain, err := authority.NewOnchainAuthority(ethClient, logger)
		if err != nil {
			return nil, err
		}
		onchain.SetTimeout(cCtx.Duration(flags.OracleTimeoutFlag.Name))
		return onchain, nil

	case "static":
		path := cCtx.String(flags.StaticAuthorityFileFlag.Name)
		if path == "" {
			return nil, errors.New("static-authority-file is required for static authority")
		}
		logger.Info("Loading static asset authority", "file", path)
		return authority.LoadStaticAuthorityFile(path)

	default:
		return nil, fmt.Errorf("invalid authority: %s", kind)
	}
}
