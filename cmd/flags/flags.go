package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/royalty-registry/api"
	"github.com/ruteri/royalty-registry/common"
	"github.com/urfave/cli/v2"
)

const envPrefix = "ROYALTY_"

func envVars(name string) []string {
	return []string{envPrefix + name}
}

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
		MaxDeadlineWindow:        cCtx.Duration(MaxDeadlineWindowFlag.Name),
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for API",
	EnvVars: envVars("LISTEN_ADDR"),
}

var StoreURIFlag = &cli.StringFlag{
	Name:    "store-uri",
	Value:   "memory://",
	Usage:   "royalty store location: memory://, sqlite:///path/to.db or redis://host:port/db?prefix=name",
	EnvVars: envVars("STORE_URI"),
}

var AuthorityFlag = &cli.StringFlag{
	Name:    "authority",
	Value:   "onchain",
	Usage:   "asset administrator source: 'onchain' (owner() over RPC) or 'static' (YAML file)",
	EnvVars: envVars("AUTHORITY"),
}

var RpcAddrFlag = &cli.StringFlag{
	Name:    "rpc-addr",
	Value:   "http://127.0.0.1:8545",
	Usage:   "address to connect to RPC",
	EnvVars: envVars("RPC_ADDR"),
}

var StaticAuthorityFileFlag = &cli.StringFlag{
	Name:    "static-authority-file",
	Usage:   "YAML file mapping assets to administrators (required if authority is 'static')",
	EnvVars: envVars("STATIC_AUTHORITY_FILE"),
}

var OracleTimeoutFlag = &cli.DurationFlag{
	Name:    "oracle-timeout",
	Value:   10 * time.Second,
	Usage:   "timeout of a single administrator lookup, 0 to disable",
	EnvVars: envVars("ORACLE_TIMEOUT"),
}

var UncappedFeeRateFlag = &cli.BoolFlag{
	Name:    "uncapped-fee-rate",
	Value:   false,
	Usage:   "accept fee rates above 1000000 (royalty larger than the sale price)",
	EnvVars: envVars("UNCAPPED_FEE_RATE"),
}

var MaxDeadlineWindowFlag = &cli.DurationFlag{
	Name:    "max-deadline-window",
	Value:   time.Hour,
	Usage:   "reject signed writes whose deadline is further in the future, 0 to disable",
	EnvVars: envVars("MAX_DEADLINE_WINDOW"),
}

var ServerAddrFlag = &cli.StringFlag{
	Name:    "server-addr",
	Value:   "http://127.0.0.1:8080",
	Usage:   "royalty server to connect to",
	EnvVars: envVars("SERVER_ADDR"),
}

var PrivateKeyFlag = &cli.StringFlag{
	Name:    "private-key",
	Usage:   "hex-encoded secp256k1 key of the asset administrator",
	EnvVars: envVars("PRIVATE_KEY"),
}

var AssetFlag = &cli.StringFlag{
	Name:     "asset",
	Required: true,
	Usage:    "asset contract address, 40-char hex string with or without 0x prefix",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:    "log-json",
	Value:   false,
	Usage:   "log in JSON format",
	EnvVars: envVars("LOG_JSON"),
}
var LogDebugFlag = &cli.BoolFlag{
	Name:    "log-debug",
	Value:   false,
	Usage:   "log debug messages",
	EnvVars: envVars("LOG_DEBUG"),
}
var LogUidFlag = &cli.BoolFlag{
	Name:    "log-uid",
	Value:   false,
	Usage:   "generate a uuid and add to all log messages",
	EnvVars: envVars("LOG_UID"),
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "log-service",
		Value:   service,
		Usage:   "add 'service' tag to logs",
		EnvVars: envVars("LOG_SERVICE"),
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:    "pprof",
	Value:   false,
	Usage:   "enable pprof debug endpoint",
	EnvVars: envVars("PPROF"),
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:    "drain-seconds",
	Value:   45,
	Usage:   "seconds to wait in drain HTTP request",
	EnvVars: envVars("DRAIN_SECONDS"),
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	Usage:   "address to listen on for Prometheus metrics",
	EnvVars: envVars("METRICS_ADDR"),
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
