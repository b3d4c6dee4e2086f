package flags

import (
	"testing"
	"time"

	"github.com/ruteri/royalty-registry/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestConfigureServer(t *testing.T) {
	t.Setenv("ROYALTY_LISTEN_ADDR", "0.0.0.0:9999")
	t.Setenv("ROYALTY_MAX_DEADLINE_WINDOW", "10m")

	var cfg *api.HTTPServerConfig
	app := &cli.App{
		Flags: append([]cli.Flag{
			ListenAddrFlag,
			MaxDeadlineWindowFlag,
			LogServiceFlagFn("royalty-test"),
		}, CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			assert.Equal(t, "royalty-test", cCtx.String("log-service"))
			cfg = ConfigureServer(cCtx, SetupLogger(cCtx))
			return nil
		},
	}

	require.NoError(t, app.Run([]string{"royalty-server", "--drain-seconds", "3", "--pprof", "--metrics-addr", ""}))
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0:9999", cfg.ListenAddr)
	assert.Empty(t, cfg.MetricsAddr)
	assert.True(t, cfg.EnablePprof)
	assert.Equal(t, 3*time.Second, cfg.DrainDuration)
	assert.Equal(t, 10*time.Minute, cfg.MaxDeadlineWindow)
	assert.NotNil(t, cfg.Log)
}
