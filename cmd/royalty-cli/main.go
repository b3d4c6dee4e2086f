package main

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/royalty-registry/api/clients"
	"github.com/ruteri/royalty-registry/cmd/flags"
	"github.com/ruteri/royalty-registry/interfaces"
	"github.com/urfave/cli/v2"
)

var flagReceiver = &cli.StringFlag{
	Name:     "receiver",
	Required: true,
	Usage:    "royalty receiver address",
}

var flagFeeRate = &cli.Uint64Flag{
	Name:     "fee-rate",
	Required: true,
	Usage:    "fee rate numerator over 1000000 (50000 is 5%)",
}

var flagPermanent = &cli.BoolFlag{
	Name:  "permanent",
	Usage: "lock the config forever; it can never be changed again",
}

var flagSalePrice = &cli.StringFlag{
	Name:     "sale-price",
	Required: true,
	Usage:    "sale price as a base-10 integer",
}

var flagTokenID = &cli.StringFlag{
	Name:  "token-id",
	Usage: "token id as a base-10 integer",
}

var flagRevision = &cli.Uint64Flag{
	Name:     "revision",
	Required: true,
	Usage:    "config revision the request applies to, as shown by the config command (0 for an unconfigured asset)",
}

var flagDeadlineWindow = &cli.DurationFlag{
	Name:  "deadline-window",
	Value: clients.DefaultDeadlineWindow,
	Usage: "how long the signed request stays valid",
}

func main() {
	app := &cli.App{
		Name:           "royalty-cli",
		Usage:          "Configure and query the royalty registry",
		DefaultCommand: "config",
		Flags:          []cli.Flag{flags.ServerAddrFlag},
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Set the royalty config of an asset (administrator only)",
				Flags: []cli.Flag{flags.AssetFlag, flags.PrivateKeyFlag, flagReceiver, flagFeeRate, flagPermanent, flagDeadlineWindow},
				Action: func(cCtx *cli.Context) error {
					key, err := loadKey(cCtx)
					if err != nil {
						return err
					}
					asset, config, err := parseConfig(cCtx)
					if err != nil {
						return err
					}

					client := clients.NewRoyaltyClient(cCtx.String(flags.ServerAddrFlag.Name), key)
					client.SetDeadlineWindow(cCtx.Duration(flagDeadlineWindow.Name))
					return runSet(client, asset, config, cCtx.App.Writer)
				},
			},
			{
				Name:  "get",
				Usage: "Compute the royalty of a sale",
				Flags: []cli.Flag{flags.AssetFlag, flagSalePrice, flagTokenID},
				Action: func(cCtx *cli.Context) error {
					asset, err := interfaces.ParseAddress(cCtx.String(flags.AssetFlag.Name))
					if err != nil {
						return err
					}
					client := clients.NewRoyaltyClient(cCtx.String(flags.ServerAddrFlag.Name), nil)
					return runGet(client, asset, cCtx.String(flagTokenID.Name), cCtx.String(flagSalePrice.Name), cCtx.App.Writer)
				},
			},
			{
				Name:  "config",
				Usage: "Show the stored royalty config of an asset",
				Flags: []cli.Flag{flags.AssetFlag},
				Action: func(cCtx *cli.Context) error {
					asset, err := interfaces.ParseAddress(cCtx.String(flags.AssetFlag.Name))
					if err != nil {
						return err
					}
					client := clients.NewRoyaltyClient(cCtx.String(flags.ServerAddrFlag.Name), nil)
					return runConfig(client, asset, cCtx.App.Writer)
				},
			},
			{
				Name:  "sign",
				Usage: "Print a signed set request body and signature header without sending it",
				Flags: []cli.Flag{flags.AssetFlag, flags.PrivateKeyFlag, flagReceiver, flagFeeRate, flagPermanent, flagRevision, flagDeadlineWindow},
				Action: func(cCtx *cli.Context) error {
					key, err := loadKey(cCtx)
					if err != nil {
						return err
					}
					asset, config, err := parseConfig(cCtx)
					if err != nil {
						return err
					}
					deadline := time.Now().Add(cCtx.Duration(flagDeadlineWindow.Name))
					return runSign(key, asset, config, cCtx.Uint64(flagRevision.Name), deadline, cCtx.App.Writer)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadKey(cCtx *cli.Context) (*ecdsa.PrivateKey, error) {
	keyHex := strings.TrimPrefix(cCtx.String(flags.PrivateKeyFlag.Name), "0x")
	if keyHex == "" {
		return nil, errors.New("private-key is required")
	}
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private-key: %w", err)
	}
	return key, nil
}

func parseConfig(cCtx *cli.Context) (interfaces.Address, interfaces.RoyaltyConfig, error) {
	asset, err := interfaces.ParseAddress(cCtx.String(flags.AssetFlag.Name))
	if err != nil {
		return interfaces.NullAddress, interfaces.RoyaltyConfig{}, err
	}
	receiver, err := interfaces.ParseAddress(cCtx.String(flagReceiver.Name))
	if err != nil {
		return interfaces.NullAddress, interfaces.RoyaltyConfig{}, err
	}
	return asset, interfaces.RoyaltyConfig{
		Receiver:  receiver,
		FeeRate:   cCtx.Uint64(flagFeeRate.Name),
		Permanent: cCtx.Bool(flagPermanent.Name),
	}, nil
}
