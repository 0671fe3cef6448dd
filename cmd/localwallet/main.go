// Command localwallet runs the local Sui wallet HTTP API and offers a few
// offline maintenance commands.
//
// @title           Sui Local Wallet API
// @version         1.0
// @description     Local Sui wallet: password protected key storage, session handling and balance queries.
// @host            localhost:8080
// @BasePath        /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/AlexZinkM/sui-local-wallet/internal/api"
	"github.com/AlexZinkM/sui-local-wallet/internal/auth"
	"github.com/AlexZinkM/sui-local-wallet/internal/balance"
	"github.com/AlexZinkM/sui-local-wallet/internal/client"
	"github.com/AlexZinkM/sui-local-wallet/internal/common"
	"github.com/AlexZinkM/sui-local-wallet/internal/config"
	"github.com/AlexZinkM/sui-local-wallet/internal/crypto"
	"github.com/AlexZinkM/sui-local-wallet/internal/handler"
	"github.com/AlexZinkM/sui-local-wallet/internal/model"
	"github.com/AlexZinkM/sui-local-wallet/internal/session"
	"github.com/AlexZinkM/sui-local-wallet/internal/wallet"
	"github.com/AlexZinkM/sui-local-wallet/sui"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	"github.com/urfave/cli"
)

const (
	logFileName     = "localwallet.log"
	shutdownTimeout = 5 * time.Second
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[localwallet] %v\n", err)
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = "localwallet"
	app.Usage = "local Sui wallet"
	app.Before = func(*cli.Context) error {
		return config.Init()
	}
	app.Commands = []cli.Command{
		serveCommand,
		addressCommand,
		balanceCommand,
		rekeyCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

var serveCommand = cli.Command{
	Name:   "serve",
	Usage:  "Run the wallet HTTP API.",
	Action: serve,
}

func serve(_ *cli.Context) error {
	cfg := config.Get()
	dataDir := config.GetDataDir()
	params := config.GetKDFParams()

	logFile := filepath.Join(dataDir, "logs", logFileName)
	if err := initLogRotator(logFile, cfg.MaxLogFileSize, cfg.MaxLogFiles); err != nil {
		return err
	}
	defer logRotator.Close()
	setLogLevels(cfg.LogLevel)

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	clk := clock.NewDefaultClock()
	maxAttempts, lockout := config.GetLockout()
	authCtx, err := auth.New(auth.Config{
		PasswordFile:      crypto.PasswordFilePath(dataDir),
		Params:            params,
		Policy:            config.GetPasswordPolicy(),
		Session:           session.New(clk, config.GetSessionTimeout()),
		Clock:             clk,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockout,
	})
	if err != nil {
		return fmt.Errorf("failed to load password: %w", err)
	}

	if config.GetNetwork().IsMainnet() {
		lwltLog.Warnf("Starting on mainnet: balances are real funds")
	}

	suiClient := client.NewSuiClient(config.GetRPCURLs())
	checkNode(suiClient, config.GetNetwork(), cfg.BalanceTimeout)

	fetcher := balance.New(suiClient, cfg.BalanceTimeout)
	defer fetcher.Stop()

	ctrl := wallet.New(wallet.Config{
		Auth:    authCtx,
		Vault:   crypto.NewVault(crypto.KeyFilePath(dataDir), params),
		Fetcher: fetcher,
		Network: config.GetNetwork(),
	})

	loop := wallet.NewLoop(ctrl, ticker.New(cfg.TickInterval))
	if err := loop.Start(); err != nil {
		return err
	}
	defer loop.Stop()

	h := handler.NewWalletHandler(loop, client.NewCoinGeckoClient(), config.GetPriceCurrency())
	srv := &http.Server{
		Addr:    config.GetListenAddr(),
		Handler: api.SetupRouter(h),
	}

	errChan := make(chan error, 1)
	go func() {
		lwltLog.Infof("Listening on http://%s (data dir %s, network %v, phase %v)",
			srv.Addr, dataDir, config.GetNetwork(), authCtx.Phase())
		errChan <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-sigChan:
		lwltLog.Infof("Received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// checkNode logs the chain identifier of the selected network's node. An
// unreachable node is not fatal.
func checkNode(c *client.SuiClient, network model.Network, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	id, err := c.ChainIdentifier(ctx, network)
	if err != nil {
		lwltLog.Warnf("Node %s unreachable: %v", c.RPCURL(network), err)
		return
	}
	lwltLog.Infof("Connected to %v node %s (chain %s)", network, c.RPCURL(network), id)
}

var addressCommand = cli.Command{
	Name:   "address",
	Usage:  "Print the address of the saved wallet with a QR code.",
	Action: showAddress,
}

func showAddress(_ *cli.Context) error {
	password, err := config.PromptForPassword("Password: ")
	if err != nil {
		return err
	}
	defer clear(password)

	key, err := store().Unlock(password)
	if err != nil {
		return err
	}
	defer key.Zero()

	address := key.Address()
	qr, err := sui.AddressQR(address)
	if err != nil {
		return err
	}

	fmt.Println(address)
	fmt.Println(config.GetNetwork().AddressExplorerURL(address))
	fmt.Print(qr)
	return nil
}

var balanceCommand = cli.Command{
	Name:  "balance",
	Usage: "Query the balance of the saved wallet once.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "devnet, testnet or mainnet; defaults to NETWORK",
		},
		cli.StringFlag{
			Name:  "warn-below",
			Usage: "print a warning when the balance is below this many SUI",
		},
	},
	Action: showBalance,
}

func showBalance(c *cli.Context) error {
	network := config.GetNetwork()
	if c.IsSet("network") {
		n, err := model.ParseNetwork(c.String("network"))
		if err != nil {
			return err
		}
		network = n
	}

	var threshold uint64
	if c.IsSet("warn-below") {
		mist, err := common.SUIToMist(c.String("warn-below"))
		if err != nil {
			return fmt.Errorf("invalid --warn-below: %w", err)
		}
		threshold = mist
	}

	password, err := config.PromptForPassword("Password: ")
	if err != nil {
		return err
	}
	defer clear(password)

	key, err := store().Unlock(password)
	if err != nil {
		return err
	}
	address := key.Address()
	key.Zero()

	ctx, cancel := context.WithTimeout(context.Background(), config.Get().BalanceTimeout)
	defer cancel()

	resp, err := sui.GetBalance(ctx, client.NewSuiClient(config.GetRPCURLs()),
		client.NewCoinGeckoClient(), address, network, config.GetPriceCurrency())
	if err != nil {
		return err
	}

	fmt.Printf("%s on %v\n", resp.Address, resp.Network)
	fmt.Printf("%s SUI (%s MIST)\n", resp.SUI, resp.MIST)
	if resp.Fiat != "" {
		fmt.Printf("%s %s at %s\n", resp.Fiat, resp.Currency, resp.Rate)
	}
	if resp.Error != "" {
		fmt.Fprintln(os.Stderr, resp.Error)
	}

	mist, err := strconv.ParseUint(resp.MIST, 10, 64)
	if err == nil && mist < threshold {
		fmt.Fprintf(os.Stderr, "Balance is below %s\n", common.FormatSUI(threshold))
	}
	return nil
}

var rekeyCommand = cli.Command{
	Name: "rekey",
	Usage: "Change the password and re-encrypt the saved key with the " +
		"configured KDF parameters.",
	Description: "Enter the same password twice to only upgrade the KDF " +
		"parameters. The server must not be running.",
	Action: rekey,
}

func rekey(_ *cli.Context) error {
	oldPassword, err := config.PromptForPassword("Current password: ")
	if err != nil {
		return err
	}
	defer clear(oldPassword)

	newPassword, err := config.PromptForPassword("New password: ")
	if err != nil {
		return err
	}
	defer clear(newPassword)

	confirm, err := config.PromptForPassword("Repeat new password: ")
	if err != nil {
		return err
	}
	defer clear(confirm)

	if string(newPassword) != string(confirm) {
		return errors.New("passwords do not match")
	}
	fmt.Printf("New password strength: %s\n", auth.StrengthLabel(auth.Score(newPassword)))

	rekeyed, err := store().Rekey(oldPassword, newPassword)
	if err != nil {
		return err
	}

	if rekeyed {
		fmt.Println("Password changed and saved wallet re-encrypted")
	} else {
		fmt.Println("Password changed, no saved wallet")
	}
	return nil
}

func store() sui.Store {
	return sui.Store{
		DataDir: config.GetDataDir(),
		Params:  config.GetKDFParams(),
		Policy:  config.GetPasswordPolicy(),
	}
}
