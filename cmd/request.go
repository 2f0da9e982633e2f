package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/kdwils/eth-faucet-web/config"
	"github.com/kdwils/eth-faucet-web/faucet"
	"github.com/kdwils/eth-faucet-web/form"
	"github.com/kdwils/eth-faucet-web/logger"
	"github.com/kdwils/eth-faucet-web/pkg/captcha"
	"github.com/kdwils/eth-faucet-web/pkg/remote"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// requestCmd sends a single funding request, for checking a deployment with
// provider test keys.
var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "request funds for an address",
	Long:  `request funds for an address using a fixed captcha token`,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatal(err)
		}
		if err := c.Validate(); err != nil {
			log.Fatal(err)
		}

		address, _ := cmd.Flags().GetString("address")

		slogger := logger.New(os.Stderr, c.LogLevel)
		ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context(), slogger), c.Faucet.Timeout)
		defer cancel()

		provider, err := captcha.ProviderFor(c.Captcha.Provider)
		if err != nil {
			log.Fatal(err)
		}
		widget := captcha.NewWidget(provider, c.Captcha.SiteKey, captcha.StaticSource(c.Captcha.Token), captcha.WithoutScriptCheck())
		if err := widget.Load(ctx); err != nil {
			log.Fatal(err)
		}

		service := faucet.NewService(c.Environment(), widget, remote.New(&http.Client{Timeout: c.Faucet.Timeout}))
		resp, err := service.RequestFunds(ctx, address)
		if err != nil {
			slogger.Error("funding request failed", "error", err, "kind", faucet.ErrorKind(err).String())
			fmt.Fprintln(cmd.ErrOrStderr(), "ERROR:", form.Message(err))
			os.Exit(1)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Funded with", faucet.FormatAmount(resp.Amount, c.Faucet.AmountUnit, c.Faucet.Currency))
		fmt.Fprintln(out, "Transaction:", resp.TransactionHash)
		if link := faucet.TransactionURL(c.Faucet.ExplorerURL, resp.TransactionHash); link != "" {
			fmt.Fprintln(out, "Explorer:", link)
		}
	},
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().String("address", "", "wallet address to fund")
	requestCmd.Flags().String("captcha-token", "", "captcha response to send, for provider test keys")
	requestCmd.MarkFlagRequired("address")
	viper.BindPFlag("captcha.token", requestCmd.Flags().Lookup("captcha-token"))
}
