package cmd

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// version is set at build time.
var version = "dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "faucet",
	Short:   "A web front-end for an Ethereum testnet faucet",
	Long:    "A web front-end for an Ethereum testnet faucet. It serves the request form, runs the captcha challenge and forwards funding requests to the faucet API.",
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (json or yaml)")
	rootCmd.PersistentFlags().String("api-endpoint", "", "base url of the faucet api")
	viper.BindPFlag("faucet.apiEndpoint", rootCmd.PersistentFlags().Lookup("api-endpoint"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetEnvPrefix("FAUCET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("trustedProxies", []string{})
	viper.SetDefault("logLevel", slog.LevelInfo.String())

	viper.SetDefault("server.httpPort", 8080)
	viper.SetDefault("server.grpcPort", 8081)
	viper.SetDefault("server.scheme", "http")
	viper.SetDefault("server.allowedOrigins", []string{})

	viper.SetDefault("faucet.apiEndpoint", "")
	viper.SetDefault("faucet.explorerURL", "https://goerli.etherscan.io")
	viper.SetDefault("faucet.timeout", time.Second*30)
	viper.SetDefault("faucet.amountUnit", "eth")
	viper.SetDefault("faucet.currency", "ETH")

	viper.SetDefault("captcha.provider", "recaptcha")
	viper.SetDefault("captcha.siteKey", "")
	viper.SetDefault("captcha.checkScript", true)
	viper.SetDefault("captcha.timeout", time.Second*10)
	viper.SetDefault("captcha.token", "")

	viper.SetDefault("session.signingKey", "")
	viper.SetDefault("session.duration", time.Hour*3)
	viper.SetDefault("session.cookieName", "faucet_session")
	viper.SetDefault("session.cookieDomain", "")

	viper.SetDefault("ui.title", "ETH Testnet Faucet")
	viper.SetDefault("ui.repositoryURL", "")
	viper.SetDefault("ui.notificationDuration", time.Second*3)

	viper.SetDefault("rateLimit.rps", 10)
	viper.SetDefault("rateLimit.burst", 20)
}
