package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// logger carries diagnostics about the tool itself; decoded entries go to
// the command's output.
var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "shpdiag",
	Short: "Reconstruct diagnostics logs from raw hex captures",
	Long: `shpdiag decodes captures of a control processor's diagnostics feed.

Each capture line is a hex-encoded payload in an unknown text encoding.
shpdiag decodes the payloads, strips control noise and reassembles the
fragments into numbered log entries.

Examples:
  shpdiag decode capture.hex
  shpdiag decode --pages project.yaml --format json capture.hex
  shpdiag stats captures/*.hex
  shpdiag follow capture.hex
  shpdiag record 192.168.1.50`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.shpdiag.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("color", "auto", "colorize entries (auto, always, never)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".shpdiag")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SHPDIAG")
	viper.AutomaticEnv()

	setDefaults()

	configureLogger(viper.GetBool("verbose"))

	if err := viper.ReadInConfig(); err == nil {
		logger.WithField("path", viper.ConfigFileUsed()).Debug("using config file")
	}
}

func setDefaults() {
	viper.SetDefault("format", "text")
	viper.SetDefault("verbose", false)
	viper.SetDefault("color", "auto")
	viper.SetDefault("pages_file", "")
	viper.SetDefault("redaction.enabled", false)
	viper.SetDefault("redaction.patterns", []string{"ipv4", "mac_address", "email", "credential"})
	viper.SetDefault("record.port", 1234)
	viper.SetDefault("record.out_dir", ".")
}

func configureLogger(verbose bool) {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
}
