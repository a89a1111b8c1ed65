package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bgdnvk/hrassist/internal/config"
)

var cfgFile string

// version is overridden at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hrassist",
	Short: "HR assistant chatbot engine",
	Long: `hrassist answers employee questions about leave, attendance, payslips,
holidays and company policies. It runs as an HTTP service for the HR portal,
as an MCP tool server, or as a one-shot CLI.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hrassist.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output (shows matching diagnostics and debug logs)")
	rootCmd.PersistentFlags().String("db-driver", "", "learning database driver: sqlite, mysql or postgres (or set HRASSIST_DATABASE_DRIVER)")
	rootCmd.PersistentFlags().String("db-dsn", "", "learning database DSN (or set HRASSIST_DATABASE_DSN)")

	// TODO: add error return here
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("db-dsn"))

	config.SetDefaults(viper.GetViper())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hrassist")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("debug") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
