package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aopsample/exectime/internal/config"
	"github.com/aopsample/exectime/pkg/logging"
)

var (
	cfgFile string
	v       = viper.New()
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "exectime",
	Short: "Order service with execution time measurement",
	Long: `exectime runs a simulated order service whose ProcessOrder operation is
wrapped by an execution timer. Every call logs "<operation> executed in <n>ms"
and is exported as Prometheus metrics and trace events.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./exectime.yaml or $HOME/.exectime/exectime.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")

	bindFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// bindFlag makes a flag override the config key when set on the command line
func bindFlag(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// newLogger builds the process logger from the log config
func newLogger(lc config.LogConfig, component string) (*logging.Logger, error) {
	level := logging.ParseLevel(lc.Level)
	jsonFormat := lc.Format == "json"

	if lc.Dir == "" {
		return logging.NewLogger(level, jsonFormat), nil
	}
	return logging.NewFileLogger(lc.Dir, component, level, jsonFormat)
}
