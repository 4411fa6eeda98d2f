// internal/commands/root.go
package medbench

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/medbench/internal/appconfig"
	"github.com/mwiater/medbench/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "medbench",
	Short: "medbench — confidence-gated medical benchmark runner for Ollama models",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		fileLoaded, err := ensureConfigLoaded()
		if err != nil {
			return err
		}

		var cfg appconfig.Config
		if fileLoaded {
			for _, name := range []string{"debug", "tui"} {
				if !cmd.Flags().Changed(name) {
					val := viper.GetBool(name)
					_ = cmd.Flags().Set(name, strconv.FormatBool(val))
				}
			}
			for _, name := range []string{"hostUrl", "model", "logFile"} {
				if !cmd.Flags().Changed(name) {
					_ = cmd.Flags().Set(name, viper.GetString(name))
				}
			}
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("unmarshal config: %w", err)
			}
			cfg.ConfigPath = viper.ConfigFileUsed()
			if t := cfg.ConfidenceThreshold; t != nil && (*t < 0 || *t > 1) {
				return fmt.Errorf("confidenceThreshold %v out of range [0,1]", *t)
			}
		} else {
			// nothing at the configured path; search the legacy location,
			// which also validates hostUrl and model
			legacy, lerr := appconfig.Load(cfgFile)
			switch {
			case lerr == nil:
				cfg = legacy
			case errors.Is(lerr, appconfig.ErrNoConfig):
				// flags alone may still carry everything a command needs
			default:
				return lerr
			}
			applyFlagOverrides(cmd, &cfg)
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if currentConfig.Debug {
			pp.Println(currentConfig)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.json", "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("tui", false, "render live progress in a terminal UI")
	rootCmd.PersistentFlags().String("hostUrl", "", "Ollama endpoint URL (e.g., http://localhost:11434)")
	rootCmd.PersistentFlags().String("model", "", "model tag to benchmark (e.g., meditron:7b)")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("tui", rootCmd.PersistentFlags().Lookup("tui"))
	_ = viper.BindPFlag("hostUrl", rootCmd.PersistentFlags().Lookup("hostUrl"))
	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config into viper and reports whether a
// file was actually found; a missing file is not an error here.
func ensureConfigLoaded() (bool, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load config: %w", err)
	}
	return true, nil
}

// applyFlagOverrides lays user-set flags over a config that did not come
// through viper.
func applyFlagOverrides(cmd *cobra.Command, cfg *appconfig.Config) {
	f := cmd.Flags()
	if f.Changed("hostUrl") {
		cfg.HostURL, _ = f.GetString("hostUrl")
	}
	if f.Changed("model") {
		cfg.Model, _ = f.GetString("model")
	}
	if f.Changed("logFile") {
		cfg.LogFile, _ = f.GetString("logFile")
	}
	if f.Changed("debug") {
		cfg.Debug, _ = f.GetBool("debug")
	}
	if f.Changed("tui") {
		cfg.TUI, _ = f.GetBool("tui")
	}
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// TUIEnabled returns true if the terminal UI is enabled.
func TUIEnabled() bool { return viper.GetBool("tui") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
