// Command ndtctl generates tech cards and runs quality assessments from the
// terminal using the same services as the web app.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/ndtmaster-backend/internal/app"
)

var rootCmd = &cobra.Command{
	Use:           "ndtctl",
	Short:         "NDT Master command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `ndtctl drives the NDT Master services without the web UI: generate a tech
card from a YAML form and export it as PDF or DOCX, assess weld quality from
a list of defects, list the built-in form templates.

Configuration is read the same way as the server: environment variables,
optionally overlaid by ndtmaster.yaml or the file passed with --config.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ndtmaster.yaml)")
	rootCmd.PersistentFlags().String("log-mode", "", "logger mode: development or production")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log_mode", rootCmd.PersistentFlags().Lookup("log-mode"))
}

func initConfig() {
	viper.SetEnvPrefix("NDTCTL")
	viper.AutomaticEnv()
}

// newApp builds the service graph. The caller must Close it.
func newApp(ctx context.Context) (*app.App, error) {
	mode := viper.GetString("log_mode")
	if mode == "" {
		mode = "production"
	}
	return app.NewWithOptions(ctx, app.Options{
		ConfigFile: viper.GetString("config"),
		LogMode:    mode,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
