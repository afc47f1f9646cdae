package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"

	noColor bool

	// Colors
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wash",
	Short: "wash - a shell for the waSCC ecosystem",
	Long: `wash is a single CLI for waSCC tooling. Its reg commands pull and
push signed actor modules and capability provider archives against OCI
compliant registries.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
	SilenceUsage: true,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version information
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newRegCmd(),
	)
}

// initConfig wires the environment-sourced defaults. They apply only when
// the corresponding flag is absent.
func initConfig() {
	viper.SetEnvPrefix("WASH")
	viper.AutomaticEnv()

	_ = viper.BindEnv("reg.user", "WASH_REG_USER")
	_ = viper.BindEnv("reg.password", "WASH_REG_PASSWORD")
}

// Helper functions for consistent output

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successColor.Sprintf("✓ "+format, args...))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, errorColor.Sprintf("✗ "+format, args...))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(infoColor.Sprintf("ℹ "+format, args...))
}
