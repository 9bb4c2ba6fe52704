package cmd

import (
	"strings"

	"github.com/Iron-Ham/devflow/internal/config"
	"github.com/Iron-Ham/devflow/internal/project"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the devflow command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "devflow",
		Short: "Run git and Xcode workflows for configured projects",
		Long: `devflow runs routine development operations (clean slate, save, update,
build, test, run, reset) against projects listed in a projects file, either
one at a time, as letter sequences such as "cbtr", or as named custom commands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			return nil
		},
	}

	// Global flags
	root.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/devflow/config.yaml)")
	root.PersistentFlags().BoolP("yes", "y", false, "answer yes to every confirmation and never prompt")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("interaction.assume_yes", root.PersistentFlags().Lookup("yes"))

	root.AddCommand(newProjectsCmd())
	root.AddCommand(newCommandsCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newDoCmd())
	root.AddCommand(newChangesetCmd())
	for _, kind := range project.Kinds() {
		root.AddCommand(newOperationCmd(kind))
	}
	return root
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DEVFLOW")
	// e.g., DEVFLOW_BUILD_FALLBACK_SIMULATOR for build.fallback_simulator
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
