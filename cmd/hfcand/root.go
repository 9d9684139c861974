package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/hfcand"
	"github.com/hupe1980/hfcand/internal/config"
)

// app is the state shared by the subcommands once the configuration is
// loaded.
type app struct {
	v        *viper.Viper
	cfgFile  string
	bindings map[*cobra.Command]map[string]string
	cfg      *config.Config
	logger   *hfcand.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper(), bindings: map[*cobra.Command]map[string]string{}}

	root := &cobra.Command{
		Use:   "hfcand",
		Short: "Heavy-flavour cascade candidate creator",
		Long: `hfcand combines pre-selected J/ψ composites with additional tracks,
fits each pair to a common secondary vertex and publishes the resulting
χc candidates, optionally with Monte Carlo truth labels.

Configuration is read from --config (YAML), HFCAND_* environment variables
and command-line flags, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			for flag, key := range a.bindings[cmd] {
				if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Logger()
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newRunCmd(a), newSimulateCmd(a), newVersionCmd())
	return root
}

// bind maps flag names of cmd to configuration keys. Bindings are applied
// only for the command that runs, so subcommands may share keys.
func (a *app) bind(cmd *cobra.Command, keys map[string]string) {
	a.bindings[cmd] = keys
}
