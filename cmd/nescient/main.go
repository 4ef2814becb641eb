// Command nescient packs and unpacks Nescient containers from the command
// line: encrypted, salted, and authenticated single- or multi-file
// archives.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aarant/nescient/internal/config"
)

var (
	cfgFile     string
	globalFlags *pflag.FlagSet
	cfg         *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nescient",
		Short: "Pack and unpack encrypted, salted, and authenticated file containers",
		Long: `Nescient packs files into encrypted, salted, and authenticated
containers, and unpacks them back into plaintext. It supports AES (ECB and
CBC mode) and ChaCha20, all under an encrypt-then-MAC construction with
HMAC-SHA256.`,
		SilenceUsage: true,
	}

	globalFlags = root.PersistentFlags()
	globalFlags.StringVar(&cfgFile, "config", "", "path to a config file (default: nescient.yaml in . or $HOME)")
	config.RegisterFlags(globalFlags)

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(globalFlags, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		globalMetrics = initMetrics(cfg.MetricsAddr)
		return nil
	}

	root.AddCommand(newPackCmd())
	root.AddCommand(newUnpackCmd())
	root.AddCommand(newInfoCmd())
	return root
}
