package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aarant/nescient"
)

func newPackCmd() *cobra.Command {
	var (
		outPath   string
		tripleStr string
		noRecurse bool
		noPrompt  bool
		noDelete  bool
	)

	cmd := &cobra.Command{
		Use:   "pack <paths...>",
		Short: "Pack one or more files into Nescient containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("mode") && cfg != nil && cfg.Triple != "" {
				tripleStr = cfg.Triple
			}
			triple, err := nescient.ParseTripleString(tripleStr)
			if err != nil {
				return err
			}
			paths, err := expandPaths(args, !noRecurse)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no file(s) found with the path(s) specified")
			}

			password, err := promptPassword(!noPrompt)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var failures int
			for _, path := range paths {
				out, err := resolveOutPath(path, outPath, true, len(paths) > 1)
				if err != nil {
					return err
				}
				fmt.Printf("%s > %s\n", path, out)
				start := time.Now()
				err = nescient.PackFile(ctx, path, out, password, triple, !noDelete)
				status := "ok"
				if err != nil {
					status = "error"
					failures++
					fmt.Printf("  error: %v\n", err)
					log.Error().Err(err).Str("path", path).Msg("pack failed")
				}
				if globalMetrics != nil {
					globalMetrics.RecordOperation("pack", string(triple.Alg), string(triple.Mode), string(triple.Auth), status, time.Since(start).Seconds(), 0)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d file(s) failed to pack", failures, len(paths))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path or directory")
	cmd.Flags().StringVarP(&tripleStr, "mode", "m", "chacha-stm-sha", "algorithm-mode-auth triple")
	cmd.Flags().BoolVar(&noRecurse, "nr", false, "don't recurse into directories given as input paths")
	cmd.Flags().BoolVar(&noPrompt, "np", false, "don't prompt for password confirmation")
	cmd.Flags().BoolVar(&noDelete, "nd", false, "don't overwrite an existing output file")
	return cmd
}
