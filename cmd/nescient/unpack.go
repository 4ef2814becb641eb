package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aarant/nescient"
)

func newUnpackCmd() *cobra.Command {
	var (
		outPath   string
		noRecurse bool
		noPrompt  bool
		noDelete  bool
	)

	cmd := &cobra.Command{
		Use:   "unpack <paths...>",
		Short: "Unpack one or more Nescient containers back into plaintext",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPaths(args, !noRecurse)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no file(s) found with the path(s) specified")
			}

			password, err := promptPassword(false)
			if err != nil {
				return err
			}
			_ = noPrompt // unpack never confirms; flag kept for CLI-surface symmetry with pack

			ctx := cmd.Context()
			var failures int
			for _, path := range paths {
				out, err := resolveOutPath(path, outPath, false, len(paths) > 1)
				if err != nil {
					return err
				}
				fmt.Printf("%s > %s\n", path, out)

				alg, mode, auth := "unknown", "unknown", "unknown"
				if prefix, parseErr := openPrefixBytes(path); parseErr == nil {
					if h, headerErr := nescient.ParseHeader(prefix); headerErr == nil {
						alg, mode, auth = string(h.Triple.Alg), string(h.Triple.Mode), string(h.Triple.Auth)
					}
				}

				start := time.Now()
				err = nescient.UnpackFile(ctx, path, out, password, !noDelete)
				status := "ok"
				if err != nil {
					status = "error"
					failures++
					fmt.Printf("  error: %v\n", err)
					log.Error().Err(err).Str("path", path).Msg("unpack failed")
				}
				if globalMetrics != nil {
					globalMetrics.RecordOperation("unpack", alg, mode, auth, status, time.Since(start).Seconds(), 0)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d file(s) failed to unpack", failures, len(paths))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path or directory")
	cmd.Flags().BoolVar(&noRecurse, "nr", false, "don't recurse into directories given as input paths")
	cmd.Flags().BoolVar(&noPrompt, "np", false, "don't prompt (unpacking only ever reads a single password line)")
	cmd.Flags().BoolVar(&noDelete, "nd", false, "don't overwrite an existing output file")
	return cmd
}
