package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aarant/nescient"
	"github.com/aarant/nescient/internal/cache/memory"
	"github.com/aarant/nescient/internal/cache/sqlite"
	"github.com/aarant/nescient/internal/repository"
)

// headerInfo is the non-secret, cacheable slice of a container's header,
// keyed by input path in the info command's bulk-scan cache.
type headerInfo struct {
	Triple  string `json:"triple"`
	ModTime int64  `json:"mod_time"`
	Size    int64  `json:"size"`
}

func newInfoCmd() *cobra.Command {
	var noRecurse bool

	cmd := &cobra.Command{
		Use:   "info <paths...>",
		Short: "Print the header metadata of one or more Nescient containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPaths(args, !noRecurse)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no file(s) found with the path(s) specified")
			}

			c, err := openHeaderCache()
			if err != nil {
				return err
			}
			defer c.Stop()

			ctx := cmd.Context()
			for _, path := range paths {
				info, err := describeContainer(ctx, c, path)
				if err != nil {
					fmt.Printf("%s: error: %v\n", path, err)
					continue
				}
				fmt.Printf("%s: %s (%d bytes)\n", path, info.Triple, info.Size)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRecurse, "nr", false, "don't recurse into directories given as input paths")
	return cmd
}

// openHeaderCache opens the configured cache backend (memory or sqlite).
func openHeaderCache() (repository.Cache, error) {
	switch cfg.CacheBackend {
	case "sqlite":
		path := cfg.CachePath
		if path == "" {
			path = "nescient-cache.db"
		}
		return sqlite.NewCache(path)
	default:
		return memory.NewCache(), nil
	}
}

// describeContainer returns path's header metadata, consulting the cache
// first and falling back to parsing the file's PrefixSize-byte prefix. A
// cache entry is only trusted while the file's size and modification time
// match what was cached.
func describeContainer(ctx context.Context, c repository.Cache, path string) (headerInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return headerInfo{}, err
	}

	if cached, err := c.Get(ctx, path); err == nil {
		var info headerInfo
		if err := json.Unmarshal(cached, &info); err == nil &&
			info.ModTime == stat.ModTime().Unix() && info.Size == stat.Size() {
			if globalMetrics != nil {
				globalMetrics.RecordCacheAccess(cfg.CacheBackend, true)
			}
			return info, nil
		}
	}
	if globalMetrics != nil {
		globalMetrics.RecordCacheAccess(cfg.CacheBackend, false)
	}

	prefix, err := openPrefixBytes(path)
	if err != nil {
		return headerInfo{}, err
	}
	h, err := nescient.ParseHeader(prefix)
	if err != nil {
		return headerInfo{}, err
	}

	info := headerInfo{
		Triple:  h.Triple.String(),
		ModTime: stat.ModTime().Unix(),
		Size:    stat.Size(),
	}
	if encoded, err := json.Marshal(info); err == nil {
		_ = c.Set(ctx, path, encoded, time.Hour)
	}
	return info, nil
}
