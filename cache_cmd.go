package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/anthozoa/anthozoa/internal/config"
	"github.com/anthozoa/anthozoa/internal/offline"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune offline cache generations",
		Args:  cobra.NoArgs,
	}

	cacheLsCmd = &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List cache generations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(func(cfg config.OfflineConfig, s offline.Storage) error {
				return listGenerations(cmd.Context(), cmd.OutOrStdout(), s, cfg.CacheName())
			})
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear [name...]",
		Short: "Delete cache generations",
		Long:  paragraph(fmt.Sprintf("\n%s the named cache generations, or all of them when no name is given.", keyword("Delete"))),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(func(_ config.OfflineConfig, s offline.Storage) error {
				return clearGenerations(cmd.Context(), cmd.OutOrStdout(), s, args)
			})
		},
	}

	cacheInstallCmd = &cobra.Command{
		Use:   "install",
		Short: "Prefetch the assets into the current generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(func(cfg config.OfflineConfig, s offline.Storage) error {
				w, err := newWorker(cfg, s)
				if err != nil {
					return err
				}
				report, err := install(cmd.Context(), w)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cached %d of %d assets in %s\n",
					len(report.Cached), len(w.Assets()), keyword(report.Cache))
				return nil
			})
		},
	}
)

func withStorage(fn func(config.OfflineConfig, offline.Storage) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStorage(cfg.Offline)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(cfg.Offline, s)
}

// listGenerations prints one line per generation with its entry count and
// body size. The current generation is highlighted.
func listGenerations(ctx context.Context, out io.Writer, s offline.Storage, current string) error {
	names, err := s.Names(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(out, faint("no cache generations"))
		return nil
	}
	for _, name := range names {
		c, err := s.Open(ctx, name)
		if err != nil {
			return err
		}
		keys, err := c.Keys(ctx)
		if err != nil {
			return err
		}
		var size uint64
		for _, k := range keys {
			e, err := c.Match(ctx, k)
			if err != nil {
				continue
			}
			size += uint64(len(e.Body))
		}

		label := name
		if name == current {
			label = keyword(name)
		}
		detail := fmt.Sprintf("%d entries, %s", len(keys), humanize.Bytes(size))
		if ds, ok := s.(*offline.DiskStorage); ok {
			if st, ok := ds.Stats()[name]; ok {
				detail += fmt.Sprintf(", %s on disk", humanize.Bytes(uint64(max(st.L2.Size, 0))))
			}
		}
		fmt.Fprintf(out, "%s  %s\n", label, faint(detail))
	}
	return nil
}

// clearGenerations deletes the named generations, or all when names is
// empty.
func clearGenerations(ctx context.Context, out io.Writer, s offline.Storage, names []string) error {
	if len(names) == 0 {
		all, err := s.Names(ctx)
		if err != nil {
			return err
		}
		names = all
	}
	var missing []string
	for _, name := range slices.Compact(slices.Sorted(slices.Values(names))) {
		ok, err := s.Delete(ctx, name)
		if err != nil {
			return fmt.Errorf("unable to delete %s: %w", name, err)
		}
		if !ok {
			missing = append(missing, name)
			continue
		}
		fmt.Fprintln(out, "Deleted", name)
	}
	if len(missing) > 0 {
		return fmt.Errorf("no such cache: %s", strings.Join(missing, ", "))
	}
	return nil
}

func init() {
	cacheCmd.AddCommand(cacheLsCmd, cacheClearCmd, cacheInstallCmd)
}
