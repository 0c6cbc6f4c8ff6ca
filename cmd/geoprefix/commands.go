package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/geoprefix"
	"github.com/hupe1980/geoprefix/codec"
	"github.com/hupe1980/geoprefix/query"
	"github.com/hupe1980/geoprefix/termindex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultSnapshot = "index.gpti"

func (a *app) writeJSON(v any) error {
	b, err := codec.GoJSON{}.Append(nil, v)
	if err != nil {
		return err
	}
	_, err = a.out.Write(append(b, '\n'))
	return err
}

func (a *app) searchOptions() []geoprefix.SearchOption {
	var opts []geoprefix.SearchOption
	if a.conf.IsSet("precision") && a.conf.GetFloat64("precision") >= 0 {
		opts = append(opts, geoprefix.WithPrecision(a.conf.GetFloat64("precision")))
	}
	if l := a.conf.GetInt("detail-level"); l > 0 {
		opts = append(opts, geoprefix.WithDetailLevel(l))
	}
	return opts
}

func addSearchFlags(flags *pflag.FlagSet) {
	flags.Float64("precision", -1, "Override the distance error fraction for the query shape")
	flags.Int("detail-level", 0, "Pin the detail level of the query shape")
}

func newTokensCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens SHAPE",
		Short: "Print the cell tokens a shape is indexed with",
		Long: `Print the cell tokens a shape is indexed with.

SHAPE is "x,y", "minX,minY,maxX,maxY", a GeoJSON geometry, @FILE or - for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := parseShape(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			opts, err := a.indexOptions()
			if err != nil {
				return err
			}
			ix, err := geoprefix.New(opts...)
			if err != nil {
				return err
			}
			defer ix.Close()

			if a.conf.GetBool("terms") {
				terms, err := ix.Terms(sh, a.searchOptions()...)
				if err != nil {
					return err
				}
				if a.conf.GetBool("json") {
					return a.writeJSON(terms)
				}
				_, err = fmt.Fprintln(a.out, strings.Join(terms, "\n"))
				return err
			}

			ts, err := ix.Tokens(sh, a.searchOptions()...)
			if err != nil {
				return err
			}
			if a.conf.GetBool("json") {
				return a.writeJSON(ts)
			}
			for _, tok := range ts.Tokens {
				marker := ""
				switch {
				case tok.Leaf:
					marker = " leaf"
				case tok.Terminal:
					marker = " edge"
				}
				fmt.Fprintf(a.out, "%s%s\n", tok.Value, marker)
			}
			fmt.Fprintf(a.out, "# level %d, %d tokens\n", ts.Level, len(ts.Tokens))
			return nil
		},
	}
	cmd.Flags().Bool("terms", false, "Print encoded index terms instead of tokens")
	addSearchFlags(cmd.Flags())
	return cmd
}

func newExplainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain SHAPE",
		Short: "Print the term query a search compiles to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := geoprefix.ParseRelation(a.conf.GetString("relation"))
			if err != nil {
				return err
			}
			sh, err := parseShape(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			opts, err := a.indexOptions()
			if err != nil {
				return err
			}
			ix, err := geoprefix.New(opts...)
			if err != nil {
				return err
			}
			defer ix.Close()

			q, err := ix.Compile(rel, sh, a.searchOptions()...)
			if err != nil {
				return err
			}
			if a.conf.GetBool("json") {
				return a.writeJSON(map[string]any{
					"relation": rel,
					"stats":    query.Describe(q),
					"query":    query.Tree(q),
				})
			}
			st := query.Describe(q)
			fmt.Fprintln(a.out, q)
			fmt.Fprintf(a.out, "# %d nodes, %d terms, %d prefixes\n", st.Nodes, st.Terms, st.Prefixes)
			return nil
		},
	}
	cmd.Flags().String("relation", "intersects", "Relation, one of [intersects, disjoint, contains, within]")
	addSearchFlags(cmd.Flags())
	return cmd
}

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index FILE...",
		Short: "Index GeoJSON features into a snapshot",
		Long: `Index GeoJSON features into a snapshot.

Each FILE holds a FeatureCollection, a Feature or a bare geometry; - reads stdin.
Features without an id are given a random UUID.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			compression, err := termindex.ParseCompression(a.conf.GetString("compression"))
			if err != nil {
				return err
			}
			docs, err := readDocuments(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore(ctx, a.conf.GetString("store"))
			if err != nil {
				return err
			}
			defer closeStore()

			name := a.conf.GetString("name")
			var ix *geoprefix.Index
			if a.conf.GetBool("append") {
				var opts []geoprefix.Option
				if opts, err = a.loadOptions(cmd); err == nil {
					ix, err = geoprefix.Load(ctx, store, name, append(opts, geoprefix.WithCompression(compression))...)
				}
			} else {
				var opts []geoprefix.Option
				if opts, err = a.indexOptions(); err == nil {
					ix, err = geoprefix.New(append(opts,
						geoprefix.WithCompression(compression),
						geoprefix.WithBatchConcurrency(a.conf.GetInt("concurrency")),
					)...)
				}
			}
			if err != nil {
				return err
			}
			defer ix.Close()

			res := ix.IndexBatch(ctx, docs)
			for i, err := range res.Errors {
				if err != nil {
					a.logger.Warn("skipping feature", "id", docs[i].ID, "error", err)
				}
			}
			if err := ix.Save(ctx, store, name); err != nil {
				return err
			}

			stats := ix.Stats()
			if a.conf.GetBool("json") {
				return a.writeJSON(map[string]any{
					"indexed": len(res.IDs),
					"failed":  res.Failed(),
					"stats":   stats,
				})
			}
			fmt.Fprintf(a.out, "indexed %s features (%d failed) into %s: %s terms, %s postings, %s\n",
				humanize.Comma(int64(len(res.IDs))), res.Failed(), name,
				humanize.Comma(int64(stats.Terms)), humanize.Comma(int64(stats.Postings)),
				humanize.Bytes(stats.Bytes))
			return nil
		},
	}
	cmd.Flags().String("name", defaultSnapshot, "Snapshot name in the store")
	cmd.Flags().String("compression", "zstd", "Snapshot compression, one of [none, lz4, zstd]")
	cmd.Flags().Int("concurrency", geoprefix.DefaultBatchConcurrency, "Shapes decomposed in parallel")
	cmd.Flags().Bool("append", false, "Add to an existing snapshot instead of replacing it")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search SHAPE",
		Short: "Search a snapshot for documents related to a shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rel, err := geoprefix.ParseRelation(a.conf.GetString("relation"))
			if err != nil {
				return err
			}
			sh, err := parseShape(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			opts, err := a.loadOptions(cmd)
			if err != nil {
				return err
			}
			store, closeStore, err := a.openStore(ctx, a.conf.GetString("store"))
			if err != nil {
				return err
			}
			defer closeStore()

			ix, err := geoprefix.Load(ctx, store, a.conf.GetString("name"), opts...)
			if err != nil {
				return err
			}
			defer ix.Close()

			if a.conf.GetBool("count") {
				n, err := ix.Count(ctx, rel, sh, a.searchOptions()...)
				if err != nil {
					return err
				}
				if a.conf.GetBool("json") {
					return a.writeJSON(map[string]int{"count": n})
				}
				_, err = fmt.Fprintln(a.out, n)
				return err
			}

			ids, err := ix.Search(ctx, rel, sh, a.searchOptions()...)
			if err != nil {
				return err
			}
			if a.conf.GetBool("json") {
				return a.writeJSON(ids)
			}
			for _, id := range ids {
				fmt.Fprintln(a.out, id)
			}
			return nil
		},
	}
	cmd.Flags().String("name", defaultSnapshot, "Snapshot name in the store")
	cmd.Flags().String("relation", "intersects", "Relation, one of [intersects, disjoint, contains, within]")
	cmd.Flags().Bool("count", false, "Print the number of matches only")
	addSearchFlags(cmd.Flags())
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print snapshot statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts, err := a.loadOptions(cmd)
			if err != nil {
				return err
			}
			store, closeStore, err := a.openStore(ctx, a.conf.GetString("store"))
			if err != nil {
				return err
			}
			defer closeStore()

			ix, err := geoprefix.Load(ctx, store, a.conf.GetString("name"), opts...)
			if err != nil {
				return err
			}
			defer ix.Close()

			stats := ix.Stats()
			if a.conf.GetBool("json") {
				return a.writeJSON(stats)
			}
			fmt.Fprintf(a.out, "settings:  %s\n", stats.Settings)
			fmt.Fprintf(a.out, "documents: %s\n", humanize.Comma(int64(stats.Docs)))
			fmt.Fprintf(a.out, "terms:     %s\n", humanize.Comma(int64(stats.Terms)))
			fmt.Fprintf(a.out, "postings:  %s\n", humanize.Comma(int64(stats.Postings)))
			fmt.Fprintf(a.out, "memory:    %s\n", humanize.Bytes(stats.Bytes))
			return nil
		},
	}
	cmd.Flags().String("name", defaultSnapshot, "Snapshot name in the store")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [PREFIX]",
		Short: "List snapshots in the store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := a.openStore(ctx, a.conf.GetString("store"))
			if err != nil {
				return err
			}
			defer closeStore()

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			names, err := store.List(ctx, prefix)
			if err != nil {
				return err
			}
			if a.conf.GetBool("json") {
				return a.writeJSON(names)
			}
			for _, n := range names {
				fmt.Fprintln(a.out, n)
			}
			return nil
		},
	}
}
