package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/bm25"
	"github.com/engram-cortex/engram/internal/embedtext"
	"github.com/engram-cortex/engram/internal/query"
	"github.com/engram-cortex/engram/internal/vectorindex"
)

var (
	queryMode  string
	queryLimit int
	queryJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query <eql>",
	Short: "Run an Engram Query Language expression against the cortex",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryMode, "mode", "filter", "filter|text|vector|hybrid|activation")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 20, "maximum number of results (0 = unlimited)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "emit JSON instead of plain text")
}

func runQuery(cmd *cobra.Command, args []string) error {
	eql := args[0]
	mode := query.Mode(queryMode)

	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	neuronas, warnings := store.ScanNeuronas()
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}

	eng := &query.Engine{Neuronas: neuronas}

	if mode != query.ModeFilter {
		idx := bm25.NewIndex(cc.Config.BM25.K1, cc.Config.BM25.B)
		for _, n := range neuronas {
			idx.Add(n.ID, bm25.IndexedText(n.Title, n.Tags))
		}
		idx.Build()
		eng.BM25 = idx

		g, err := loadOrBuildGraph(cc, store)
		if err != nil {
			return err
		}
		eng.Graph = g

		vectorsPath := filepath.Join(cc.Dir, ".activations", "vectors.bin")
		if vi, _, err := vectorindex.Load(vectorsPath); err == nil {
			eng.Vectors = vi
		}
		glovePath := cc.Config.Embedding.GlovePath
		if glovePath == "" {
			glovePath = filepath.Join(cc.Dir, ".activations", "cache", "glove_cache.bin")
		}
		if gv, err := embedtext.LoadCache(glovePath); err == nil {
			eng.Embedder = gv
		} else {
			log.Warn("no GloVe cache at %s; vector/hybrid/activation modes degrade", glovePath)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	results, err := query.Execute(ctx, eng, query.Config{Mode: mode, Query: eql, Limit: queryLimit})
	if err != nil {
		return err
	}

	if queryJSON {
		return printJSON(results)
	}
	for _, r := range results {
		fmt.Printf("%-28s %.4f\n", r.ID, r.Score)
	}
	return nil
}
