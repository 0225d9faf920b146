// Command rank builds the analyzers over a corpus once and prints the
// highest-ranked pages, or the best hits for a query with -q. With -export
// it instead copies a corpus directory into a bolt file that -bolt (or the
// searcher's bolt source) can load.
//
// Usage:
//
//	go run ./cmd/rank -dir ./corpus [-n 10] [-q "query words"]
//	go run ./cmd/rank -dir ./corpus -export corpus.db
//	go run ./cmd/rank -bolt corpus.db -q "query words"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/analyzers/pagerank"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/internal/search"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/logger"
)

func main() {
	defaults := config.Default().Rank
	dir := flag.String("dir", "./corpus", "corpus directory of .yaml/.yml/.json documents")
	boltPath := flag.String("bolt", "", "load the corpus from this bolt file instead of -dir")
	export := flag.String("export", "", "write the -dir corpus to this bolt file and exit")
	n := flag.Int("n", 10, "number of pages to print")
	query := flag.String("q", "", "rank hits for this query instead of by PageRank alone")
	decay := flag.Float64("decay", defaults.Decay, "PageRank decay")
	epsilon := flag.Float64("epsilon", defaults.Epsilon, "PageRank convergence threshold")
	limit := flag.Int("limit", defaults.Limit, "PageRank iteration limit")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "text")

	if *export != "" {
		n, err := exportBolt(context.Background(), corpus.NewDirSource(*dir), *export)
		if err != nil {
			slog.Error("export failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("exported %d documents to %s\n", n, *export)
		return
	}

	var source corpus.Source = corpus.NewDirSource(*dir)
	if *boltPath != "" {
		source = corpus.NewBoltSource(*boltPath)
	}
	engine := search.NewEngine(source, search.Options{
		Rank: pagerank.Params{Decay: *decay, Epsilon: *epsilon, Limit: *limit},
	})
	if err := run(context.Background(), os.Stdout, engine, *query, *n); err != nil {
		slog.Error("rank failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, engine *search.Engine, query string, n int) error {
	snap, err := engine.Reload(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d pages, %d pagerank iterations (converged: %t)\n\n",
		len(snap.URIs), snap.PageRank.Iterations(), snap.PageRank.Converged())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if query == "" {
		hits, err := engine.TopRanked(n)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "RANK\tPAGERANK\tURI")
		for i, h := range hits {
			fmt.Fprintf(tw, "%d\t%.6f\t%s\n", i+1, h.PageRank, h.URI)
		}
		return nil
	}

	res, err := engine.Search(ctx, query, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(tw, "query %q -> terms %v, %d matching pages\n", query, res.Terms, res.TotalHits)
	fmt.Fprintln(tw, "RANK\tSCORE\tRELEVANCE\tPAGERANK\tURI")
	for i, h := range res.Hits {
		fmt.Fprintf(tw, "%d\t%.6f\t%.4f\t%.6f\t%s\n", i+1, h.Score, h.Relevance, h.PageRank, h.URI)
	}
	return nil
}

// exportBolt validates the directory corpus and then stores its documents.
func exportBolt(ctx context.Context, src *corpus.DirSource, path string) (int, error) {
	docs, err := src.Documents(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := corpus.Build(docs); err != nil {
		return 0, err
	}
	if err := corpus.WriteBolt(path, corpus.DefaultBoltBucket, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
