// Command smtfront is the CLI front end, kept deliberately thin: it reads
// one or more SMT-LIB v2 scripts, opening them concurrently via an
// errgroup, then runs each through smtfront.Parse sequentially, since the
// parser itself is single-threaded by design.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/nilforge/smtfront"
	"github.com/nilforge/smtfront/backend/refbackend"
)

func main() {
	var (
		printSuccess = flag.Bool("print-success", true, "print 'success' after every command")
		incremental  = flag.Bool("incremental", false, "enable check-sat-assuming")
		verbose      = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	contents := make([][]byte, len(paths))
	grp, _ := errgroup.WithContext(context.Background())
	for i, p := range paths {
		i, p := i, p
		grp.Go(func() error {
			data, err := readInput(p)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			contents[i] = data
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	exit := 0
	for i, p := range paths {
		opts := smtfront.NewOptions()
		opts.PrintSuccess = *printSuccess
		opts.Incremental = *incremental

		be := refbackend.New()
		result, err := smtfront.Parse(be, nil, bytes.NewReader(contents[i]), p, os.Stdout, opts, log)
		log.Info("parsed", "input", p, "logic", result.Logic, "status", result.Status, "nsatcalls", result.NSatCalls)
		if err != nil {
			exit = 1
		}
	}
	os.Exit(exit)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
