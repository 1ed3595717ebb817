// Command shorten creates a short link through the website API, the same way
// the link form on the website does.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/nexxeln/website/internal/client"
	"github.com/nexxeln/website/internal/form"
	"github.com/spf13/pflag"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	api     string
	origin  string
	slug    string
	random  bool
	url     string
	timeout time.Duration
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var opts options

	fs := pflag.NewFlagSet("shorten", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.api, "api", "http://localhost:8080", "base URL of the website API")
	fs.StringVar(&opts.origin, "origin", "", "origin the short links live on (defaults to --api)")
	fs.StringVarP(&opts.slug, "slug", "s", "", "slug of the short link")
	fs.BoolVarP(&opts.random, "random", "r", false, "use a random human-readable slug")
	fs.StringVarP(&opts.url, "url", "u", "", "URL the short link points to")
	fs.DurationVar(&opts.timeout, "timeout", form.DefaultTimeout, "timeout of each API request")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case opts.slug != "" && opts.random:
		return nil, errors.New("--slug and --random are mutually exclusive")
	case opts.slug == "" && !opts.random:
		return nil, errors.New("one of --slug or --random is required")
	case opts.url == "":
		return nil, errors.New("--url is required")
	}

	if opts.origin == "" {
		opts.origin = opts.api
	}

	return &opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 2
	}

	level := slog.LevelError
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctrl := form.New(
		client.New(opts.api, client.WithTimeout(opts.timeout)),
		opts.origin,
		form.WithTimeout(opts.timeout),
		form.WithClipboard(form.WriterClipboard{W: stdout}),
		form.WithLogger(logger),
	)
	defer ctrl.Close()

	stop := context.AfterFunc(ctx, ctrl.Close)
	defer stop()

	if opts.random {
		ctrl.RandomSlug()
	} else {
		ctrl.ChangeSlug(opts.slug)
	}
	ctrl.ChangeURL(opts.url)
	ctrl.Wait()

	if snap := ctrl.Snapshot(); snap.SlugError != nil {
		fmt.Fprintf(stderr, "slug %q: %v\n", snap.Values.Slug, snap.SlugError)
		return 1
	}

	if err := ctrl.Submit(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	ctrl.Wait()

	snap := ctrl.Snapshot()
	if snap.View != form.ViewSuccess {
		for _, err := range []error{snap.SlugError, snap.URLError, snap.SubmitError} {
			if err != nil {
				fmt.Fprintln(stderr, "error:", err)
			}
		}
		if ctx.Err() != nil {
			fmt.Fprintln(stderr, "error:", ctx.Err())
		}
		return 1
	}

	if err := ctrl.Copy(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	return 0
}
