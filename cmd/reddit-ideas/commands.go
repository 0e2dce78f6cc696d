package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	ideas "github.com/vivaneiona/reddit-ideas"
	"github.com/vivaneiona/reddit-ideas/server"
)

// outputFlags are shared by every subcommand that prints results.
type outputFlags struct {
	comments int
	format   string
	save     string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.comments, "comments", ideas.DefaultMaxComments, "number of top-level comments per post")
	cmd.Flags().StringVar(&o.format, "format", "text", "output format: text, json, markdown or html")
	cmd.Flags().StringVar(&o.save, "save", "", "also write the rendered output to this file")
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "reddit-ideas",
		Short:         "Generate product ideas from Reddit discussions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.promptDir, "prompt-dir", "", "directory of *.twig prompt templates overriding the built-in ones")

	root.AddCommand(
		analyzeCmd(a),
		batchCmd(a),
		subredditCmd(a),
		multiCmd(a),
		serveCmd(a),
	)
	return root
}

func analyzeCmd(a *app) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a single Reddit post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ideas.ParseFormat(out.format)
			if err != nil {
				return err
			}
			_, _, p, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}
			res, err := p.analyzer.AnalyzeURL(cmd.Context(), args[0], ideas.WithMaxComments(out.comments))
			if err != nil {
				return err
			}
			return ideas.Emit(a.stdout, []ideas.AnalysisResult{*res}, format, out.save)
		},
	}
	out.register(cmd)
	return cmd
}

func batchCmd(a *app) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Analyze every post URL listed in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ideas.ParseFormat(out.format)
			if err != nil {
				return err
			}
			_, _, p, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}
			results, err := p.analyzer.AnalyzeFile(cmd.Context(), args[0], ideas.WithMaxComments(out.comments))
			if err != nil {
				return err
			}
			return ideas.Emit(a.stdout, results, format, out.save)
		},
	}
	out.register(cmd)
	return cmd
}

func subredditCmd(a *app) *cobra.Command {
	var (
		out   outputFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "subreddit <name>",
		Short: "Analyze the hot posts of a subreddit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ideas.ParseFormat(out.format)
			if err != nil {
				return err
			}
			_, _, p, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}
			results, err := p.analyzer.AnalyzeSubreddit(cmd.Context(), args[0],
				ideas.WithMaxComments(out.comments),
				ideas.WithLimit(limit),
			)
			if err != nil {
				return err
			}
			return ideas.Emit(a.stdout, results, format, out.save)
		},
	}
	out.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", ideas.DefaultLimit, "number of hot posts to fetch")
	return cmd
}

func multiCmd(a *app) *cobra.Command {
	var (
		out      outputFlags
		limit    int
		maxIdeas int
	)
	cmd := &cobra.Command{
		Use:   "multi <sub1,sub2,...>",
		Short: "Sweep several subreddits, isolating failures per post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ideas.ParseFormat(out.format)
			if err != nil {
				return err
			}
			_, _, p, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}
			results, stats, err := p.analyzer.AnalyzeMulti(cmd.Context(), args[0],
				ideas.WithMaxComments(out.comments),
				ideas.WithLimit(limit),
				ideas.WithMaxIdeas(maxIdeas),
			)
			if err != nil {
				return err
			}
			if stats.CapReached() {
				fmt.Fprintf(a.stderr, "Reached max-ideas limit (%d).\n", stats.MaxIdeas)
			}
			fmt.Fprintln(a.stderr, stats.Summary())
			return ideas.Emit(a.stdout, results, format, out.save)
		},
	}
	out.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", ideas.DefaultLimit, "number of hot posts to fetch per subreddit")
	cmd.Flags().IntVar(&maxIdeas, "max-ideas", 0, "stop once this many ideas have been generated (0 = no cap)")
	return cmd
}

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, log, p, err := a.setup(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ListenAddr
			}
			return server.New(p.analyzer, p.registry, log).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :3000)")
	return cmd
}
