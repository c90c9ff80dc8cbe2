package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	server "webscout/internal/http"
	"webscout/internal/mcpserver"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the web",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		query := strings.Join(args, " ")
		renderSearch(cmd.OutOrStdout(), query, app.Searcher.Search(cmd.Context(), query))
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a page and print its content preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		res := app.Fetcher.Fetch(cmd.Context(), args[0])
		renderFetch(cmd.OutOrStdout(), res)
		if !res.Success {
			return errors.New("fetch failed")
		}
		return nil
	},
}

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Start an interactive search and fetch session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return runInteractive(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), app.Searcher, app.Fetcher)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd)
	},
}

var (
	mcpTransport string
	mcpHost      string
	mcpPort      int
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio or HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("transport") {
			cfg.MCP.Transport = strings.ToLower(mcpTransport)
		}
		if cmd.Flags().Changed("host") {
			cfg.MCP.Host = mcpHost
		}
		if cmd.Flags().Changed("port") {
			cfg.MCP.Port = mcpPort
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcpserver.New(app.Searcher, app.Fetcher, mcpserver.Config{
			Name:            "webscout",
			Version:         version,
			MaxContentChars: cfg.MCP.MaxContentChars,
		}, logger)

		switch cfg.MCP.Transport {
		case "stdio":
			return srv.ServeStdio(cmd.Context())
		case "http":
			addr := net.JoinHostPort(cfg.MCP.Host, strconv.Itoa(cfg.MCP.Port))
			return srv.ListenAndServe(cmd.Context(), addr)
		default:
			return fmt.Errorf("invalid transport %q (expected stdio|http)", cfg.MCP.Transport)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		s := server.NewServer(cfg, app.Searcher, app.Fetcher, logger)

		errCh := make(chan error, 1)
		go func() { errCh <- s.Listen() }()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.Shutdown(ctx)
		}
	},
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpTransport, "transport", "t", "stdio", "transport: stdio or http")
	mcpCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP transport host")
	mcpCmd.Flags().IntVarP(&mcpPort, "port", "p", 3000, "HTTP transport port")
}

func runInteractive(ctx context.Context, in io.Reader, out io.Writer, s server.Searcher, f server.Fetcher) error {
	titleColor.Fprintln(out, "webscout interactive mode")
	fmt.Fprintln(out, interactiveHelp)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nwebscout> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "":
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "help":
			fmt.Fprintln(out, interactiveHelp)
		case "search":
			if arg == "" {
				errColor.Fprintln(out, "Usage: search <query>")
				continue
			}
			renderSearch(out, arg, s.Search(ctx, arg))
		case "fetch":
			if arg == "" {
				errColor.Fprintln(out, "Usage: fetch <url>")
				continue
			}
			renderFetch(out, f.Fetch(ctx, arg))
		default:
			errColor.Fprintf(out, "Unknown command %q. Type 'help' for a list of commands.\n", cmd)
		}
	}
}
