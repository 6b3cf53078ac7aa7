// Command chat is a terminal client for the Clairon support chat.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clairon-backend/internal/conversation"
	"clairon-backend/internal/logging"
)

var (
	serverURL string
	timeout   time.Duration
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the Clairon support assistant",
	Long: `Chat opens a support conversation against a running Clairon server.

Type a message and press enter. The whole conversation is sent with every
message. Commands:
  /reset   start a new conversation
  /quit    leave`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := []conversation.Option{}
		if verbose {
			logger, _ := logging.Setup("", slog.LevelDebug)
			opts = append(opts, conversation.WithLogger(logger))
		}
		store := conversation.New(conversation.NewClient(serverURL, timeout), opts...)
		return run(ctx, store, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Clairon server base URL")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "per-message request timeout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log transport errors to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, store *conversation.Store, in io.Reader, out io.Writer) error {
	printLast(out, store)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if store.Reset() {
				printLast(out, store)
			}
			continue
		}

		reply, ok := store.Submit(ctx, line)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "assistant: %s\n", reply.Content)
	}
}

func printLast(out io.Writer, store *conversation.Store) {
	msgs := store.Messages()
	fmt.Fprintf(out, "assistant: %s\n", msgs[len(msgs)-1].Content)
}
