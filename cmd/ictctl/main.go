// cmd/ictctl/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mfreeman451/ictmon/pkg/config"
	"github.com/mfreeman451/ictmon/pkg/grpc"
	"github.com/mfreeman451/ictmon/pkg/logger"
	"github.com/mfreeman451/ictmon/pkg/responder"
	"github.com/mfreeman451/ictmon/pkg/transport"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

const defaultTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ictctl",
		Short:        "Query and exercise a running " + config.AppName,
		Version:      config.AppVersion,
		SilenceUsage: true,
	}

	cmd.AddCommand(newQueryCmd(), newPublishCmd(), newHealthCmd())

	return cmd
}

func newQueryCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "query <tps|tps10|graph>",
		Short: "Send one query to the monitor's query socket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			reply, err := transport.Request(ctx, addr, args[0])
			if err != nil {
				return err
			}

			verb, value := responder.ParseReply(reply)
			if verb == responder.VerbError {
				return fmt.Errorf("monitor error: %s", value)
			}

			cmd.Println(reply)

			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr",
		transport.BindEndpoint(config.DefaultAddress, config.DefaultAPIPort), "Query socket endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "Reply timeout")

	return cmd
}

func newPublishCmd() *cobra.Command {
	var (
		listen string
		topic  string
		perSec float64
		count  int
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish synthetic transaction events at a fixed rate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(logger.Config{})
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			pub, err := transport.NewPublisher(ctx, listen)
			if err != nil {
				return err
			}
			defer pub.Close()

			log.WithField("address", pub.Addr().String()).Infof("Publishing %.2f events/s on topic %q", perSec, topic)

			limiter := rate.NewLimiter(rate.Limit(perSec), 1)

			for sent := 0; count <= 0 || sent < count; sent++ {
				if err := limiter.Wait(ctx); err != nil {
					log.WithField("sent", sent).Info("Publisher stopped")

					return nil
				}

				if err := pub.Publish(topic, strconv.Itoa(sent)); err != nil {
					return fmt.Errorf("publish: %w", err)
				}
			}

			log.WithField("sent", count).Info("Publisher done")

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&listen, "listen", transport.BindEndpoint(config.DefaultBindHost, config.DefaultSubPort), "PUB endpoint to bind")
	flags.StringVar(&topic, "topic", config.DefaultTopic, "Topic prefix of every event")
	flags.Float64Var(&perSec, "rate", 10, "Events per second")
	flags.IntVar(&count, "count", 0, "Stop after this many events; 0 publishes until interrupted")

	return cmd
}

func newHealthCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the monitor's gRPC health service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := grpc.NewClient(addr, grpc.WithMaxRetries(1))
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			serving, err := client.CheckHealth(ctx, config.AppName)
			if err != nil {
				return err
			}

			if !serving {
				return fmt.Errorf("%s is not serving", config.AppName)
			}

			cmd.Println("SERVING")

			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:50051", "Health service address")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "Check timeout")

	return cmd
}
