// cmd/ictmon/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mfreeman451/ictmon/pkg/config"
	"github.com/mfreeman451/ictmon/pkg/lifecycle"
	"github.com/mfreeman451/ictmon/pkg/logger"
	"github.com/mfreeman451/ictmon/pkg/monitor"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(config.NewViper()).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"name":      "node.name",
	"address":   "node.address",
	"port":      "node.port",
	"topic":     "topic",
	"file":      "use_node_file",
	"node-file": "node_file",
	"api":       "responder.enabled",
	"api-port":  "responder.port",
	"http":      "http.listen_addr",
	"health":    "health.listen_addr",
	"log-level": "logging.level",
	"log-json":  "logging.json",
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          config.AppName,
		Short:        "Ict Node Monitor: transaction rates of IOTA Ict nodes",
		Version:      config.AppVersion,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noStdout, _ := cmd.Flags().GetBool("no-stdout"); noStdout {
				v.Set("display.enabled", false)
			}

			return run(cmd.Context(), v, configPath)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	flags.StringP("name", "n", config.DefaultName, "Name of the Ict node")
	flags.StringP("address", "a", config.DefaultAddress, "Address of the Ict node")
	flags.IntP("port", "p", config.DefaultSubPort, "ZeroMQ publisher port of the Ict node")
	flags.StringP("topic", "t", config.DefaultTopic, "Topic to subscribe to")
	flags.BoolP("file", "f", false, "Read the nodes from the node file instead of --name/--address/--port")
	flags.String("node-file", config.DefaultNodeFile, "Node file with one name:address:port per line")
	flags.Bool("api", false, "Answer tps/tps10/graph queries on a ZeroMQ REP socket")
	flags.Int("api-port", config.DefaultAPIPort, "Port of the query socket")
	flags.Bool("no-stdout", false, "Disable the terminal table")
	flags.String("http", "", "Listen address of the HTTP API, e.g. :8080")
	flags.String("health", "", "Listen address of the gRPC health service, e.g. :50051")
	flags.String("log-level", "info", "Log level")
	flags.Bool("log-json", false, "Log in JSON")

	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "dir" {
			name = "topic"
		}

		return pflag.NormalizedName(name)
	})

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", config.AppName, config.AppVersion)
		},
	}
}

func run(ctx context.Context, v *viper.Viper, configPath string) error {
	cfg, err := config.LoadAndValidate(v, configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})
	if err != nil {
		return err
	}

	m, err := monitor.New(cfg, log)
	if err != nil {
		return err
	}

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ListenAddr:      cfg.Health.ListenAddr,
		ServiceName:     config.AppName,
		Service:         m,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          log,
	})
}
