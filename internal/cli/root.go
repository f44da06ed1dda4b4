// Package cli implements docsearchctl, the command-line client for the docsearch API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kailas-cloud/docsearch/internal/transport/kafka"
	"github.com/kailas-cloud/docsearch/internal/version"
	"github.com/kailas-cloud/docsearch/pkg/client"
)

// Viper keys. Flags override DOCSEARCH_* env vars, which override the config file.
const (
	keyServer  = "server"
	keyTimeout = "timeout"
	keyJSON    = "json"
	keyBrokers = "kafka.brokers"
	keyTopic   = "kafka.topic"
)

// apiClient is the subset of *client.Client the commands use.
type apiClient interface {
	Index(ctx context.Context, req client.IndexRequest) (int, error)
	Upload(ctx context.Context, req client.UploadRequest) (client.Upload, error)
	Search(ctx context.Context, query string, mode client.SearchMode) (client.SearchResult, error)
	Get(ctx context.Context, id string) (client.Document, error)
	Count(ctx context.Context) (int, error)
	Health(ctx context.Context) (client.Health, error)
}

type publisher interface {
	Publish(ctx context.Context, ev kafka.IndexEvent) error
	Close() error
}

// app carries per-invocation state shared by the subcommands.
type app struct {
	v            *viper.Viper
	cfgFile      string
	newClient    func(server string, timeout time.Duration) (apiClient, error)
	newPublisher func(brokers []string, topic string) publisher
}

func defaultApp() *app {
	return &app{
		v: viper.New(),
		newClient: func(server string, timeout time.Duration) (apiClient, error) {
			return client.New(server, client.WithTimeout(timeout), client.WithUserAgent("docsearchctl/"+version.Version))
		},
		newPublisher: func(brokers []string, topic string) publisher {
			return kafka.NewProducer(brokers, topic)
		},
	}
}

// Execute runs docsearchctl and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultApp())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "docsearchctl",
		Short:         "docsearchctl talks to a docsearch server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml)")
	pf.String(keyServer, "http://localhost:8080", "docsearch server URL")
	pf.Duration(keyTimeout, 60*time.Second, "request timeout")
	pf.Bool(keyJSON, false, "print raw JSON")

	// Bind flags to Viper keys (flags override config)
	_ = a.v.BindPFlag(keyServer, pf.Lookup(keyServer))
	_ = a.v.BindPFlag(keyTimeout, pf.Lookup(keyTimeout))
	_ = a.v.BindPFlag(keyJSON, pf.Lookup(keyJSON))

	root.AddCommand(
		newUploadCmd(a),
		newIndexCmd(a),
		newSearchCmd(a),
		newGetCmd(a),
		newCountCmd(a),
		newHealthCmd(a),
		newEnqueueCmd(a),
		newVersionCmd(),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
	return root
}

// loadConfig reads the optional config file and DOCSEARCH_* env vars.
func (a *app) loadConfig() error {
	a.v.SetEnvPrefix("docsearch")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault(keyTopic, "docsearch.index")

	if a.cfgFile == "" {
		return nil
	}
	a.v.SetConfigFile(a.cfgFile)
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found", a.cfgFile)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func (a *app) client() (apiClient, error) {
	return a.newClient(a.v.GetString(keyServer), a.v.GetDuration(keyTimeout))
}

func (a *app) jsonMode() bool { return a.v.GetBool(keyJSON) }

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "docsearchctl %s\n", version.String())
}
