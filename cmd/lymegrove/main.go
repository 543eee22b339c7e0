// Command lymegrove is the terminal client: it uploads scans to a lymegrove
// server and keeps the user's plant collection and consent choices on disk.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/franckalain/lymegrove/internal/client"
	"github.com/franckalain/lymegrove/internal/local"
	"github.com/franckalain/lymegrove/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the global flags and the lazily built dependencies.
type cli struct {
	serverURL string
	token     string
	dataDir   string
	verbose   bool
	asJSON    bool

	logger  *zap.Logger
	storage local.Storage
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "lymegrove",
		Short:         "Plant health scans, care schedules and your plant collection",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if c.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, logging.FormatConsole)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.serverURL, "server", envOr("LYMEGROVE_SERVER", "http://localhost:8080"), "lymegrove server URL")
	flags.StringVar(&c.token, "token", os.Getenv("LYMEGROVE_TOKEN"), "session token for scan history")
	flags.StringVar(&c.dataDir, "data-dir", envOr("LYMEGROVE_DATA_DIR", defaultDataDir()), "directory for saved plants and consent")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&c.asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(
		c.analyzeCmd(),
		c.scheduleCmd(),
		c.plantsCmd(),
		c.consentCmd(),
		c.feedbackCmd(),
		c.contactCmd(),
		c.gdprCmd(),
		c.scansCmd(),
		c.tokenCmd(),
	)
	return root
}

func (c *cli) client() *client.Client {
	var opts []client.Option
	if c.token != "" {
		opts = append(opts, client.WithToken(c.token))
	}
	return client.New(c.serverURL, opts...)
}

func (c *cli) localStorage() (local.Storage, error) {
	if c.storage != nil {
		return c.storage, nil
	}
	fs, err := local.NewFileStorage(c.dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}
	c.storage = fs
	return fs, nil
}

func (c *cli) plants() (*local.PlantRepository, error) {
	s, err := c.localStorage()
	if err != nil {
		return nil, err
	}
	return local.NewPlantRepository(s), nil
}

func (c *cli) consent() (*local.ConsentRepository, error) {
	s, err := c.localStorage()
	if err != nil {
		return nil, err
	}
	return local.NewConsentRepository(s), nil
}

// print writes v as indented JSON when --json is set, otherwise calls text.
func (c *cli) print(w io.Writer, v any, text func(io.Writer) error) error {
	if c.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".lymegrove"
	}
	return filepath.Join(dir, "lymegrove")
}
