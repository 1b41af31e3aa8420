package di

import (
	"flag"
	"io"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/sms-risk-detector/internal/adapters/filter"
	"github.com/mikey/sms-risk-detector/internal/config"
	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/mikey/sms-risk-detector/internal/logging"
	"github.com/mikey/sms-risk-detector/internal/whitelist"
)

// cliOutput receives the CLI report
var cliOutput io.Writer = os.Stdout

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Corpus flags
	CorpusPath    string
	Encoding      string
	LabelColumn   string
	MessageColumn string

	// Model flags
	MinDF    int
	NGramMax int

	// Input flags
	Message    string
	InputFile  string
	Email      bool
	Whitelist  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	// flag.CommandLine exits on parse errors
	flags, _ := ParseFlagSet(flag.CommandLine, os.Args[1:])
	return flags
}

// ParseFlagSet registers the CLI flags on fs and parses args
func ParseFlagSet(fs *flag.FlagSet, args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}

	fs.StringVar(&flags.CorpusPath, "corpus", "spam.csv", "Path to the labelled CSV corpus")
	fs.StringVar(&flags.Encoding, "encoding", "latin-1", "Character encoding of the corpus file")
	fs.StringVar(&flags.LabelColumn, "label-column", "v1", "Corpus column holding ham/spam labels")
	fs.StringVar(&flags.MessageColumn, "message-column", "v2", "Corpus column holding message text")

	fs.IntVar(&flags.MinDF, "min-df", 3, "Minimum number of documents a term must appear in")
	fs.IntVar(&flags.NGramMax, "ngram-max", 3, "Longest word n-gram used as a feature")

	fs.StringVar(&flags.Message, "message", "", "Message to score (reads -file or stdin if empty)")
	fs.StringVar(&flags.InputFile, "file", "", "Input file (use stdin if not specified)")
	fs.BoolVar(&flags.Email, "email", false, "Parse the input as an RFC 5322 email")
	fs.StringVar(&flags.Whitelist, "whitelist", "", "Comma-separated list of whitelisted sender domains")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			cfg.GetViper().Set("cli.verbose", flags.Verbose)
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// The CLI does not export metrics
	if err := container.Provide(func() core.MetricsRecorder { return nil }); err != nil {
		return nil, err
	}
	if err := provideCore(container); err != nil {
		return nil, err
	}

	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetStringSlice("spam.whitelisted_domains"), logger)
	}); err != nil {
		return nil, err
	}

	// Register risk service with no cache
	if err := container.Provide(func(
		bundle *core.ModelBundle,
		trainer *core.Trainer,
		src core.CorpusSource,
		checker *whitelist.Checker,
		logger *zap.Logger,
	) *core.RiskService {
		return core.NewRiskService(bundle, trainer, src, nil, core.CacheSettings{}, checker, nil, logger)
	}); err != nil {
		return nil, err
	}

	// Register CLI filter
	if err := container.Provide(func(service *core.RiskService, logger *zap.Logger, cfg *config.Config) (*filter.CliFilter, error) {
		return filter.NewCliFilter(service, logger, cliOutput, cfg.GetBool("cli.verbose"))
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)

	v.Set("corpus.type", "csv")
	v.Set("corpus.path", flags.CorpusPath)
	v.Set("corpus.encoding", flags.Encoding)
	v.Set("corpus.label_column", flags.LabelColumn)
	v.Set("corpus.message_column", flags.MessageColumn)

	v.Set("model.min_df", flags.MinDF)
	v.Set("model.ngram_max", flags.NGramMax)

	v.Set("spam.whitelisted_domains", splitDomains(flags.Whitelist))

	return config.NewFromViper(v)
}

func splitDomains(list string) []string {
	var domains []string
	for _, d := range strings.Split(list, ",") {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}
