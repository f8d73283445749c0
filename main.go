package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DavidGamba/go-getoptions"
	"github.com/cyverse-de/notification-doctor/runner"
	"github.com/sirupsen/logrus"
)

// commandLineOptionValues represents the values of the command-line options that were passed on the command line when
// this tool was invoked.
type commandLineOptionValues struct {
	Config string
}

func parseCommandLine() *commandLineOptionValues {
	optionValues := &commandLineOptionValues{}
	opt := getoptions.New()

	// Default option values.
	defaultConfigPath := "notification-doctor.yml"

	// Define the command-line options.
	opt.Bool("help", false, opt.Alias("h", "?"))
	opt.StringVar(&optionValues.Config, "config", defaultConfigPath,
		opt.Alias("c"),
		opt.Description("the path to the configuration file"))

	// Parse the command line, handling requests for help and usage errors.
	_, err := opt.Parse(os.Args[1:])
	if opt.Called("help") {
		fmt.Fprint(os.Stderr, opt.Help())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprint(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		os.Exit(1)
	}

	return optionValues
}

// initLogging sends diagnostic logging to standard error so that it doesn't interleave with the
// transcript.
func initLogging(level string) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithError(err).Warn("invalid log level; using info")
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger.WithField("service", "notification-doctor")
}

func main() {
	// Parse the command-line.
	optionValues := parseCommandLine()

	// Read in the configuration file.
	cfg, err := loadConfig(optionValues.Config)
	if err != nil {
		logrus.Fatal(err)
	}

	// Initialize logging.
	log := initLogging(cfg.GetString("log.level"))

	// Interrupting the run still tears down the live subscription.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the notification store.
	store, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal(err)
	}

	r := runner.New(store, newSessionSource(sessionSettings(cfg), log), os.Stdout, diagnosticSettings(cfg), log)
	summary := r.Run(ctx)

	if err := r.Close(); err != nil {
		log.Error(err)
	}
	if !summary.OK() {
		stop()
		os.Exit(1)
	}
}
