package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	sitepublish "github.com/goliatone/go-sitepublish"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

const envPrefix = "SITEPUBLISH_"

var moduleBuilder = sitepublish.New

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("sitepublish: %v", err)
	}
}

type cliFlags struct {
	configPath    string
	envFile       string
	dsn           string
	output        string
	outDir        string
	pattern       string
	workers       int
	interval      time.Duration
	importDir     string
	locales       string
	defaultLocale string
	hostname      string
	title         string
	layout        string
	themeDir      string
	theme         string
	metricsAddr   string
	logProvider   string
	logLevel      string
	logFormat     string
	reason        string
	strict        bool
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("sitepublish", flag.ContinueOnError)
	opts := cliFlags{}
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&opts.envFile, "env", ".env", "Path to a .env file with SITEPUBLISH_* overrides")
	flags.StringVar(&opts.dsn, "dsn", "", "sqlite DSN of the content database")
	flags.StringVar(&opts.output, "output", "", "Artifact store: fs or sql")
	flags.StringVar(&opts.outDir, "out", "", "Output directory for the fs artifact store")
	flags.StringVar(&opts.pattern, "pattern", "", "Permalink pattern selecting the pages to publish")
	flags.IntVar(&opts.workers, "workers", 0, "Maximum concurrent page tasks (0 runs one task per page)")
	flags.DurationVar(&opts.interval, "interval", 0, "Republish on this interval instead of exiting after one run")
	flags.StringVar(&opts.importDir, "import", "", "Import markdown files from this directory before publishing")
	flags.StringVar(&opts.locales, "locales", "", "Comma separated locale codes to register")
	flags.StringVar(&opts.defaultLocale, "default-locale", "", "Default locale code")
	flags.StringVar(&opts.hostname, "hostname", "", "Site hostname stored in the site settings")
	flags.StringVar(&opts.title, "title", "", "Site title stored in the site settings")
	flags.StringVar(&opts.layout, "layout", "", "Page layout template file")
	flags.StringVar(&opts.themeDir, "theme-dir", "", "Directory holding go-theme manifests")
	flags.StringVar(&opts.theme, "theme", "", "Theme compiled into the global style sheet")
	flags.StringVar(&opts.metricsAddr, "metrics", "", "Serve Prometheus metrics on this address")
	flags.StringVar(&opts.logProvider, "log-provider", "", "Logging provider: console or gologger")
	flags.StringVar(&opts.logLevel, "log-level", "", "Minimum log level")
	flags.StringVar(&opts.logFormat, "log-format", "", "go-logger output format: json, console or pretty")
	flags.StringVar(&opts.reason, "reason", "", "Reason recorded with the publish command")
	flags.BoolVar(&opts.strict, "strict", false, "Exit with an error when any page fails")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath, opts.envFile)
	if err != nil {
		return err
	}
	applyFlags(&cfg, flags, opts)

	module, err := moduleBuilder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build module: %w", err)
	}
	defer module.Close()

	if err := seedSite(ctx, module.Store(), cfg, opts); err != nil {
		return err
	}
	if cfg.Markdown.Enabled {
		if err := module.ImportMarkdown(ctx, cfg.Markdown.ContentDir, cfg.Markdown.Locales, cfg.Markdown.DefaultLocale); err != nil {
			return fmt.Errorf("import markdown: %w", err)
		}
	}

	if cfg.Metrics.Enabled {
		server := &http.Server{Addr: cfg.Metrics.Address, Handler: module.MetricsHandler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				module.Logger("sitepublish.metrics").Error("metrics.server.failed", "error", err)
			}
		}()
		defer server.Close()
	}

	if cfg.Publish.Interval > 0 {
		return runScheduled(ctx, module, cfg)
	}

	result, err := module.Publish(ctx, opts.reason, opts.strict)
	if result != nil {
		fmt.Fprintf(stdout, "run %s: %s, %d published, %d failed in %s\n",
			result.RunID, result.Outcome(), result.Published, result.Failed, result.Duration.Round(time.Millisecond))
		for _, page := range result.Failures() {
			fmt.Fprintf(stdout, "  %s: %v\n", page.Output, page.Err)
		}
	}
	return err
}

func runScheduled(ctx context.Context, module *sitepublish.Module, cfg sitepublish.Config) error {
	s, err := module.Scheduler()
	if err != nil {
		return err
	}
	if _, err := s.SchedulePublish(ctx, cfg.Publish.Interval, cfg.Publish.RunOnStart); err != nil {
		return err
	}
	s.Start()
	<-ctx.Done()
	return s.Stop()
}

// loadConfig layers the YAML file and SITEPUBLISH_* environment values over the defaults.
func loadConfig(configPath, envFile string) (sitepublish.Config, error) {
	cfg := sitepublish.DefaultConfig()
	if configPath != "" {
		loaded, err := sitepublish.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load env file: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *sitepublish.Config) {
	if value, ok := lookupEnv("DSN"); ok {
		cfg.Database.DSN = value
	}
	if value, ok := lookupEnv("OUTPUT"); ok {
		cfg.Output.Provider = value
	}
	if value, ok := lookupEnv("OUT_DIR"); ok {
		cfg.Output.Dir = value
	}
	if value, ok := lookupEnv("WORKERS"); ok {
		if workers, err := strconv.Atoi(value); err == nil {
			cfg.Publish.Workers = workers
		}
	}
	if value, ok := lookupEnv("INTERVAL"); ok {
		if interval, err := time.ParseDuration(value); err == nil {
			cfg.Publish.Interval = interval
		}
	}
	if value, ok := lookupEnv("LOG_LEVEL"); ok {
		cfg.Logging.Level = value
	}
	if value, ok := lookupEnv("METRICS_ADDR"); ok {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = value
	}
}

func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(envPrefix + name)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// applyFlags copies only the flags given on the command line.
func applyFlags(cfg *sitepublish.Config, flags *flag.FlagSet, opts cliFlags) {
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dsn":
			cfg.Database.DSN = opts.dsn
		case "output":
			cfg.Output.Provider = opts.output
		case "out":
			cfg.Output.Dir = opts.outDir
		case "pattern":
			cfg.Publish.Pattern = opts.pattern
		case "workers":
			cfg.Publish.Workers = opts.workers
		case "interval":
			cfg.Publish.Interval = opts.interval
		case "import":
			cfg.Markdown.Enabled = true
			cfg.Markdown.ContentDir = opts.importDir
		case "locales":
			cfg.Markdown.Locales = splitList(opts.locales)
		case "default-locale":
			cfg.Markdown.DefaultLocale = strings.TrimSpace(opts.defaultLocale)
		case "layout":
			cfg.Layout.File = opts.layout
		case "theme-dir":
			cfg.Theme.Dir = opts.themeDir
		case "theme":
			cfg.Theme.Name = opts.theme
		case "metrics":
			cfg.Metrics.Enabled = true
			cfg.Metrics.Address = opts.metricsAddr
		case "log-provider":
			cfg.Logging.Provider = opts.logProvider
		case "log-level":
			cfg.Logging.Level = opts.logLevel
		case "log-format":
			cfg.Logging.Format = opts.logFormat
		}
	})
}

// seedSite registers the configured locales and stores hostname and title overrides.
func seedSite(ctx context.Context, st *sitepublish.Store, cfg sitepublish.Config, opts cliFlags) error {
	codes := cfg.Markdown.Locales
	if def := cfg.Markdown.DefaultLocale; def != "" && !slices.Contains(codes, def) {
		codes = append([]string{def}, codes...)
	}
	for i, code := range codes {
		locale := interfaces.Locale{Code: code, IsDefault: code == cfg.Markdown.DefaultLocale}
		if err := st.SaveLocale(ctx, locale, i); err != nil {
			return fmt.Errorf("save locale %s: %w", code, err)
		}
	}

	if opts.hostname == "" && opts.title == "" {
		return nil
	}
	settings, err := st.GetSiteSettings(ctx)
	if err != nil {
		return fmt.Errorf("load site settings: %w", err)
	}
	if opts.hostname != "" {
		settings.Hostname = opts.hostname
	}
	if opts.title != "" {
		settings.Title = opts.title
	}
	if err := st.SaveSiteSettings(ctx, settings); err != nil {
		return fmt.Errorf("save site settings: %w", err)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
