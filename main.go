// sievecheck validates SIEVE mail filtering scripts.
//
// Usage:
//
//	sievecheck [flags] script.sieve [more.sieve ...]
//	sievecheck -serve -apikey SECRET
//
// With script arguments it lints each file (or stdin when the argument
// is "-") and prints every diagnostic as
// file:line:col: message (production). With
// -serve it runs the HTTP validation API instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/migadu/sievecheck/cache"
	"github.com/migadu/sievecheck/config"
	"github.com/migadu/sievecheck/logger"
	"github.com/migadu/sievecheck/server/checkapi"
)

func main() {
	cfg := config.NewDefaultConfig()

	// Command-line flags override values from the config file. Their
	// defaults come from the initial cfg so -help shows the effective
	// values.
	configPath := flag.String("config", "config.toml", "Path to TOML configuration file")
	fLogOutput := flag.String("logoutput", cfg.Logging.Output, "Log output: 'stderr', 'stdout', 'syslog' or a file path (overrides config)")
	fLogLevel := flag.String("loglevel", cfg.Logging.Level, "Log level: debug, info, warn or error (overrides config)")
	fServe := flag.Bool("serve", cfg.API.Start, "Run the HTTP validation API instead of linting files (overrides config)")
	fAddr := flag.String("addr", cfg.API.Addr, "HTTP API listen address (overrides config)")
	fAPIKey := flag.String("apikey", cfg.API.APIKey, "HTTP API key (overrides config)")
	fExtensions := flag.String("extensions", "", "Comma-separated extension subset to accept (overrides config)")
	fQuiet := flag.Bool("q", false, "Print nothing; the exit status tells whether the scripts are clean")
	flag.Parse()

	if err := config.Load(*configPath, &cfg); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: %v", err)
		}
		// no config file is fine; defaults and flags carry the day
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "logoutput":
			cfg.Logging.Output = *fLogOutput
		case "loglevel":
			cfg.Logging.Level = *fLogLevel
		case "serve":
			cfg.API.Start = *fServe
		case "addr":
			cfg.API.Addr = *fAddr
		case "apikey":
			cfg.API.APIKey = *fAPIKey
		case "extensions":
			cfg.Analyzer.SupportedExtensions = splitList(*fExtensions)
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	logFile, err := logger.Initialize(cfg.Logging)
	if err != nil {
		log.Fatalf("FATAL: initializing logging: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if cfg.API.Start {
		serve(cfg)
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: sievecheck [flags] script.sieve [more.sieve ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	clean := true
	for _, path := range flag.Args() {
		if !lint(path, cfg, *fQuiet) {
			clean = false
		}
	}
	if !clean {
		os.Exit(1)
	}
}

// lint analyzes one script file and prints its diagnostics. Returns
// true when the script is clean.
func lint(path string, cfg config.Config, quiet bool) bool {
	var source []byte
	var err error
	if path == "-" {
		source, err = io.ReadAll(io.LimitReader(os.Stdin, cfg.Analyzer.MaxScriptSize+1))
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return false
	}
	if int64(len(source)) > cfg.Analyzer.MaxScriptSize {
		fmt.Fprintf(os.Stderr, "%s: script exceeds %d bytes\n", path, cfg.Analyzer.MaxScriptSize)
		return false
	}

	result := checkapi.Check(string(source), cfg.Analyzer.SupportedExtensions)
	logger.Debug("script analyzed",
		"path", path,
		"bytes", len(source),
		"diagnostics", len(result.Diagnostics))

	if quiet {
		return result.Valid
	}
	for _, d := range result.Diagnostics {
		fmt.Printf("%s:%d:%d: %s (%s)\n", path, d.Line, d.Column, d.Message, d.Production)
	}
	for _, ext := range result.NeededExtensions {
		fmt.Printf("%s: note: script uses %q without requiring it\n", path, ext)
	}
	return result.Valid
}

// serve runs the HTTP validation API until interrupted.
func serve(cfg config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var resultCache *cache.Cache
	if cfg.API.CacheSize > 0 {
		resultCache = cache.New(cfg.API.CacheSize)
	}

	errChan := make(chan error, 1)
	go checkapi.Start(ctx, checkapi.ServerOptions{
		Addr:                cfg.API.Addr,
		APIKey:              cfg.API.APIKey,
		AllowedHosts:        cfg.API.AllowedHosts,
		TLS:                 cfg.API.TLS,
		TLSCertFile:         cfg.API.TLSCertFile,
		TLSKeyFile:          cfg.API.TLSKeyFile,
		SupportedExtensions: cfg.Analyzer.SupportedExtensions,
		MaxScriptSize:       cfg.Analyzer.MaxScriptSize,
		Cache:               resultCache,
	}, errChan)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errChan:
		logger.Fatal("API server error", "error", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
