// Command gatepassd runs a gate terminal: it verifies scanned entry
// credentials against a locally loaded manifest and records admissions
// durably so restarts and duplicate scans cannot readmit a ticket.
//
// Subcommands:
//
//	run            read credentials from stdin, one per line, and verify them
//	load <file>    load a manifest export and persist its snapshot
//	issue <file>   encode entry credentials for a manifest export
//	purge          wipe the manifest and admission ledger
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	gatepass "github.com/solarspot/gatepass"
	"github.com/solarspot/gatepass/manifest"
	promexport "github.com/solarspot/gatepass/metrics/export/prometheus"
	"github.com/solarspot/gatepass/token"
)

type fileConfig struct {
	Terminal    string        `yaml:"terminal"`
	DataDir     string        `yaml:"data_dir"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisPrefix string        `yaml:"redis_prefix"`
	AckTimeout  time.Duration `yaml:"ack_timeout"`
	SecretEnv   string        `yaml:"secret_env"`
	AuditLog    string        `yaml:"audit_log"`
	MetricsAddr string        `yaml:"metrics_addr"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Terminal:    "gate-1",
		DataDir:     "./gatepass-data",
		RedisPrefix: "gp",
		AckTimeout:  0,
		SecretEnv:   "GATEPASS_SECRET",
	}
}

func main() {
	flags := pflag.NewFlagSet("gatepassd", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to yaml config file")
	terminal := flags.String("terminal", "", "terminal id (overrides config)")
	dataDir := flags.String("data-dir", "", "file storage directory (overrides config)")
	redisAddr := flags.String("redis-addr", "", "redis address; empty selects file storage")
	ackTimeout := flags.Duration("ack-timeout", 0, "auto-acknowledge timeout (overrides config)")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: gatepassd [flags] run|load <file>|issue <file>|purge\n")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	if flags.NArg() < 1 {
		flags.Usage()
		os.Exit(2)
	}

	// Secrets often live in a .env next to the binary on kiosk installs.
	_ = godotenv.Load()

	cfg := defaultFileConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fatalf("read config: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fatalf("parse config: %v", err)
		}
	}
	if *terminal != "" {
		cfg.Terminal = *terminal
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}
	if *ackTimeout > 0 {
		cfg.AckTimeout = *ackTimeout
	}

	secret := os.Getenv(cfg.SecretEnv)
	if secret == "" {
		fatalf("signing secret missing: set %s", cfg.SecretEnv)
	}

	ctx := context.Background()

	switch flags.Arg(0) {
	case "run":
		runTerminal(ctx, cfg, secret)
	case "load":
		if flags.NArg() < 2 {
			fatalf("load requires a manifest file")
		}
		loadManifest(ctx, cfg, secret, flags.Arg(1))
	case "issue":
		if flags.NArg() < 2 {
			fatalf("issue requires a manifest file")
		}
		issueCredentials(secret, flags.Arg(1))
	case "purge":
		purge(ctx, cfg, secret)
	default:
		flags.Usage()
		os.Exit(2)
	}
}

func buildEngine(ctx context.Context, cfg fileConfig, secret string) (*gatepass.Engine, func()) {
	builder := gatepass.New().
		WithConfig(engineConfig(cfg)).
		WithSecret([]byte(secret))

	cleanup := func() {}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		builder.WithRedis(client)
		cleanup = func() { _ = client.Close() }
	} else {
		builder.WithDataDir(cfg.DataDir)
	}

	if cfg.AuditLog != "" {
		sink, closeSink := auditSink(cfg.AuditLog)
		builder.WithAuditSink(sink)
		prev := cleanup
		cleanup = func() {
			closeSink()
			prev()
		}
	}

	engine, err := builder.Build(ctx)
	if err != nil {
		cleanup()
		fatalf("build engine: %v", err)
	}
	return engine, cleanup
}

func engineConfig(cfg fileConfig) gatepass.Config {
	out := gatepass.Config{}
	out.Terminal.ID = cfg.Terminal
	out.Storage.RedisPrefix = cfg.RedisPrefix
	out.Scan.AckTimeout = cfg.AckTimeout
	out.Metrics.Enabled = true
	out.Metrics.EnableLatencyHistograms = true
	if cfg.AuditLog != "" {
		out.Audit.Enabled = true
		out.Audit.BufferSize = 1024
		out.Audit.DropIfFull = true
	}
	return out
}

func auditSink(path string) (gatepass.AuditSink, func()) {
	if path == "-" {
		return gatepass.NewJSONWriterSink(os.Stderr), func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fatalf("open audit log: %v", err)
	}
	return gatepass.NewJSONWriterSink(file), func() { _ = file.Close() }
}

func runTerminal(ctx context.Context, cfg fileConfig, secret string) {
	engine, cleanup := buildEngine(ctx, cfg, secret)
	defer cleanup()
	defer engine.Close()

	if cfg.MetricsAddr != "" {
		exporter := promexport.NewPrometheusExporter(engine)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", exporter.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
	}

	fmt.Printf("terminal %s ready: manifest entries=%d admitted=%d\n",
		cfg.Terminal, engine.ManifestSize(), engine.AdmittedCount())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		credential := scanner.Text()
		if credential == "" {
			continue
		}

		outcome, err := engine.Verify(ctx, credential)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printOutcome(outcome)
		engine.Acknowledge()
	}
	if err := scanner.Err(); err != nil {
		fatalf("read stdin: %v", err)
	}
}

func printOutcome(outcome *gatepass.Outcome) {
	switch outcome.Decision {
	case gatepass.DecisionGranted:
		fmt.Printf("GRANTED  %s  %s %s\n", outcome.TicketID, outcome.Entry.FirstName, outcome.Entry.LastName)
	case gatepass.DecisionDuplicate:
		fmt.Printf("DUPLICATE  %s  already admitted\n", outcome.TicketID)
	default:
		fmt.Printf("REJECTED  %s  %s\n", outcome.TicketID, outcome.Reason)
	}
}

func loadManifest(ctx context.Context, cfg fileConfig, secret, path string) {
	engine, cleanup := buildEngine(ctx, cfg, secret)
	defer cleanup()
	defer engine.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		fatalf("read manifest: %v", err)
	}

	report, err := engine.LoadManifest(ctx, raw)
	if err != nil {
		fatalf("load manifest: %v", err)
	}
	fmt.Printf("manifest loaded: %d entries, %d skipped\n", report.Loaded, report.Skipped)
}

// issueCredentials encodes one entry credential per manifest record. It needs
// no storage backend, only the signing secret.
func issueCredentials(secret, path string) {
	codec, err := token.NewCodec(token.Config{Secret: []byte(secret)})
	if err != nil {
		fatalf("create codec: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		fatalf("read manifest: %v", err)
	}

	store := manifest.NewStore()
	if _, err := store.Load(raw); err != nil {
		fatalf("parse manifest: %v", err)
	}
	for _, entry := range store.Entries() {
		credential, err := codec.Encode(token.Claim{
			SubjectID: entry.TicketID,
			Name:      entry.FirstName + " " + entry.LastName,
			Email:     entry.Email,
			Phone:     entry.Phone,
		})
		if err != nil {
			fatalf("encode credential for %s: %v", entry.TicketID, err)
		}
		fmt.Printf("%s\t%s\n", entry.TicketID, credential)
	}
}

func purge(ctx context.Context, cfg fileConfig, secret string) {
	engine, cleanup := buildEngine(ctx, cfg, secret)
	defer cleanup()
	defer engine.Close()

	if err := engine.Purge(ctx); err != nil {
		fatalf("purge: %v", err)
	}
	fmt.Println("purged manifest and admission ledger")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
