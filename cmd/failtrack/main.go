package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"failtrack/internal/action"
	"failtrack/internal/audit"
	"failtrack/internal/config"
	"failtrack/internal/dashboard"
	"failtrack/internal/detect"
	"failtrack/internal/explain"
	"failtrack/internal/ingest"
	"failtrack/internal/logging"
	"failtrack/internal/metrics"
	"failtrack/internal/parser"
	"failtrack/internal/pipeline"
	"failtrack/internal/report"
	"failtrack/internal/sink"
	"failtrack/internal/state"
	"failtrack/internal/types"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var code int
	switch os.Args[1] {
	case "analyze":
		code = analyzeCommand(ctx, os.Args[2:], os.Stdin, os.Stdout, os.Stderr)
	case "history":
		code = historyCommand(ctx, os.Args[2:], os.Stdout, os.Stderr)
	case "serve":
		code = serveCommand(ctx, os.Args[2:], os.Stderr)
	default:
		printUsage(os.Stderr)
		code = 1
	}
	stop()
	os.Exit(code)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: failtrack <command> [flags]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  analyze   Summarize failed SSH logins in an auth log")
	fmt.Fprintln(w, "  history   List stored runs, or show one with -run")
	fmt.Fprintln(w, "  serve     Serve stored runs and metrics over HTTP")
}

func loadConfig(path string) (*types.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

func analyzeCommand(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	logPath := fs.String("log", "", "Path to the auth log, or - for stdin")
	thresholdFlag := fs.String("threshold", "", "Failed attempts above which an IP is suspicious (default 5)")
	outDir := fs.String("out", "", "Directory for CSV and chart artifacts")
	noCharts := fs.Bool("no-charts", false, "Skip chart artifacts")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *noCharts {
		off := false
		cfg.Output.Charts = &off
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if cfg.Output.MetricsTextfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.Output.MetricsTextfile); err != nil {
				logger.Warn("failed to write metrics textfile", zap.Error(err))
			}
		}()
	}

	fmt.Fprintln(stdout, report.Banner)

	path := firstNonEmpty(*logPath, cfg.Input.AuthLogPath)
	thresholdRaw := firstNonEmpty(*thresholdFlag, cfg.Detection.Threshold)
	if path == "" {
		in := bufio.NewReader(stdin)
		path = prompt(in, stdout, "Enter path to log file (e.g., auth.log or sample_log.txt): ")
		if thresholdRaw == "" {
			thresholdRaw = prompt(in, stdout, "Enter threshold for suspicious IPs [default=5]: ")
		}
		stdin = in
	}
	threshold := detect.ParseThreshold(thresholdRaw)

	var src ingest.Ingester
	if path == "-" {
		src = ingest.NewReaderSource("stdin", stdin)
	} else {
		src = ingest.NewFileSource(path)
	}

	engine := detect.NewEngine(threshold, "ssh_auth")
	p := pipeline.New(parser.NewFailedPasswordParser(), engine, logger)

	res, err := p.Run(ctx, path, src)
	if err != nil {
		if errors.Is(err, pipeline.ErrInputUnavailable) {
			fmt.Fprintf(stderr, "❌ Log file not found or unreadable: %s\n", path)
			logger.Debug("input unavailable", zap.Error(err))
			return 1
		}
		logger.Error("analysis failed", zap.Error(err))
		return 1
	}
	if res.Empty() {
		fmt.Fprintln(stdout, report.NoDataMessage)
		return 0
	}

	rep := report.Assemble(res)
	dir := sink.NewDir(cfg.Output.Dir)
	pub := &report.Publisher{Out: stdout, CSV: dir}
	if cfg.ChartsEnabled() {
		pub.Charts = dir
	}

	code := 0
	if err := pub.Publish(rep); err != nil {
		logger.Error("some artifacts were not written", zap.Error(err))
		code = 1
	}

	if cfg.Output.AuditLogPath != "" || cfg.Notification.DiscordWebhook != "" {
		if err := handleAlerts(ctx, cfg, engine, res, logger); err != nil {
			logger.Error("failed to deliver alerts", zap.Error(err))
			code = 1
		}
	}

	if cfg.Output.StateDBPath != "" {
		if err := saveRun(ctx, cfg.Output.StateDBPath, rep, len(res.Events)); err != nil {
			logger.Error("failed to store run", zap.Error(err))
			code = 1
		} else {
			logger.Info("run stored", zap.String("run_id", rep.RunID), zap.String("db", cfg.Output.StateDBPath))
		}
	}

	return code
}

func handleAlerts(ctx context.Context, cfg *types.Config, engine *detect.Engine, res *pipeline.Result, logger *zap.Logger) error {
	alerts := engine.Alerts(res.RunID, res.Suspicious)
	if len(alerts) == 0 {
		return nil
	}

	var explainer explain.Explainer = explain.NewTemplateExplainer()
	if cfg.Detection.EnableLocalLLM {
		explainer = explain.NewLLMExplainer(cfg.Detection.LocalLLMUrl, cfg.Detection.LocalLLMModel)
	}
	if failed := explain.ExplainAll(ctx, explainer, alerts); failed > 0 {
		logger.Warn("explainer failed, used template", zap.Int("alerts", failed))
	}

	broker := action.NewBroker(cfg.Action.Allowlist, cfg.Notification.DiscordWebhook, logger)
	for _, rec := range broker.Recommend(alerts) {
		logger.Info("suggested action, not executed", zap.String("ip", rec.Target), zap.String("command", rec.Command))
	}

	var errs []error
	if cfg.Output.AuditLogPath != "" {
		if err := audit.NewLogger(cfg.Output.AuditLogPath).LogEvents(alerts); err != nil {
			errs = append(errs, err)
		}
	}
	if err := broker.Notify(ctx, alerts); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func saveRun(ctx context.Context, dbPath string, rep report.Report, events int) error {
	store, err := state.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, attackers := state.Snapshot(rep, events, time.Now())
	return store.SaveRun(ctx, run, attackers, rep.Series)
}

func historyCommand(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	dbPath := fs.String("db", "", "Path to the state database")
	runID := fs.String("run", "", "Show the summary of one run")
	limit := fs.Int("limit", 20, "Maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	path := firstNonEmpty(*dbPath, cfg.Output.StateDBPath)
	if path == "" {
		fmt.Fprintln(stderr, "Error: no state database (use -db or output.state_db_path)")
		return 1
	}

	store, err := state.NewStore(path)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open state database: %v\n", err)
		return 1
	}
	defer store.Close()

	if *runID != "" {
		run, err := store.GetRun(ctx, *runID)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		attackers, err := store.Attackers(ctx, *runID)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		rep := report.Report{RunID: run.ID, Source: run.Source, Threshold: run.Threshold}
		for _, a := range attackers {
			c := types.AddressCount{IP: a.IP, Count: a.Count}
			rep.Summary = append(rep.Summary, c)
			if a.Suspicious {
				rep.Suspicious = append(rep.Suspicious, c)
			}
		}
		fmt.Fprintf(stdout, "Run %s (%s, threshold %d, %s)\n", run.ID, run.Source, run.Threshold, run.CreatedAt.Local().Format(time.DateTime))
		report.WriteTopAttackers(stdout, rep)
		report.WriteSuspicious(stdout, rep)
		return 0
	}

	runs, err := store.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tSOURCE\tEVENTS\tSUSPICIOUS\tTHRESHOLD")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Source, r.Events, r.Suspicious, r.Threshold)
	}
	tw.Flush()
	return 0
}

func serveCommand(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file")
	dbPath := fs.String("db", "", "Path to the state database")
	addr := fs.String("addr", "", "Listen address (default :8080)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	path := firstNonEmpty(*dbPath, cfg.Output.StateDBPath)
	if path == "" {
		fmt.Fprintln(stderr, "Error: no state database (use -db or output.state_db_path)")
		return 1
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logger.Sync()

	store, err := state.NewStore(path)
	if err != nil {
		logger.Error("failed to open state database", zap.Error(err))
		return 1
	}
	defer store.Close()

	srv := dashboard.NewServer(store, logger)
	if err := srv.ListenAndServe(ctx, firstNonEmpty(*addr, cfg.Dashboard.Addr)); err != nil {
		logger.Error("dashboard stopped", zap.Error(err))
		return 1
	}
	return 0
}

// prompt asks one question and returns the answer without its line ending
func prompt(in *bufio.Reader, out io.Writer, question string) string {
	fmt.Fprint(out, question)
	answer, _ := in.ReadString('\n')
	return strings.TrimRight(answer, "\r\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
