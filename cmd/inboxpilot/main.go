package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"inboxpilot/internal/analyze"
	"inboxpilot/internal/apiclient"
	"inboxpilot/internal/auth"
	"inboxpilot/internal/calendar"
	"inboxpilot/internal/config"
	"inboxpilot/internal/llm"
	"inboxpilot/internal/logging"
	"inboxpilot/internal/mail"
	"inboxpilot/internal/reply"
	"inboxpilot/internal/schedule"
	"inboxpilot/internal/server"
	"inboxpilot/internal/translate"
	"inboxpilot/internal/tui"
	"inboxpilot/internal/web"
)

const defaultServerURL = "http://localhost:8080"

// app bundles the operations the commands dispatch to, so tests can
// swap them out.
type app struct {
	serve   func(ctx context.Context, out io.Writer) error
	runTUI  func(ctx context.Context, serverURL string) error
	login   func(ctx context.Context, out io.Writer) error
	logout  func(out io.Writer) error
	threads func(ctx context.Context, serverURL, query string) ([]apiclient.ThreadSummary, error)
	slots   func(ctx context.Context, serverURL string, durationMinutes, days int) ([]apiclient.Slot, error)
}

func newRootCmd(a app, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "inboxpilot",
		Short: "Inbox Pilot — read, analyze, answer and schedule your email",
	}

	var serverURL string
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL,
		"base URL of a running inboxpilot serve instance")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), out)
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Triage your inbox in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context(), serverURL)
		},
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize Gmail and Calendar access",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.login(cmd.Context(), out)
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored OAuth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.logout(out)
		},
	}

	var query string
	threadsCmd := &cobra.Command{
		Use:   "threads",
		Short: "List inbox threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			threads, err := a.threads(cmd.Context(), serverURL, query)
			if err != nil {
				return err
			}
			if len(threads) == 0 {
				fmt.Fprintln(out, "No threads found.")
				return nil
			}
			for i, t := range threads {
				subject := t.Subject
				if subject == "" {
					subject = "(no subject)"
				}
				fmt.Fprintf(out, "%d. %s\n   %s · %s\n   %s\n\n", i+1, subject, t.From, t.Date, t.Snippet)
			}
			return nil
		},
	}
	threadsCmd.Flags().StringVarP(&query, "query", "q", "", "Gmail search query")

	var durationMinutes, daysAhead int
	slotsCmd := &cobra.Command{
		Use:   "slots",
		Short: "Find open meeting slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			slots, err := a.slots(cmd.Context(), serverURL, durationMinutes, daysAhead)
			if err != nil {
				return err
			}
			if len(slots) == 0 {
				fmt.Fprintln(out, "No open slots found.")
				return nil
			}
			for _, s := range slots {
				fmt.Fprintf(out, "%s to %s\n",
					s.Start.Format("2006-01-02 3:04 PM"), s.End.Format("3:04 PM"))
			}
			return nil
		},
	}
	slotsCmd.Flags().IntVar(&durationMinutes, "duration", 0, "meeting length in minutes")
	slotsCmd.Flags().IntVar(&daysAhead, "days", 0, "days ahead to search")

	root.AddCommand(serveCmd, tuiCmd, loginCmd, logoutCmd, threadsCmd, slotsCmd)
	return root
}

func runWithOutput(args []string, a app, out io.Writer) error {
	cmd := newRootCmd(a, out)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd.Execute()
}

func run(args []string, a app) error {
	return runWithOutput(args, a, os.Stdout)
}

func buildApp() app {
	return app{
		serve:  serve,
		runTUI: runTUI,
		login:  login,
		logout: logout,
		threads: func(ctx context.Context, serverURL, query string) ([]apiclient.ThreadSummary, error) {
			return apiclient.New(serverURL, http.DefaultClient).ListThreads(ctx, query)
		},
		slots: func(ctx context.Context, serverURL string, durationMinutes, days int) ([]apiclient.Slot, error) {
			return apiclient.New(serverURL, http.DefaultClient).FindSlots(ctx, durationMinutes, days)
		},
	}
}

// serve wires the whole stack and blocks until interrupted.
func serve(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Default(cfg.LogLevel)

	tok, err := auth.LoadToken(cfg.TokenPath)
	if err != nil {
		return fmt.Errorf("load OAuth token from %s: %w\n\nRun `inboxpilot login` first.", cfg.TokenPath, err)
	}
	tokenSource := auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret).TokenSource(ctx, tok)

	mailClient, err := mail.NewAPIClient(ctx, tokenSource)
	if err != nil {
		return err
	}
	calClient, err := calendar.NewAPIClient(ctx, tokenSource, cfg.Location())
	if err != nil {
		return err
	}

	model := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.ChatModel, cfg.EmbedModel)

	memory, err := reply.NewMemory(cfg.MemoryPath, model)
	if err != nil {
		return err
	}
	defer memory.Close()

	var smtpSender *mail.SMTPSender
	if cfg.SMTPConfigured() {
		smtpSender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}

	handler, err := web.New(web.Deps{
		Mail:       mailClient,
		Calendar:   calClient,
		Analyzer:   analyze.New(model, logging.Component(log, "analyze")),
		Replies:    reply.NewGenerator(model, memory, logging.Component(log, "reply")),
		Translator: translate.NewTranslator(model, logging.Component(log, "translate")),
		Scheduler:  schedule.NewScheduler(calClient, logging.Component(log, "schedule")),
		SMTP:       smtpSender,
		Config:     cfg,
		Log:        logging.Component(log, "web"),
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg.ServerAddr, logging.Component(log, "http"))
	handler.Register(srv)
	if err := srv.Listen(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Listening on http://%s\n", srv.Addr())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runTUI(ctx context.Context, serverURL string) error {
	client := apiclient.New(serverURL, http.DefaultClient)
	model := tui.NewModel(client.ListThreads, client.AnalyzeThread)

	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func login(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flow := &auth.Flow{
		Config:  auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret),
		OpenURL: openBrowser,
	}

	fmt.Fprintln(out, "Opening your browser to authorize Gmail and Calendar access...")
	tok, err := flow.Run(ctx)
	if err != nil {
		return err
	}
	if err := auth.SaveToken(cfg.TokenPath, tok); err != nil {
		return err
	}

	fmt.Fprintf(out, "Authorized. Token saved to %s\n", cfg.TokenPath)
	return nil
}

func logout(out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := auth.Revoke(cfg.TokenPath); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged out.")
	return nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

func main() {
	if err := run(os.Args[1:], buildApp()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
