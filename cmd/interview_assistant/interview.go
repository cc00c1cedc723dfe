package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/interview"
	"github.com/jonathan/interview-assistant/internal/logging"
	"github.com/jonathan/interview-assistant/internal/observability"
	"github.com/jonathan/interview-assistant/internal/questions"
	"github.com/jonathan/interview-assistant/internal/roster"
	"github.com/jonathan/interview-assistant/internal/scoring"
	"github.com/jonathan/interview-assistant/internal/server"
	"github.com/jonathan/interview-assistant/internal/types"
)

// errInputClosed is returned when stdin ends before the interview does.
var errInputClosed = errors.New("input closed before the interview finished")

var (
	interviewResume string
	interviewRole   string
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interview in the terminal",
	Long: "Runs the interviewee flow on stdin/stdout: optional résumé extraction, the missing-field chat, " +
		"six timed questions and scoring. The result is saved to the roster.",
	RunE: runInterview,
}

func init() {
	interviewCmd.Flags().StringVarP(&interviewResume, "resume", "r", "", "Path to a .pdf, .docx or .doc résumé")
	interviewCmd.Flags().StringVar(&interviewRole, "role", questions.DefaultRole, "Role the questions are written for")
	rootCmd.AddCommand(interviewCmd)
}

func runInterview(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Must(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	client, err := newLLMClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close() //nolint:errcheck
	}

	opts := terminalOptions{
		In:        os.Stdin,
		Out:       os.Stdout,
		Resume:    interviewResume,
		Questions: &questions.Generator{Client: client, Role: interviewRole},
		Scorer:    &scoring.Adapter{Client: client},
		Roster:    b.roster,
		Clock:     interview.RealClock{},
		Logger:    logger,
	}
	if interviewResume != "" {
		extractor, err := ingestion.NewExtractor(ctx, logger)
		if err != nil {
			return err
		}
		opts.Ingester = extractor
	}
	return runTerminal(ctx, opts)
}

// terminalOptions wires one terminal interview.
type terminalOptions struct {
	In        io.Reader
	Out       io.Writer
	Resume    string
	Ingester  server.ResumeIngester
	Questions questions.Source
	Scorer    scoring.Scorer
	Roster    roster.Store
	Clock     interview.Clock
	Logger    *zap.Logger
}

// runTerminal drives a session from line-based input until it is scored.
func runTerminal(ctx context.Context, opts terminalOptions) error {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	p := observability.NewPrinter(opts.Out)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, opts.In)

	session := interview.NewSession(interview.Options{
		Questions: opts.Questions,
		Scorer:    opts.Scorer,
		Roster:    opts.Roster,
		Clock:     opts.Clock,
		Logger:    opts.Logger,
	})

	shown := 0
	printNew := func() {
		msgs := session.State().Messages
		for _, m := range msgs[shown:] {
			if m.Role == types.RoleBot {
				p.PrintBot(m.Text)
			}
		}
		shown = len(msgs)
	}
	printNew()

	var extracted types.CandidateProfile
	if opts.Resume != "" {
		result, err := ingestFile(ctx, opts.Ingester, opts.Resume)
		if err != nil {
			return err
		}
		p.PrintExtraction(result)
		session.RecordExtraction(result.Fields.Name, result.Fields.Email, result.Fields.Phone)
		extracted = types.CandidateProfile{
			Name:       result.Fields.Name,
			Email:      result.Fields.Email,
			Phone:      result.Fields.Phone,
			ResumeMeta: result.Meta,
		}
	}
	session.SaveProfile(extracted)
	printNew()

	for len(session.State().MissingFields) > 0 {
		line, err := nextLine(ctx, lines)
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		session.SendChat(line)
		printNew()
	}

	if err := askQuestions(ctx, session, p, lines, opts.Clock); err != nil {
		return err
	}

	p.Printf("Scoring your answers...\n")
	result, err := session.RequestScoring(ctx)
	if err != nil {
		printNew()
		return fmt.Errorf("failed to score interview: %w", err)
	}
	p.PrintScoreResult(result)
	printNew()
	return nil
}

// askQuestions runs the question loop with a live countdown. An expired
// question is submitted by the session with whatever draft it holds.
func askQuestions(ctx context.Context, session *interview.Session, p *observability.Printer, lines <-chan string, clock interview.Clock) error {
	if _, err := session.StartInterview(ctx); err != nil {
		return fmt.Errorf("failed to start interview: %w", err)
	}

	driverCtx, stopDriver := context.WithCancel(ctx)
	defer stopDriver()
	events := make(chan interview.TimerEvent, 8)
	driver := &interview.Driver{
		Session: session,
		Clock:   clock,
		OnEvent: func(ev interview.TimerEvent) {
			select {
			case events <- ev:
			case <-driverCtx.Done():
			}
		},
	}
	go func() { _ = driver.Run(driverCtx) }()

	asked := ""
	for {
		q, ok := session.CurrentQuestion()
		if !ok {
			return nil
		}
		if q.ID != asked {
			st := session.State()
			p.PrintQuestion(st.CurrentQuestionIndex, len(st.Questions), q)
			asked = q.ID
			if err := session.StartTimer(); err != nil && !errors.Is(err, interview.ErrNoCurrentQuestion) {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch {
			case ev.Kind == interview.EventExpired:
				p.Printf("⏰ Time's up for %s.\n", ev.QuestionID)
			case ev.Remaining == 10 || ev.Remaining == 5:
				p.Printf("⏱  %ds left\n", ev.Remaining)
			}
		case line, open := <-lines:
			if !open {
				return errInputClosed
			}
			_, err := session.AnswerQuestion(asked, line)
			switch {
			case errors.Is(err, interview.ErrStaleAnswer):
				p.Printf("That answer arrived after time ran out and was not recorded.\n")
			case err != nil && !errors.Is(err, interview.ErrNoCurrentQuestion):
				return err
			}
		}
	}
}

func ingestFile(ctx context.Context, ingester server.ResumeIngester, path string) (*ingestion.Result, error) {
	if ingester == nil {
		return nil, fmt.Errorf("résumé extraction is not available")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open résumé: %w", err)
	}
	defer f.Close() //nolint:errcheck

	return ingester.Ingest(ctx, filepath.Base(path), "", f)
}

// readLines streams trimmed input lines until EOF or until ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for ctx.Err() == nil && scanner.Scan() {
			select {
			case ch <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func nextLine(ctx context.Context, lines <-chan string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, open := <-lines:
		if !open {
			return "", errInputClosed
		}
		return line, nil
	}
}
