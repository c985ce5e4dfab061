// Command repl is a terminal front end for the calculator. Every entered
// line is appended to a document that is interpreted incrementally, so
// variables declared on earlier lines stay available.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"smartcalc/app/lang"
	"smartcalc/app/lang/rates"
)

const (
	historyFile = ".smartcalc_history"
	prompt      = "> "
)

const helpText = `
REPL commands:
  :quit             Exit the REPL
  :clear            Start a new document
  :show             Print the document with its results
  :culture <name>   Switch culture, e.g. :culture fr-FR
`

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

// session is the document typed so far.
type session struct {
	interp *lang.ParserAndInterpreter
	lines  []string
}

// eval appends line to the document and returns its result.
func (s *session) eval(ctx context.Context, line string) (lang.ResultLine, error) {
	s.lines = append(s.lines, line)
	results, err := s.interp.Run(ctx, s.interp.Culture(), strings.Join(s.lines, "\n"))
	if err != nil {
		s.lines = s.lines[:len(s.lines)-1]
		return lang.ResultLine{}, err
	}
	return results[len(results)-1], nil
}

func (s *session) clear() { s.lines = nil }

// render writes every line of the document with its result.
func (s *session) render(w io.Writer) {
	results := s.interp.Results()
	culture := s.interp.Culture()
	width := 0
	for _, l := range s.lines {
		width = max(width, len(l))
	}
	for i, l := range s.lines {
		res := ""
		if i < len(results) {
			res = results[i].DisplayText(culture)
		}
		if res == "" {
			fmt.Fprintln(w, l)
			continue
		}
		fmt.Fprintf(w, "%-*s  = %s\n", width, l, res)
	}
}

func display(r lang.ResultLine, culture string) string {
	text := r.DisplayText(culture)
	if _, ok := r.SummarizedResultData.(*lang.ErrorData); ok {
		return red(text)
	}
	return green(text)
}

func main() {
	culture := flag.String("culture", "en-US", "grammar and number format culture (en-US or fr-FR)")
	ratesURL := flag.String("rates-url", rates.DefaultEndpoint, "currency rate feed; empty to use bundled rates only")
	ratesDB := flag.String("rates-db", "", "SQLite file caching the rates (default in the user cache directory)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [file ...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := log.New(os.Stderr, "smartcalc: ", 0)
	path := *ratesDB
	if path == "" {
		p, err := rates.DefaultDatabasePath()
		if err != nil {
			logger.Printf("no rate cache: %v", err)
		}
		path = p
	}
	svc, err := rates.New(rates.Config{Endpoint: *ratesURL, DatabasePath: path, Logger: logger})
	if err != nil {
		logger.Fatal(err)
	}
	defer svc.Close()

	interp := lang.NewParserAndInterpreter(nil, lang.Config{Culture: *culture, Logger: logger, Rates: svc})
	s := &session{interp: interp}

	if flag.NArg() > 0 {
		os.Exit(runFiles(s, flag.Args()))
	}
	os.Exit(repl(s))
}

// runFiles interprets each file as one document and prints it with results.
func runFiles(s *session, paths []string) int {
	status := 0
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		s.clear()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			s.lines = append(s.lines, strings.TrimRight(sc.Text(), "\r"))
		}
		f.Close()
		if err := sc.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
			status = 1
			continue
		}
		if _, err := s.interp.Run(context.Background(), s.interp.Culture(), strings.Join(s.lines, "\n")); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
			status = 1
			continue
		}
		s.render(os.Stdout)
	}
	return status
}

func repl(s *session) int {
	fmt.Println("smartcalc. Ctrl+C cancels input, Ctrl+D exits. Type :help for commands.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Println()
			return 0
		}

		if cmd := strings.TrimSpace(line); strings.HasPrefix(cmd, ":") {
			fields := strings.Fields(cmd)
			switch strings.ToLower(fields[0]) {
			case ":quit", ":q":
				return 0
			case ":help":
				fmt.Print(helpText)
			case ":clear":
				s.clear()
			case ":show":
				s.render(os.Stdout)
			case ":culture":
				if len(fields) > 1 {
					s.interp.SetCulture(fields[1])
				}
				fmt.Println(s.interp.Culture())
			default:
				fmt.Println("unknown command. Type :help for commands.")
			}
			ln.AppendHistory(cmd)
			continue
		}

		r, err := s.eval(context.Background(), line)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		if out := display(r, s.interp.Culture()); r.SummarizedResultData != nil {
			fmt.Println(out)
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
	}
}
