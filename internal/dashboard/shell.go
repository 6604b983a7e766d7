package dashboard

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"weatherdash/api"
	"weatherdash/internal/logger"
)

const helpText = `Type a city name (e.g. "Paris" or "Paris,FR") to look it up.
Commands:
  :units metric|imperial   switch the unit system
  :forecast on|off         show or hide the 5-day forecast
  :fav                     toggle the last city as a favorite
  :favs                    list favorites
  :history                 list recent searches
  :raw                     print the last raw API response
  :refresh                 forget cached lookups
  :help                    show this help
  :quit                    exit
`

// Purger drops memoized lookups; *api.Memo implements it
type Purger interface {
	Len() int
	Purge()
}

// Shell is the interactive line-oriented front end of the dashboard
type Shell struct {
	dashboard   *Dashboard
	session     *Session
	out         io.Writer
	defaultCity string
	purger      Purger
}

// NewShell binds a dashboard and session to an output stream. An empty input
// line looks up defaultCity.
func NewShell(d *Dashboard, s *Session, out io.Writer, defaultCity string) *Shell {
	return &Shell{
		dashboard:   d,
		session:     s,
		out:         out,
		defaultCity: strings.TrimSpace(defaultCity),
	}
}

// SetPurger enables the :refresh command
func (sh *Shell) SetPurger(p Purger) {
	sh.purger = p
}

// Run reads lines until :quit, end of input or context cancellation. A
// cancelled context returns immediately even while a read is pending; the
// reader goroutine then exits once in yields a line or is closed.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	logger.Debug("Shell started: session=%s", sh.session.ID)

	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	sh.prompt()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(sh.out)
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				fmt.Fprintln(sh.out)
				return nil
			}
			// Both cases can be ready at once; cancellation wins
			if err := ctx.Err(); err != nil {
				return err
			}
			if quit := sh.Execute(ctx, line); quit {
				return nil
			}
			sh.prompt()
		}
	}
}

func (sh *Shell) prompt() {
	if sh.defaultCity != "" {
		fmt.Fprintf(sh.out, "city [%s]> ", sh.defaultCity)
		return
	}
	fmt.Fprint(sh.out, "city> ")
}

// Execute handles one input line and reports whether the shell should exit
func (sh *Shell) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		if sh.defaultCity == "" {
			return false
		}
		line = sh.defaultCity
	}

	if !strings.HasPrefix(line, ":") {
		sh.lookup(ctx, line)
		return false
	}

	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		fmt.Fprint(sh.out, helpText)
		return false
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "quit", "q", "exit":
		return true

	case "help", "h":
		fmt.Fprint(sh.out, helpText)

	case "units":
		if len(args) != 1 {
			fmt.Fprintf(sh.out, "Units: %s (use :units metric|imperial)\n", sh.session.Units)
			break
		}
		units, err := api.ParseUnits(args[0])
		if err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
			break
		}
		sh.session.Units = units
		fmt.Fprintf(sh.out, "Units set to %s\n", units)

	case "forecast":
		switch {
		case len(args) == 1 && strings.EqualFold(args[0], "on"):
			sh.session.ShowForecast = true
		case len(args) == 1 && strings.EqualFold(args[0], "off"):
			sh.session.ShowForecast = false
		default:
			fmt.Fprintln(sh.out, "Usage: :forecast on|off")
			return false
		}
		fmt.Fprintf(sh.out, "Forecast %s\n", onOff(sh.session.ShowForecast))

	case "fav":
		if sh.session.Last == nil {
			fmt.Fprintln(sh.out, "No city looked up yet")
			break
		}
		city := sh.session.Last.LocationName
		if sh.session.ToggleFavorite(city) {
			fmt.Fprintf(sh.out, "Added %s to favorites\n", city)
		} else {
			fmt.Fprintf(sh.out, "Removed %s from favorites\n", city)
		}

	case "favs", "favorites":
		printList(sh.out, "Favorites", sh.session.Favorites())

	case "history":
		printList(sh.out, "Recent searches", sh.session.History())

	case "raw":
		if sh.session.Last == nil {
			fmt.Fprintln(sh.out, "No city looked up yet")
			break
		}
		raw, err := RenderRaw(sh.session.Last.RawPayload)
		if err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
			break
		}
		fmt.Fprint(sh.out, raw)

	case "refresh":
		if sh.purger == nil {
			fmt.Fprintln(sh.out, "Nothing cached")
			break
		}
		n := sh.purger.Len()
		sh.purger.Purge()
		fmt.Fprintf(sh.out, "Cleared %d cached lookups\n", n)

	default:
		fmt.Fprintf(sh.out, "Unknown command %q, type :help\n", ":"+command)
	}

	return false
}

func (sh *Shell) lookup(ctx context.Context, city string) {
	view, err := sh.dashboard.Lookup(ctx, sh.session, city)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(sh.out, RenderView(view))
	if current, err := view.Current.Get(); err == nil && sh.session.IsFavorite(current.LocationName) {
		fmt.Fprintln(sh.out, "★ favorite")
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printList(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(out, "%s: none\n", title)
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for i, item := range items {
		fmt.Fprintf(out, "  %d. %s\n", i+1, item)
	}
}
