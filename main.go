// Compendium is a terminal viewer for the U.S. Copyright Compendium.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"compendium/config"
	"compendium/fetcher"
	"compendium/manifest"
	"compendium/nav"
	"compendium/prefs"
	"compendium/render"
	"compendium/session"
	"compendium/translate"
	"compendium/viewer"
)

func main() {
	target := ""
	printMode := false
	initConfig := false

	for _, arg := range os.Args[1:] {
		switch arg {
		case "-p", "--print":
			printMode = true
		case "--init-config":
			initConfig = true
		case "-h", "--help":
			printUsage()
			return
		default:
			if target == "" {
				target = arg
			}
		}
	}

	// Generate default config and exit
	if initConfig {
		fmt.Print(config.DefaultTOML())
		return
	}

	if printMode {
		if err := runPrint(target); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(target); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Compendium - Terminal Compendium Viewer

Usage: compendium [options] [chapter]

A chapter is a manifest filename (ch200-registration-process.html) or an
address path (/glossary.html#dfn-author).

Options:
  -p, --print       Print the chapter to stdout (one-shot mode)
  --init-config     Output default config (redirect to ~/.config/compendium/config.toml)
  -h, --help        Show this help

Examples:
  compendium                                   Open the introduction
  compendium ch200-registration-process.html   Open a chapter
  compendium -p glossary.html                  Print the glossary to stdout
  compendium --init-config > ~/.config/compendium/config.toml`)
}

func newSession(cfg config.Config) *viewer.Session {
	store, err := prefs.Load()
	if err != nil {
		log.Printf("preferences unavailable, using memory store: %v", err)
		store = prefs.Memory()
	}

	instance := cfg.Translation.Instance
	if instance == "" {
		instance = translate.DefaultInstance
	}

	width := cfg.Rendering.Width
	height := 24
	if w, h, err := render.TerminalSize(); err == nil {
		if w < width {
			width = w
		}
		height = h
	}

	return viewer.New(viewer.Options{
		Fetcher: fetcher.New(fetcher.Options{
			BaseURL:        cfg.Fetcher.BaseURL,
			UserAgent:      cfg.Fetcher.UserAgent,
			TimeoutSeconds: cfg.Fetcher.TimeoutSeconds,
		}),
		Prefs:          store,
		Translation:    translate.NewLingva(instance),
		SourceLanguage: cfg.Translation.SourceLanguage,
		Width:          width,
		Height:         height,
	})
}

func runPrint(target string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s := newSession(cfg)
	// One-shot mode prints the whole chapter, not a viewport slice.
	s.Resize(0, 1<<20)

	ctx := context.Background()
	if target == "" {
		err = s.Start(ctx)
	} else {
		err = s.Open(ctx, target)
	}
	if err != nil {
		return err
	}

	fmt.Println(s.Title())
	fmt.Println(strings.Repeat("=", len(s.Title())))
	fmt.Println()
	for _, line := range s.Visible() {
		fmt.Println(line)
	}
	return nil
}

func run(target string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s := newSession(cfg)
	ctx := context.Background()

	// Resume where the last run left off unless a chapter was requested.
	var saved *session.State
	if target == "" {
		if st, err := session.Load(); err == nil {
			saved = st
			target = st.Path
			searchHistory = st.SearchHistory
		}
	}

	if target == "" {
		err = s.Start(ctx)
	} else {
		err = s.Open(ctx, target)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
	}
	if saved != nil {
		s.SetScroll(saved.Scroll)
	}
	showPage(s)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("\n[%s] > ", s.Path())
		if !scanner.Scan() {
			saveSession(s)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" {
			saveSession(s)
			return nil
		}
		dispatch(ctx, s, line)
	}
}

// searchHistory holds the recent search terms for this run, restored from
// and saved with the session.
var searchHistory []string

func saveSession(s *viewer.Session) {
	st := &session.State{
		Path:          s.Path(),
		Scroll:        s.ScrollLine(),
		SearchHistory: searchHistory,
	}
	if err := session.Save(st); err != nil {
		log.Printf("saving session: %v", err)
	}
}

func dispatch(ctx context.Context, s *viewer.Session, line string) {
	cmd, arg := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		cmd, arg = line[:i], strings.TrimSpace(line[i+1:])
	}

	switch cmd {
	case "help", "?":
		printHelp()
		return
	case "ls":
		for _, ch := range manifest.Chapters() {
			fmt.Printf("  %-40s %s\n", ch.Filename, ch.PageTitle())
		}
		return
	case "open", "o":
		if err := s.Open(ctx, arg); err != nil {
			fmt.Fprintf(os.Stderr, "open: %v\n", err)
			return
		}
	case "nav":
		entries, anchor := s.Nav()
		printNav(entries, anchor, 0)
		return
	case "toggle":
		s.ToggleChapter(arg)
		entries, anchor := s.Nav()
		printNav(entries, anchor, 0)
		return
	case "goto", "g":
		s.OpenOutline(arg)
	case "letter":
		s.OpenLetter(arg)
	case "back", "b":
		if !s.Back(ctx) {
			fmt.Println("already at the oldest entry")
			return
		}
	case "forward", "f":
		if !s.Forward(ctx) {
			fmt.Println("already at the newest entry")
			return
		}
	case "reload", "r":
		if err := s.Reload(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "reload: %v\n", err)
			return
		}
	case "translate", "t":
		if err := s.Translate(ctx, arg); err != nil {
			fmt.Fprintf(os.Stderr, "translate: %v\n", err)
			return
		}
	case "original":
		if err := s.Original(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "original: %v\n", err)
			return
		}
	case "clear":
		s.ClearSearch()
	case "searches":
		for _, term := range searchHistory {
			fmt.Printf("  /%s\n", term)
		}
		return
	default:
		if strings.HasPrefix(line, "/") {
			term := strings.TrimPrefix(line, "/")
			n := s.Search(term)
			fmt.Printf("%d matches\n", n)
			if term != "" && (len(searchHistory) == 0 || searchHistory[len(searchHistory)-1] != term) {
				searchHistory = append(searchHistory, term)
			}
		} else {
			fmt.Printf("unknown command %q (try help)\n", cmd)
		}
	}
	showPage(s)
}

func printHelp() {
	fmt.Println(`Commands:
  open <chapter>    Load a chapter by filename or address path
  ls                List all chapters
  nav               Show the navigation panel
  toggle <chapter>  Expand or collapse a chapter's outline
  goto <anchor>     Jump to an outline anchor (sec-201, subsec-202-1, ...)
  letter <anchor>   Jump to a glossary term
  /<term>           Highlight matches in the current chapter
  searches          List recent search terms
  clear             Remove the search highlight
  translate <lang>  Translate the chapter in place (e.g. translate es)
  original          Restore the untranslated chapter
  back, forward     Traverse history
  reload            Refetch the current chapter
  quit              Exit`)
}

func showPage(s *viewer.Session) {
	fmt.Printf("\n%s\n%s\n", s.Title(), strings.Repeat("=", len(s.Title())))
	if err := s.Err(); err != nil {
		fmt.Printf("\nThe chapter could not be loaded: %v\nUse reload to try again.\n", err)
		return
	}
	for _, line := range s.Visible() {
		fmt.Println(line)
	}
}

func printNav(entries []*nav.Entry, anchor string, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		marker := " "
		switch {
		case e.Kind == nav.EntryOutline && e.Anchor == anchor:
			marker = "*"
		case e.Active:
			marker = ">"
		case e.Inert:
			marker = "-"
		}
		fmt.Printf("%s%s %s\n", indent, marker, e.Title)
		if e.Kind != nav.EntryChapter || e.Expanded {
			printNav(e.Children, anchor, depth+1)
		}
	}
}
