package main

import (
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/party-booking-backend/internal/calendar"
	"github.com/nekogravitycat/party-booking-backend/internal/client"
	"github.com/nekogravitycat/party-booking-backend/internal/logger"
	"github.com/nekogravitycat/party-booking-backend/internal/party"
)

type flagConfig struct {
	server   string
	email    string
	password string
	view     string
	date     string
	offset   int
	format   string
	out      string
	from     string
	to       string
	id       string
	yes      bool
}

const usage = `usage: partyctl [flags] <command>

commands:
  calendar      print the month or week around -date (default: today)
  get           print the party with -id
  export        download every party to -out in -format
  delete-range  delete parties between -from and -to
  delete-all    delete every party (requires -yes)

flags:
`

func main() {
	_ = godotenv.Load()
	log := logger.New(os.Getenv("LOG_LEVEL"), false)

	cfg, cmd := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	if err := run(ctx, cfg, cmd, os.Stdout); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			log.Fatal().Msg("not signed in: check -email and PARTYCTL_PASSWORD")
		}
		log.Fatal().Err(err).Str("command", cmd).Msg("partyctl failed")
	}
}

func parseFlags() (flagConfig, string) {
	var cfg flagConfig

	flag.StringVar(&cfg.server, "server", envOr("PARTYCTL_SERVER", "http://localhost:4000"), "API base URL")
	flag.StringVar(&cfg.email, "email", os.Getenv("PARTYCTL_EMAIL"), "Account email")
	flag.StringVar(&cfg.view, "view", "month", "Calendar view: month or week")
	flag.StringVar(&cfg.date, "date", "", "Anchor date YYYY-MM-DD (default: today)")
	flag.IntVar(&cfg.offset, "offset", 0, "Move the calendar this many periods forward (negative: back)")
	flag.StringVar(&cfg.format, "format", "csv", "Export format: csv, xlsx or ics")
	flag.StringVar(&cfg.out, "out", "", "Export destination (default: server-suggested file name)")
	flag.StringVar(&cfg.from, "from", "", "Range start YYYY-MM-DD")
	flag.StringVar(&cfg.to, "to", "", "Range end YYYY-MM-DD")
	flag.StringVar(&cfg.id, "id", "", "Party id")
	flag.BoolVar(&cfg.yes, "yes", false, "Confirm delete-all")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	// Passwords stay out of the process list.
	cfg.password = os.Getenv("PARTYCTL_PASSWORD")

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "calendar"
	}
	return cfg, cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, cfg flagConfig, cmd string, stdout io.Writer) error {
	c, err := client.New(cfg.server)
	if err != nil {
		return err
	}

	if cfg.email != "" {
		me, err := c.Login(ctx, cfg.email, cfg.password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		zerolog.Ctx(ctx).Debug().Str("user", me.Email).Msg("signed in")
		defer func() {
			if err := c.Logout(context.WithoutCancel(ctx)); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("logout failed")
			}
		}()
	}

	switch cmd {
	case "calendar":
		return printCalendar(ctx, c, cfg, stdout)
	case "get":
		return getParty(ctx, c, cfg, stdout)
	case "export":
		return export(ctx, c, cfg, stdout)
	case "delete-range":
		return deleteRange(ctx, c, cfg, stdout)
	case "delete-all":
		return deleteAll(ctx, c, cfg, stdout)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printCalendar(ctx context.Context, c *client.Client, cfg flagConfig, stdout io.Writer) error {
	view, err := calendar.ParseView(cfg.view)
	if err != nil {
		return err
	}
	anchor := time.Now()
	if cfg.date != "" {
		if anchor, err = time.Parse(calendar.KeyLayout, cfg.date); err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
	}

	board := client.NewBoard(c, view, anchor)
	var grid calendar.Grid
	if cfg.date == "" {
		grid, err = board.Today(ctx)
	} else {
		grid, err = board.Refresh(ctx)
	}
	for i := 0; err == nil && i < cfg.offset; i++ {
		grid, err = board.Next(ctx)
	}
	for i := 0; err == nil && i > cfg.offset; i-- {
		grid, err = board.Prev(ctx)
	}
	if err != nil {
		return err
	}

	writeGrid(stdout, grid)
	return nil
}

// writeGrid prints every day of the grid with one line per party; empty days get a "-" line.
func writeGrid(w io.Writer, grid calendar.Grid) {
	fmt.Fprintf(w, "%s %s .. %s (%d parties)\n\n",
		grid.View, grid.From.Format(calendar.KeyLayout), grid.To.Format(calendar.KeyLayout), grid.Count())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cell := range grid.Days {
		marker := ""
		if cell.IsToday {
			marker = " *"
		}
		if !cell.InMonth {
			marker += " (other month)"
		}
		fmt.Fprintf(tw, "%s %s%s\n", cell.Date.Format("Mon"), cell.Key, marker)
		if len(cell.Parties) == 0 {
			fmt.Fprintln(tw, "\t-")
			continue
		}
		for _, p := range cell.Parties {
			fmt.Fprintf(tw, "\t%s\t%s (%d)\t%s\t%s\t%s\n",
				clock(p), p.KidName, p.KidAge, p.LocationName, p.PartyType, p.PhoneNumber)
		}
	}
	tw.Flush()
}

func clock(p *party.Party) string {
	if p.StartTime == nil {
		return "--:--"
	}
	if p.EndTime == nil {
		return *p.StartTime
	}
	return *p.StartTime + "-" + *p.EndTime
}

func export(ctx context.Context, c *client.Client, cfg flagConfig, stdout io.Writer) error {
	format := strings.ToLower(cfg.format)
	out := cfg.out
	if out == "" {
		out = "partita-" + time.Now().Format(calendar.KeyLayout) + "." + format
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := c.Export(ctx, format, f); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "exported to %s\n", out)
	return nil
}

func deleteRange(ctx context.Context, c *client.Client, cfg flagConfig, stdout io.Writer) error {
	from, err := time.Parse(calendar.KeyLayout, cfg.from)
	if err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	to, err := time.Parse(calendar.KeyLayout, cfg.to)
	if err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}

	n, err := c.DeletePartiesInRange(ctx, from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted %d parties\n", n)
	return nil
}

func getParty(ctx context.Context, c *client.Client, cfg flagConfig, stdout io.Writer) error {
	if cfg.id == "" {
		return errors.New("-id is required")
	}
	p, err := c.GetParty(ctx, cfg.id)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", p.ID)
	fmt.Fprintf(tw, "date\t%s %s\n", p.PartyDate.Format(calendar.KeyLayout), clock(p))
	fmt.Fprintf(tw, "kid\t%s (%d)\n", p.KidName, p.KidAge)
	fmt.Fprintf(tw, "location\t%s\n", p.LocationName)
	fmt.Fprintf(tw, "type\t%s\n", p.PartyType)
	fmt.Fprintf(tw, "phone\t%s\n", p.PhoneNumber)
	fmt.Fprintf(tw, "deposit\t%.2f\n", p.Deposit)
	if p.Notes != nil {
		fmt.Fprintf(tw, "notes\t%s\n", *p.Notes)
	}
	return tw.Flush()
}

func deleteAll(ctx context.Context, c *client.Client, cfg flagConfig, stdout io.Writer) error {
	if !cfg.yes {
		return errors.New("delete-all removes every party; pass -yes to confirm")
	}
	n, err := c.DeleteAllParties(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted %d parties\n", n)
	return nil
}
