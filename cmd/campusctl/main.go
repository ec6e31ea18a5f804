package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"smartcampus/portal/internal/campusapi"
	"smartcampus/portal/internal/config"
	"smartcampus/portal/internal/log"
	"smartcampus/portal/internal/nfc"
	"smartcampus/portal/internal/service"
)

const usage = `usage: campusctl <command> [flags]

commands:
  login -email <email>        sign in with a password (prompted)
  scan                        sign in by reading a card from nfc.device
  dashboard                   show upcoming campus events as courses
  classes|filieres|matieres   list reference data, -search filters by name
`

type app struct {
	auth   *service.AuthService
	ref    *service.ReferenceService
	out    io.Writer
	device string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "campusctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, cmd string, args []string) error {
	logger := log.New(cfg.Environment, os.Stderr).Level(zerolog.WarnLevel)

	fallback, err := service.ParseFallbackPolicy(cfg.Events.Fallback)
	if err != nil {
		return err
	}

	var scanner service.CardScanner
	if cmd == "scan" {
		reader, closer, err := nfc.OpenDevice(cfg.NFC.Device)
		if err != nil {
			return err
		}
		defer closer.Close()

		svc := nfc.NewService(reader, logger)
		if !svc.Initialize(ctx) {
			return nfc.NewError(nfc.KindUnsupported, nil)
		}
		defer svc.Cleanup()
		scanner = svc
	}

	campus := campusapi.New(cfg.Upstream, logger)
	a := &app{
		auth:   service.NewAuthService(campus, scanner, service.NewProjector(cfg.Locale.Location()), fallback, logger),
		ref:    service.NewReferenceService(campus),
		out:    os.Stdout,
		device: cfg.NFC.Device,
	}

	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "scan":
		return a.scan(ctx)
	case "dashboard":
		return a.dashboard(ctx)
	case "classes", "filieres", "matieres":
		return a.reference(ctx, cmd, args)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := readPassword()
	if err != nil {
		return err
	}
	return a.report(a.auth.LoginWithCredentials(ctx, strings.TrimSpace(*email), password))
}

func (a *app) scan(ctx context.Context) error {
	if a.device == "-" {
		fmt.Fprintln(os.Stderr, "Approchez votre carte étudiante (une ligne par carte sur stdin)")
	}
	return a.report(a.auth.LoginWithNFC(ctx))
}

func (a *app) report(result service.LoginResult) error {
	if !result.Success {
		return errors.New(result.Error)
	}

	user := result.User
	if user == nil {
		return errors.New("réponse sans utilisateur")
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Utilisateur\t%s %s (%s)\n", user.Firstname, user.Lastname, user.Email)
	fmt.Fprintf(w, "Initiales\t%s\n", service.Initials(user.Firstname, user.Lastname))
	fmt.Fprintf(w, "Rôle\t%s\n", user.Role)
	if card := result.Card; card != nil {
		fmt.Fprintf(w, "Carte\t%s\n", service.MaskCardNumber(card.NumCarte))
	}
	return w.Flush()
}

func (a *app) dashboard(ctx context.Context) error {
	data := a.auth.LoadUserData(ctx)
	if data.Source == service.SourceNone && data.Err != nil {
		return data.Err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNOM\tDATE\tHEURE\tLIEU\tSTATUT")
	for _, course := range data.Courses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			course.CodeMatiere, course.Nom, course.Date, course.Time, course.Lieu, service.StatusText(course.Status))
	}
	stats := service.CalculateStats(data.Courses)
	fmt.Fprintf(w, "\n%d en cours, %d à venir, %d terminés (%s)\n", stats.Active, stats.Upcoming, stats.Completed, data.Source)
	return w.Flush()
}

func (a *app) reference(ctx context.Context, kind string, args []string) error {
	fs := flag.NewFlagSet(kind, flag.ContinueOnError)
	search := fs.String("search", "", "case-insensitive name filter")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		items any
		err   error
	)
	switch kind {
	case "classes":
		items, err = a.ref.Classes(ctx, *search)
	case "filieres":
		items, err = a.ref.Filieres(ctx, *search)
	default:
		items, err = a.ref.Matieres(ctx, *search)
	}
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	return a.printReference(items)
}
