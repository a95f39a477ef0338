package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Kotlang/clinicAuthGo/appconfig"
	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/logger"
	"github.com/Kotlang/clinicAuthGo/metrics"
	"github.com/Kotlang/clinicAuthGo/models"
	"github.com/Kotlang/clinicAuthGo/service"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const help = `commands:
  send <email>                 request a login code
  resend                       request a new code once the timer ran out
  verify <code>                submit the 6-digit code
  register <name> [phone]      finish registration after verifying
  profile                      show your profile
  update <field> <value>       change a profile field (name, phone, dateOfBirth, address,
                               bloodGroup, allergies, chronicConditions, height, weight)
  book <doctorId> <date> <time> [reason...]
  appointments                 list your appointments
  cancel <appointmentId>
  status                       show login state and time left on the code
  logout
  quit`

func main() {
	cfg, err := appconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.DevMode)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		logger.Fatal("Failed registering metrics", zap.Error(err))
	}
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, registry)
	}

	inject, err := NewInject(ctx, cfg, nil)
	if err != nil {
		logger.Fatal("Failed starting", zap.Error(err))
	}
	defer inject.Close(context.Background())

	shell := &Shell{inject: inject, out: os.Stdout}
	shell.Run(ctx, os.Stdin)
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server stopped", zap.Error(err))
	}
}

// Shell is the line-oriented front end over the login, profile and
// appointment services.
type Shell struct {
	inject *Inject
	out    io.Writer
}

func (s *Shell) Run(ctx context.Context, in io.Reader) {
	login := s.inject.LoginService
	s.print(login.Init(ctx))

	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 {
			if fields[0] == "quit" || fields[0] == "exit" {
				return
			}
			s.dispatch(ctx, fields[0], fields[1:])
		}
		fmt.Fprint(s.out, "> ")
	}
}

func (s *Shell) dispatch(ctx context.Context, cmd string, args []string) {
	login := s.inject.LoginService

	switch cmd {
	case "help":
		fmt.Fprintln(s.out, help)
	case "send":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: send <email>")
			return
		}
		s.print(login.SendCode(ctx, args[0]))
	case "resend":
		s.print(login.Resend(ctx, ""))
	case "verify":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: verify <code>")
			return
		}
		if login.IsTimerExpired() {
			fmt.Fprintln(s.out, "The code has expired. Use resend to get a new one.")
		}
		s.print(login.SubmitCode(ctx, args[0]))
	case "register":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "usage: register <name> [phone]")
			return
		}
		profile := models.ProfilePatch{Name: args[0]}
		if len(args) > 1 {
			profile.Phone = args[1]
		}
		s.print(login.CompleteRegistration(ctx, profile))
	case "profile":
		token, ok := s.token()
		if !ok {
			return
		}
		patient, err := s.inject.ProfileService.GetProfile(ctx, token)
		s.show(patient, err)
	case "update":
		token, ok := s.token()
		if !ok {
			return
		}
		if len(args) < 2 {
			fmt.Fprintln(s.out, "usage: update <field> <value>")
			return
		}
		patch, ok := profilePatch(args[0], strings.Join(args[1:], " "))
		if !ok {
			fmt.Fprintln(s.out, "unknown field:", args[0])
			return
		}
		patient, err := s.inject.ProfileService.UpdateProfile(ctx, token, patch)
		s.show(patient, err)
	case "book":
		token, ok := s.token()
		if !ok {
			return
		}
		if len(args) < 3 {
			fmt.Fprintln(s.out, "usage: book <doctorId> <date> <time> [reason...]")
			return
		}
		appointment, err := s.inject.AppointmentService.Book(ctx, token, service.BookingRequest{
			DoctorId: args[0],
			Date:     args[1],
			Time:     args[2],
			Reason:   strings.Join(args[3:], " "),
		})
		s.show(appointment, err)
	case "appointments":
		token, ok := s.token()
		if !ok {
			return
		}
		appointments, err := s.inject.AppointmentService.List(ctx, token)
		if err != nil {
			fmt.Fprintln(s.out, autherr.MessageOf(err))
			return
		}
		for _, a := range appointments {
			fmt.Fprintf(s.out, "#%d  %s %s  doctor=%s  %s  (%s)\n", a.TokenNumber, a.Date, a.Time, a.DoctorId, a.Status, a.AppointmentId)
		}
	case "cancel":
		token, ok := s.token()
		if !ok {
			return
		}
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: cancel <appointmentId>")
			return
		}
		appointment, err := s.inject.AppointmentService.Cancel(ctx, token, args[0])
		s.show(appointment, err)
	case "status":
		fmt.Fprintf(s.out, "state: %s\n", login.State())
		if login.State() == service.CodeSent {
			remaining := login.Remaining()
			fmt.Fprintf(s.out, "code sent to %s, %02d:%02d left\n", login.PendingEmail(), int(remaining.Minutes()), int(remaining.Seconds())%60)
		}
	case "logout":
		s.print(login.Logout(ctx))
	default:
		fmt.Fprintln(s.out, "unknown command, try help")
	}
}

func (s *Shell) token() (string, bool) {
	current := s.inject.Sessions.Current()
	if current == nil {
		fmt.Fprintln(s.out, "Please sign in first.")
		return "", false
	}
	return current.Token, true
}

func (s *Shell) print(res service.Result) {
	if !res.Success {
		fmt.Fprintln(s.out, res.Message)
		switch res.Action {
		case service.ResendAction:
			fmt.Fprintln(s.out, "(use resend to get a new code)")
		case service.ReenterAction:
			fmt.Fprintln(s.out, "(enter the code again)")
		}
		return
	}

	switch res.State {
	case service.CodeSent:
		fmt.Fprintf(s.out, "Code sent to %s. It is valid for %s.\n", res.Email, res.Remaining)
	case service.RegistrationRequired:
		fmt.Fprintf(s.out, "Email %s verified. Use register to create your account.\n", res.Email)
	case service.Authenticated:
		fmt.Fprintf(s.out, "Signed in as %s (%s).\n", res.Patient.Name, res.Patient.Email)
	case service.Idle:
		fmt.Fprintln(s.out, "Signed out.")
	}
}

func (s *Shell) show(value interface{}, err error) {
	if err != nil {
		fmt.Fprintln(s.out, autherr.MessageOf(err))
		return
	}
	fmt.Fprintf(s.out, "%+v\n", value)
}

func profilePatch(field, value string) (models.ProfilePatch, bool) {
	patch := models.ProfilePatch{}
	switch field {
	case "name":
		patch.Name = value
	case "phone":
		patch.Phone = value
	case "dateOfBirth":
		patch.DateOfBirth = value
	case "address":
		patch.Address = value
	case "bloodGroup":
		patch.BloodGroup = value
	case "allergies":
		patch.Allergies = value
	case "chronicConditions":
		patch.ChronicConditions = value
	case "height":
		patch.Height = value
	case "weight":
		patch.Weight = value
	default:
		return patch, false
	}
	return patch, true
}
