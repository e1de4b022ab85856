package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/betterpursue/sproom/internal/adapters/email"
	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/adapters/notify"
	"github.com/betterpursue/sproom/internal/adapters/storage"
	sessionStore "github.com/betterpursue/sproom/internal/adapters/storage/session"
	snapshotStore "github.com/betterpursue/sproom/internal/adapters/storage/snapshot"
	"github.com/betterpursue/sproom/internal/application/orchestrators"
	"github.com/betterpursue/sproom/internal/application/projections"
	appsync "github.com/betterpursue/sproom/internal/application/sync"
	"github.com/betterpursue/sproom/internal/config"
	"github.com/betterpursue/sproom/internal/domain/account"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const usage = `sproom %s - sports activity registrations from the terminal

usage: sproom <command> [arguments]

  signup <username> <password> [email]   create an account and sign in
  login <username> <password>            sign in
  logout                                 sign out
  profile [flags]                        show or update your profile
  list [query]                           list open activities
  bookings                               list your registrations
  register <activity-id>                 sign up for an activity
  cancel [-y] <activity-id>              cancel your registration
  comment <activity-id> <text>           comment on an activity
  admin <subcommand>                     activity and registration management
  watch                                  keep the local cache fresh, email digests
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLogger(cfg.Log.Level)

	if len(args) == 0 {
		fmt.Printf(usage, version)
		return nil
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.close()

	ctx := context.Background()
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return app.signup(ctx, rest)
	case "login":
		return app.login(ctx, rest)
	case "logout":
		return app.logout(ctx)
	case "profile":
		return app.profile(ctx, rest)
	case "list":
		return app.list(ctx, rest)
	case "bookings":
		return app.bookings(ctx)
	case "register":
		return app.register(ctx, rest)
	case "cancel":
		return app.cancel(ctx, rest)
	case "comment":
		return app.comment(ctx, rest)
	case "admin":
		return app.admin(ctx, rest)
	case "watch":
		return app.watch(rest)
	case "help", "-h", "--help":
		fmt.Printf(usage, version)
		return nil
	default:
		return fmt.Errorf("unknown command %q, run sproom help", cmd)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// sessionHolder keeps the active session in memory and feeds the bearer
// token to the gateway. Safe for the watch daemon's concurrent refreshes.
type sessionHolder struct {
	mu   sync.RWMutex
	sess *account.Session
}

func (h *sessionHolder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.sess == nil {
		return ""
	}
	return h.sess.Token
}

func (h *sessionHolder) Current() *account.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sess
}

func (h *sessionHolder) Set(sess *account.Session) {
	h.mu.Lock()
	h.sess = sess
	h.mu.Unlock()
}

// persistedSessions bridges the orchestrators' SessionStore to the sqlite
// store while keeping the in-memory holder in step.
type persistedSessions struct {
	store  *sessionStore.SQLiteStore
	holder *sessionHolder
}

func (p *persistedSessions) Save(ctx context.Context, sess account.Session) error {
	p.holder.Set(&sess)
	return p.store.Save(ctx, sess)
}

func (p *persistedSessions) Clear(ctx context.Context) error {
	p.holder.Set(nil)
	return p.store.Clear(ctx)
}

type app struct {
	cfg       *config.Config
	db        *storage.TimedDB
	client    *gateway.Client
	holder    *sessionHolder
	sessions  *persistedSessions
	snapshots *snapshotStore.SQLiteStore
	coord     *appsync.Coordinator
	tracker   *appsync.Tracker
	term      *notify.Terminal
}

func newApp(cfg *config.Config) (*app, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Cache.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}

	rawDB, err := storage.Open(cfg.Cache.DBPath)
	if err != nil {
		return nil, err
	}
	if err := storage.InitDB(rawDB); err != nil {
		return nil, err
	}
	db := storage.NewTimedDB(rawDB, float64(cfg.Cache.SlowQueryMs))

	key, err := sessionStore.LoadOrCreateKey(cfg.Cache.KeyPath)
	if err != nil {
		return nil, err
	}

	holder := &sessionHolder{}
	sessStore := sessionStore.NewSQLiteStore(db, key)
	if sess, loadErr := sessStore.Load(context.Background()); loadErr == nil {
		holder.Set(&sess)
	} else if loadErr != sessionStore.ErrNoSession {
		slog.Warn("session_load_failed", "error", loadErr)
	}

	client, err := gateway.NewClient(cfg.API.BaseURL, holder, &http.Client{Timeout: cfg.API.Timeout})
	if err != nil {
		return nil, err
	}

	term := notify.NewTerminal(os.Stdout, os.Stdin)
	snapshots := snapshotStore.NewSQLiteStore(db)
	coord := appsync.NewCoordinator(client, appsync.Options{
		Sink:     snapshots,
		Notifier: term,
		Debounce: cfg.Watch.WakeDebounce,
	})

	a := &app{
		cfg:       cfg,
		db:        db,
		client:    client,
		holder:    holder,
		sessions:  &persistedSessions{store: sessStore, holder: holder},
		snapshots: snapshots,
		coord:     coord,
		tracker:   appsync.NewTracker(),
		term:      term,
	}

	// Any 401 outside the registration flows drops the stale session so the
	// next command starts from a clean signed-out state.
	client.SetSessionResetHook(func() {
		if clearErr := a.sessions.Clear(context.Background()); clearErr != nil {
			slog.Warn("session_reset_failed", "error", clearErr)
		}
		term.Info("session expired, please sign in again")
	})

	return a, nil
}

func (a *app) close() {
	a.coord.Close()
	if err := a.db.Close(); err != nil {
		slog.Warn("db_close_failed", "error", err)
	}
}

func (a *app) signup(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: sproom signup <username> <password> [email]")
	}
	input := orchestrators.SignUpInput{Username: args[0], Password: args[1]}
	if len(args) > 2 {
		input.Email = args[2]
	}
	_, err := orchestrators.ExecuteSignUp(ctx, input, orchestrators.SignUpDeps{
		Gateway:  a.client,
		Sessions: a.sessions,
		Notifier: a.term,
	})
	return err
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: sproom login <username> <password>")
	}
	_, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{
		Username: args[0],
		Password: args[1],
	}, orchestrators.LoginDeps{
		Gateway:  a.client,
		Sessions: a.sessions,
		Notifier: a.term,
	})
	return err
}

func (a *app) logout(ctx context.Context) error {
	_, err := orchestrators.ExecuteLogout(ctx, orchestrators.LogoutDeps{
		Sessions:  a.sessions,
		Notifier:  a.term,
		Confirmer: a.term,
	})
	return err
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	nickname := fs.String("nickname", "", "display name")
	emailAddr := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	realName := fs.String("real-name", "", "real name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *nickname == "" && *emailAddr == "" && *phone == "" && *realName == "" {
		user, err := orchestrators.QueryProfile(ctx, orchestrators.QueryProfileDeps{
			Gateway:  a.client,
			Sessions: a.sessions,
			Session:  a.holder.Current(),
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\nemail: %s\nphone: %s\nrole: %s\n",
			user.DisplayName(), user.Username, user.Email, user.Phone, user.Role)
		return nil
	}

	_, err := orchestrators.ExecuteUpdateProfile(ctx, orchestrators.UpdateProfileInput{
		Nickname: *nickname,
		Email:    *emailAddr,
		Phone:    *phone,
		RealName: *realName,
	}, orchestrators.UpdateProfileDeps{
		Gateway:  a.client,
		Sessions: a.sessions,
		Notifier: a.term,
		Session:  a.holder.Current(),
	})
	return err
}

func (a *app) list(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")

	if err := a.coord.Refresh(ctx, true); err != nil {
		// Offline: fall back to the cached snapshot.
		cached, loadErr := a.snapshots.Load(ctx)
		if loadErr != nil || cached.RefreshedAt.IsZero() {
			return err
		}
		a.term.Info("offline, showing cache from " + cached.RefreshedAt.Local().Format("2006-01-02 15:04"))
		snap := appsync.Snapshot{
			Activities:      projections.FilterVisible(cached.Activities),
			MyRegistrations: cached.MyRegistrations,
		}
		snap.Statuses = projections.ComputeStatuses(snap.Activities, snap.MyRegistrations)
		printActivities(snap, query)
		return nil
	}

	printActivities(a.coord.Snapshot(), query)
	return nil
}

func printActivities(snap appsync.Snapshot, query string) {
	activities := snap.Activities
	if query != "" {
		activities = projections.SearchActivities(activities, query)
	}
	if len(activities) == 0 {
		fmt.Println("no activities found")
		return
	}
	for _, act := range activities {
		st := snap.Statuses[act.ID]
		var marks []string
		if st.IsRegistered {
			marks = append(marks, "registered")
		}
		if st.IsFull {
			marks = append(marks, "full")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " [" + strings.Join(marks, ", ") + "]"
		}
		capacity := "unlimited"
		if act.MaxParticipants != nil {
			capacity = fmt.Sprintf("%d/%d", act.CurrentParticipants, *act.MaxParticipants)
		}
		fmt.Printf("%4d  %-30s  %s  %s  %s%s\n",
			act.ID, act.Name, act.StartTime.Local().Format("Jan 2 15:04"), act.Status, capacity, suffix)
	}
}

func (a *app) bookings(ctx context.Context) error {
	if a.holder.Current() == nil {
		return fmt.Errorf("not signed in")
	}
	bookings, err := projections.QueryMyBookings(ctx, a.client)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		fmt.Println("no registrations")
		return nil
	}
	for _, b := range bookings {
		name := "(activity unavailable)"
		when := ""
		if b.Activity != nil {
			name = b.Activity.Name
			when = b.Activity.StartTime.Local().Format("Jan 2 15:04")
		}
		fmt.Printf("%4d  %-30s  %s  %s\n", b.Registration.ID, name, when, registrationStatusLabel(b.Registration.Status))
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: sproom register <activity-id>")
	if err != nil {
		return err
	}
	if refreshErr := a.coord.Refresh(ctx, false); refreshErr != nil {
		slog.Warn("pre_register_refresh_failed", "error", refreshErr)
	}
	return orchestrators.ExecuteRegisterActivity(ctx, orchestrators.RegisterActivityInput{
		ActivityID: id,
	}, orchestrators.RegisterActivityDeps{
		Gateway:   a.client,
		Guard:     a.tracker,
		View:      a.coord,
		Refresher: a.coord,
		Notifier:  a.term,
		Session:   a.holder.Current(),
	})
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	yes := fs.Bool("y", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(fs.Args(), "usage: sproom cancel [-y] <activity-id>")
	if err != nil {
		return err
	}
	var confirmer orchestrators.Confirmer = a.term
	if *yes {
		confirmer = notify.AutoConfirm{}
	}
	if refreshErr := a.coord.Refresh(ctx, false); refreshErr != nil {
		slog.Warn("pre_cancel_refresh_failed", "error", refreshErr)
	}
	return orchestrators.ExecuteCancelRegistration(ctx, orchestrators.CancelRegistrationInput{
		ActivityID: id,
	}, orchestrators.CancelRegistrationDeps{
		Gateway:   a.client,
		Guard:     a.tracker,
		View:      a.coord,
		Refresher: a.coord,
		Remover:   a.coord,
		Notifier:  a.term,
		Confirmer: confirmer,
		Session:   a.holder.Current(),
		OnSessionExpired: func() {
			if clearErr := a.sessions.Clear(ctx); clearErr != nil {
				slog.Warn("session_clear_failed", "error", clearErr)
			}
		},
	})
}

func (a *app) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: sproom comment <activity-id> <text>")
	}
	id, err := parseID(args[:1], "usage: sproom comment <activity-id> <text>")
	if err != nil {
		return err
	}
	_, err = orchestrators.ExecuteCreateComment(ctx, orchestrators.CreateCommentInput{
		ActivityID: id,
		Content:    strings.Join(args[1:], " "),
	}, orchestrators.CreateCommentDeps{
		Gateway:  a.client,
		Notifier: a.term,
		Session:  a.holder.Current(),
	})
	return err
}

func parseID(args []string, usageMsg string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%s", usageMsg)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// watch keeps the cache fresh in the background and emails a digest when
// activity statuses change. SIGUSR1 forces an early refresh; large wall
// clock jumps (laptop resume) do the same.
func (a *app) watch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", a.cfg.Watch.Interval, "refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var sender email.Sender = email.NewNoopSender()
	if a.cfg.Digest.ResendAPIKey != "" {
		sender = email.NewResendSender(a.cfg.Digest.ResendAPIKey, a.cfg.Digest.From)
	}

	// Nobody is reading the terminal; refresh failures go to the log.
	a.coord.SetNotifier(notify.NewNoop())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		digestMu sync.Mutex
		prev     appsync.Snapshot
		primed   bool
	)
	a.coord.SetOnChange(func(snap appsync.Snapshot) {
		digestMu.Lock()
		defer digestMu.Unlock()
		if primed {
			changes := orchestrators.DiffSnapshots(prev, snap)
			if err := orchestrators.ExecuteSendStatusDigest(ctx, changes, orchestrators.DigestDeps{
				Sender: sender,
				To:     a.cfg.Digest.To,
			}); err != nil {
				slog.Error("digest_failed", "error", err)
			}
		}
		prev = snap
		primed = true
	})

	wake := make(chan os.Signal, 1)
	signal.Notify(wake, syscall.SIGUSR1)

	slog.Info("watch_started", "interval", *interval)
	if err := a.coord.Refresh(ctx, false); err != nil {
		slog.Warn("initial_refresh_failed", "error", err)
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	// Wall-clock jump detection: when the gap between clock ticks is far
	// larger than the tick period the machine was asleep, and the cache is
	// stale no matter what the ticker thinks.
	const clockTick = 30 * time.Second
	clock := time.NewTicker(clockTick)
	defer clock.Stop()
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch_stopped")
			return nil
		case <-ticker.C:
			if err := a.coord.Refresh(ctx, false); err != nil {
				slog.Warn("refresh_failed", "error", err)
			}
		case <-wake:
			slog.Debug("wake_signal")
			a.coord.Wake()
		case now := <-clock.C:
			if now.Sub(lastTick) > 2*clockTick {
				slog.Info("clock_jump_detected", "gap", now.Sub(lastTick))
				a.coord.Wake()
			}
			lastTick = now
		}
	}
}

// registrationStatusLabel maps backend status codes to display text.
func registrationStatusLabel(status string) string {
	switch status {
	case registration.StatusPending:
		return "pending"
	case registration.StatusConfirmed:
		return "confirmed"
	default:
		return strings.ToLower(status)
	}
}
