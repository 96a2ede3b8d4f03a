// Package client drives the protocol end to end: authentication, the
// calendar module bootstrap, data queries and the caches in front of
// them. One Client owns one session; all of its traffic goes through a
// single injected transport so the server sees one client identity for
// the whole session.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/christophergoltz/elogio-sub001/internal/bwp"
	"github.com/christophergoltz/elogio-sub001/internal/cache"
	"github.com/christophergoltz/elogio-sub001/internal/config"
	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
	"github.com/christophergoltz/elogio-sub001/internal/session"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
	"github.com/christophergoltz/elogio-sub001/internal/transport"
)

// Server paths.
const (
	pathLogin        = "/open/login"
	pathPortal       = "/open/portal"
	pathIntranet     = "/open/intranet"
	pathCalendarPage = "/open/module/calendrier"
	pathRPC          = "/bwt/rpc"

	scriptCalendar         = "/static/bwt/calendrier/calendrier.nocache.js"
	scriptCalendarDeferred = "/static/bwt/calendrier/deferred.js"
)

// csrfHeader carries the token echoed by the first connect call; every
// follow-up RPC must send it back.
const csrfHeader = "X-Bwp-Csrf"

var (
	ErrNotAuthenticated = errors.New("client: not logged in")
	ErrBadCredentials   = errors.New("client: login rejected")
	ErrNoData           = errors.New("client: server returned no usable data")
)

// Client is the facade the UI layer talks to.
type Client struct {
	cfg    *config.Config
	http   transport.Transport
	state  *session.State
	logger *slog.Logger

	presence *cache.MonthCache
	absences *cache.AbsenceCache
	snapshot *cache.Snapshot

	tasks   *taskGroup
	weekSem *semaphore.Weighted

	navDone chan struct{}
	navOnce sync.Once

	clock func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithSnapshot attaches a persistent cache snapshot. The caller keeps
// ownership and closes it after the client is done.
func WithSnapshot(s *cache.Snapshot) Option {
	return func(c *Client) { c.snapshot = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(c *Client) { c.clock = fn }
}

func New(cfg *config.Config, t transport.Transport, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		http:     t,
		state:    &session.State{},
		logger:   slog.Default(),
		presence: cache.NewMonthCache(),
		absences: cache.NewAbsenceCache(cfg.Prefetch.BufferMonths),
		navDone:  make(chan struct{}),
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	parallelism := cfg.Prefetch.WeekParallelism
	if parallelism < 1 {
		parallelism = 1
	}

	c.weekSem = semaphore.NewWeighted(int64(parallelism))
	c.tasks = newTaskGroup(c.logger)

	return c
}

// IsAuthenticated reports whether data queries can be issued.
func (c *Client) IsAuthenticated() bool {
	return c.state.Authenticated()
}

// EmployeeID returns the id used for data queries.
func (c *Client) EmployeeID() int {
	return c.state.DataEmployeeID()
}

// Login runs the bootstrap sequence against the server. It is a no-op
// on an already authenticated client.
func (c *Client) Login(ctx context.Context) error {
	if c.state.Authenticated() {
		return nil
	}

	a := &authenticator{c}

	return a.run(ctx)
}

// StartBackgroundWarmup launches the fire-and-forget prefetches: the
// calendar navigation pages and the initial absence window.
func (c *Client) StartBackgroundWarmup() {
	c.tasks.Go("calendar-navigation", c.prefetchNavigation)

	c.tasks.Go("absence-warmup", func(ctx context.Context) error {
		now := timeutil.MonthOf(c.clock())
		from := now.Add(-c.cfg.Prefetch.InitialBack)
		to := now.Add(c.cfg.Prefetch.InitialForward)

		cal, err := c.fetchAbsences(ctx, from.First(), to.Last())
		if err != nil {
			return err
		}

		c.absences.Store(cal)

		return nil
	})
}

// Logout cancels all background work, persists the caches and clears
// the session. The task group must drain before the transport can be
// torn down.
func (c *Client) Logout() error {
	c.tasks.Shutdown()

	var err error

	if c.snapshot != nil {
		err = c.snapshot.SaveAll(c.presence, c.absences)
	}

	c.state.Reset()

	return err
}

// RestoreSnapshot loads previously persisted months around the current
// one into the in-memory caches.
func (c *Client) RestoreSnapshot() error {
	if c.snapshot == nil {
		return nil
	}

	now := timeutil.MonthOf(c.clock())
	from := now.Add(-c.cfg.Prefetch.InitialBack)
	to := now.Add(c.cfg.Prefetch.InitialForward)

	for m := from; !to.Before(m); m = m.Add(1) {
		rec, err := c.snapshot.LoadPresence(m)
		if err != nil {
			return err
		}

		if rec != nil {
			c.presence.Put(rec)
		}

		abs, err := c.snapshot.LoadAbsences(m)
		if err != nil {
			return err
		}

		if abs != nil {
			c.absences.Store(absenceMonthToCalendar(abs))
		}
	}

	return nil
}

// send posts one RPC body and returns both the tokenized message and
// the raw response, for callers that need response headers.
func (c *Client) send(
	ctx context.Context,
	body string,
	obfuscate bool,
) (*rpc.Message, *transport.Response, error) {
	now := c.clock()

	// Millisecond timestamp query string for cache busting.
	url := fmt.Sprintf("%s%s?ts=%d", c.cfg.Server.URL, pathRPC, now.UnixMilli())

	headers := map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"X-Kelio-Stat":     strconv.FormatInt(now.UnixMilli(), 10),
	}

	if c.state.BwpCSRFToken != "" {
		headers[csrfHeader] = c.state.BwpCSRFToken
	}

	var (
		res *transport.Response
		err error
	)

	if obfuscate {
		headers["Content-Type"] = transport.ContentTypeBWP
		res, err = c.http.PostRaw(ctx, url, []byte(bwp.Encode(body, nil)), headers, c.state.SessionCookie)
	} else {
		headers["Content-Type"] = "text/plain;charset=UTF-8"
		res, err = c.http.Post(ctx, url, body, headers, c.state.SessionCookie)
	}

	if err != nil {
		return nil, nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, res, fmt.Errorf("client: rpc returned status %d", res.StatusCode)
	}

	decoded, err := bwp.Decode(res.Body)
	if err != nil {
		return nil, res, fmt.Errorf("client: decoding response: %w", err)
	}

	msg, err := rpc.Tokenize(decoded.Decoded)
	if err != nil {
		return nil, res, fmt.Errorf("client: tokenizing response: %w", err)
	}

	return msg, res, nil
}

// call posts one obfuscated RPC body.
func (c *Client) call(ctx context.Context, body string) (*rpc.Message, error) {
	msg, _, err := c.send(ctx, body, true)

	return msg, err
}

func absenceMonthToCalendar(rec *models.AbsenceMonth) *models.AbsenceCalendar {
	return &models.AbsenceCalendar{
		Start:  rec.Month.First(),
		End:    rec.Month.Last(),
		Days:   rec.Days,
		Legend: rec.Legend,
	}
}
