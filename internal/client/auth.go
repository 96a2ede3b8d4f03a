package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/christophergoltz/elogio-sub001/internal/parse"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
)

var (
	errNoCSRFToken = errors.New("client: login page carries no CSRF token")
	errNoSessionID = errors.New("client: portal page carries no session id")
)

var (
	// Hidden inputs on the login and portal pages.
	csrfPattern      = regexp.MustCompile(`name="_csrf"\s+value="([^"]+)"`)
	sessionIDPattern = regexp.MustCompile(`id="bwt-session"[^>]*value="([^"]+)"`)
)

// authenticator runs the login bootstrap against the shared session
// state. All steps go through the client's single transport; the server
// ties the session to that client identity and rejects requests from
// any other.
type authenticator struct {
	c *Client
}

func (a *authenticator) run(ctx context.Context) error {
	if err := a.fetchLoginPage(ctx); err != nil {
		return err
	}

	if err := a.submitLogin(ctx); err != nil {
		return err
	}

	if err := a.fetchPortal(ctx); err != nil {
		return err
	}

	if err := a.connectBWP(ctx); err != nil {
		return err
	}

	a.connectPush(ctx)

	if err := a.resolveEmployeeID(ctx); err != nil {
		return err
	}

	// The server initializes per-session i18n state from these; data
	// queries fail without them.
	a.c.loadTranslations(ctx, portalTranslationPrefixes)

	a.c.logger.Info("login complete",
		slog.String("session_id", a.c.state.SessionID),
		slog.Int("employee_id", a.c.state.EmployeeID()),
	)

	return nil
}

func (a *authenticator) fetchLoginPage(ctx context.Context) error {
	res, err := a.c.http.Get(ctx, a.c.cfg.Server.URL+pathLogin, "")
	if err != nil {
		return fmt.Errorf("client: fetching login page: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("client: login page returned status %d", res.StatusCode)
	}

	match := csrfPattern.FindStringSubmatch(res.Body)
	if match == nil {
		return errNoCSRFToken
	}

	a.c.state.CSRFToken = match[1]

	if cookie := res.SetCookie(); cookie != "" {
		a.c.state.SessionCookie = cookie
	}

	return nil
}

func (a *authenticator) submitLogin(ctx context.Context) error {
	form := url.Values{
		"username": {a.c.cfg.Account.Username},
		"password": {a.c.cfg.Account.Password},
		"_csrf":    {a.c.state.CSRFToken},
	}

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}

	res, err := a.c.http.Post(
		ctx, a.c.cfg.Server.URL+pathLogin, form.Encode(), headers, a.c.state.SessionCookie,
	)
	if err != nil {
		return fmt.Errorf("client: submitting login: %w", err)
	}

	// A successful login answers with a redirect to the homepage; a
	// failed one redirects back to the login form.
	if res.StatusCode != http.StatusFound ||
		!strings.Contains(res.Header("Location"), "homepage") {
		return ErrBadCredentials
	}

	if cookie := res.SetCookie(); cookie != "" {
		a.c.state.SessionCookie = cookie
	}

	return nil
}

func (a *authenticator) fetchPortal(ctx context.Context) error {
	res, err := a.c.http.Get(ctx, a.c.cfg.Server.URL+pathPortal, a.c.state.SessionCookie)
	if err != nil {
		return fmt.Errorf("client: fetching portal page: %w", err)
	}

	// The session id embedded in every RPC body is issued by the
	// server here; it is never generated locally.
	match := sessionIDPattern.FindStringSubmatch(res.Body)
	if match == nil {
		return errNoSessionID
	}

	a.c.state.SessionID = match[1]

	return nil
}

// connectBWP establishes the BWP session with a raw, non-obfuscated
// connect call and captures the CSRF token echoed in the response
// headers.
func (a *authenticator) connectBWP(ctx context.Context) error {
	body := rpc.ConnectPortal(a.c.state.SessionID, a.c.clock())

	msg, res, err := a.c.send(ctx, body, false)
	if err != nil {
		return fmt.Errorf("client: bwp connect: %w", err)
	}

	if msg.HasException() {
		return fmt.Errorf("%w: connect rejected", ErrBadCredentials)
	}

	if token := res.Header(csrfHeader); token != "" {
		a.c.state.BwpCSRFToken = token
	}

	return nil
}

// connectPush opens the push channel. Failures are logged, not fatal.
func (a *authenticator) connectPush(ctx context.Context) {
	body := rpc.ConnectPush(a.c.state.SessionID, a.c.clock())

	if _, err := a.c.call(ctx, body); err != nil {
		a.c.logger.Warn("push connect failed", slog.Any("error", err))
	}
}

// resolveEmployeeID extracts the dynamic employee id from the
// global-service connect response. A heuristic miss degrades to id 0
// rather than failing the login.
func (a *authenticator) resolveEmployeeID(ctx context.Context) error {
	body := rpc.ConnectGlobal(a.c.state.SessionID, a.c.clock())

	msg, err := a.c.call(ctx, body)
	if err != nil {
		return fmt.Errorf("client: global connect: %w", err)
	}

	a.c.state.SetEmployeeID(parse.EmployeeID(msg))

	return nil
}
