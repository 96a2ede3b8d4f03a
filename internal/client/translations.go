package client

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/christophergoltz/elogio-sub001/internal/rpc"
)

// Translation namespaces loaded after login and during the calendar
// bootstrap. The exact set mirrors what the web portal requests.
var (
	portalTranslationPrefixes = []string{
		"kernel.commun",
		"portail",
		"applicatif.temps",
		"applicatif.badgeage",
	}

	calendarTranslationPrefixes = []string{
		"applicatif.planning",
		"applicatif.intranet",
	}
)

// loadTranslations fetches the i18n namespaces in parallel. Individual
// failures are logged and ignored: a missing namespace degrades labels,
// not data.
func (c *Client) loadTranslations(ctx context.Context, prefixes []string) {
	g, gctx := errgroup.WithContext(ctx)

	for _, prefix := range prefixes {
		prefix := prefix

		g.Go(func() error {
			body := rpc.Translations(
				c.state.SessionID, c.state.DataEmployeeID(), prefix, c.clock(),
			)

			if _, err := c.call(gctx, body); err != nil {
				c.logger.Warn("loading translations failed",
					slog.String("prefix", prefix),
					slog.Any("error", err),
				)
			}

			return nil
		})
	}

	_ = g.Wait()
}
