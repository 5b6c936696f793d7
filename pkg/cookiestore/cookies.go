package cookiestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

// Replace stores cookies as the full contents of profile.
func (s *Store) Replace(ctx context.Context, profile string, cookies []webdriver.Cookie) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if strings.TrimSpace(profile) == "" {
		return errors.New("cookiestore: profile is required")
	}
	return withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM cookies WHERE profile = ?", profile); err != nil {
			return fmt.Errorf("clear profile %s: %w", profile, err)
		}
		if err := insertCookies(ctx, tx, profile, cookies, s.now().UTC()); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Merge upserts cookies into profile, keyed by domain, path and name.
func (s *Store) Merge(ctx context.Context, profile string, cookies []webdriver.Cookie) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if strings.TrimSpace(profile) == "" {
		return errors.New("cookiestore: profile is required")
	}
	return withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if err := insertCookies(ctx, tx, profile, cookies, s.now().UTC()); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func insertCookies(ctx context.Context, tx *sql.Tx, profile string, cookies []webdriver.Cookie, savedAt time.Time) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cookies (profile, domain, path, name, value, secure, http_only, expiry, same_site, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile, domain, path, name) DO UPDATE SET
			value = excluded.value,
			secure = excluded.secure,
			http_only = excluded.http_only,
			expiry = excluded.expiry,
			same_site = excluded.same_site,
			saved_at = excluded.saved_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cookies {
		if c.Name == "" {
			return fmt.Errorf("cookiestore: cookie without a name in profile %s", profile)
		}
		if _, err := stmt.ExecContext(ctx, profile, c.Domain, c.Path, c.Name, c.Value,
			c.Secure, c.HTTPOnly, c.Expiry, c.SameSite, savedAt); err != nil {
			return fmt.Errorf("save cookie %s: %w", c.Name, err)
		}
	}
	return nil
}

// Load returns the unexpired cookies of profile ordered by domain, path and
// name.
func (s *Store) Load(ctx context.Context, profile string) ([]webdriver.Cookie, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value, path, domain, secure, http_only, expiry, same_site
		FROM cookies
		WHERE profile = ? AND (expiry = 0 OR expiry > ?)
		ORDER BY domain, path, name`, profile, s.now().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []webdriver.Cookie
	for rows.Next() {
		var c webdriver.Cookie
		if err := rows.Scan(&c.Name, &c.Value, &c.Path, &c.Domain, &c.Secure, &c.HTTPOnly, &c.Expiry, &c.SameSite); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Profiles lists stored profile names.
func (s *Store) Profiles(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT profile FROM cookies ORDER BY profile")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a profile. It reports how many cookies were dropped.
func (s *Store) Delete(ctx context.Context, profile string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrStoreClosed
	}
	var n int64
	err := withRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM cookies WHERE profile = ?", profile)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// Export saves every cookie visible to the session's current page as the
// contents of profile.
func (s *Store) Export(ctx context.Context, sess *webdriver.Session, profile string) (int, error) {
	cookies, err := sess.Cookies(ctx)
	if err != nil {
		return 0, fmt.Errorf("read cookies: %w", err)
	}
	if err := s.Replace(ctx, profile, cookies); err != nil {
		return 0, err
	}
	return len(cookies), nil
}

// Import adds the stored cookies of profile to the session. The browser
// only accepts cookies for the current page's domain, so callers navigate
// first. Rejected cookies are skipped and reported together.
func (s *Store) Import(ctx context.Context, sess *webdriver.Session, profile string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cookies, err := s.Load(ctx, profile)
	if err != nil {
		return 0, err
	}
	return AddCookies(ctx, sess, cookies, logger.With(slog.String("profile", profile)))
}

// AddCookies adds cookies to the session one by one, skipping and
// collecting the ones the browser refuses.
func AddCookies(ctx context.Context, sess *webdriver.Session, cookies []webdriver.Cookie, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	added := 0
	var errs []error
	for _, c := range cookies {
		if err := sess.AddCookie(ctx, c); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return added, err
			}
			logger.Warn("cookie rejected",
				slog.String("name", c.Name),
				slog.String("domain", c.Domain),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("cookie %s: %w", c.Name, err))
			continue
		}
		added++
	}
	return added, errors.Join(errs...)
}

// ForSite keeps the cookies that belong to the same registrable domain as
// pageURL. Cookies without a domain are host cookies and always kept.
func ForSite(cookies []webdriver.Cookie, pageURL string) []webdriver.Cookie {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	site := registrableDomain(u.Hostname())

	var out []webdriver.Cookie
	for _, c := range cookies {
		domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
		if domain == "" || registrableDomain(domain) == site {
			out = append(out, c)
		}
	}
	return out
}

func registrableDomain(host string) string {
	host = strings.ToLower(host)
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	// IPs, single labels and bare public suffixes stand for themselves.
	return host
}
