package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/residentdesk/residentdesk/internal/session"
)

// Client is one consumer's view of the auth service: it holds at most one
// current session, persists its token in a TokenStore and publishes
// session changes to its subscribers. It implements session.AuthService.
type Client struct {
	svc   *Service
	store TokenStore

	mu      sync.Mutex
	current *session.Session
	expiry  *time.Timer
	subs    map[int]chan session.Event
	nextID  int
}

var _ session.AuthService = (*Client)(nil)

// SignIn checks the credentials, stores the new token and announces the
// session to subscribers.
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	sess, err := c.svc.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := c.store.Save(sess.AccessToken); err != nil {
		return nil, fmt.Errorf("saving session token: %w", err)
	}

	c.mu.Lock()
	c.setCurrentLocked(sess)
	c.publishLocked(session.Event{Session: sess})
	c.mu.Unlock()

	return sess, nil
}

// SignOut revokes the current session, or the one referenced by the stored
// token, and clears the token store. On error nothing is changed.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()

	if cur == nil {
		token, err := c.store.Load()
		if err != nil {
			return fmt.Errorf("loading session token: %w", err)
		}
		if token != "" {
			sess, err := c.svc.Verify(ctx, token)
			switch {
			case err == nil:
				cur = sess
			case isDeadToken(err):
			default:
				return err
			}
		}
	}

	if cur != nil {
		if err := c.svc.Revoke(ctx, cur.ID); err != nil {
			return fmt.Errorf("revoking session: %w", err)
		}
		c.drop(cur.ID)
	}

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}
	return nil
}

// GetSession returns the session behind the stored token. A token that is
// malformed, expired or revoked is discarded and reported as no session.
func (c *Client) GetSession(ctx context.Context) (*session.Session, error) {
	token, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session token: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	sess, err := c.svc.Verify(ctx, token)
	if err != nil {
		if isDeadToken(err) {
			if clearErr := c.store.Clear(); clearErr != nil {
				slog.Warn("auth: clearing stale session token failed", "error", clearErr)
			}
			return nil, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.setCurrentLocked(sess)
	c.mu.Unlock()

	return sess, nil
}

// Subscribe registers for session changes. Events are buffered; a slow
// reader loses intermediate events but always receives the latest one.
func (c *Client) Subscribe() (<-chan session.Event, func()) {
	ch := make(chan session.Event, 8)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	first := len(c.subs) == 1
	if first {
		c.armExpiryLocked()
	}
	c.mu.Unlock()

	if first {
		c.svc.register(c)
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			close(ch)
			last := len(c.subs) == 0
			if last {
				c.stopExpiryLocked()
			}
			c.mu.Unlock()

			if last {
				c.svc.unregister(c)
			}
		})
	}
}

// Current returns the session this client holds, if any.
func (c *Client) Current() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// drop forgets sessionID if it is the current session, clears the stored
// token and publishes a signed-out event.
func (c *Client) drop(sessionID uuid.UUID) {
	c.mu.Lock()
	if c.current == nil || c.current.ID != sessionID {
		c.mu.Unlock()
		return
	}
	c.setCurrentLocked(nil)
	c.publishLocked(session.Event{})
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		slog.Warn("auth: clearing session token failed", "sessionId", sessionID, "error", err)
	}
}

func (c *Client) setCurrentLocked(sess *session.Session) {
	c.stopExpiryLocked()
	c.current = sess
	c.armExpiryLocked()
}

// armExpiryLocked schedules a signed-out event for when the current session
// expires. Only subscribed clients get a timer; nobody would hear the event
// otherwise.
func (c *Client) armExpiryLocked() {
	if c.expiry != nil || len(c.subs) == 0 {
		return
	}
	sess := c.current
	if sess == nil || sess.ExpiresAt.IsZero() {
		return
	}

	id := sess.ID
	c.expiry = time.AfterFunc(time.Until(sess.ExpiresAt), func() {
		slog.Info("auth: session expired", "sessionId", id)
		c.drop(id)
	})
}

func (c *Client) stopExpiryLocked() {
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
}

func (c *Client) publishLocked(ev session.Event) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func isDeadToken(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrSessionRevoked)
}
