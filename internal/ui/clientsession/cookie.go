package clientsession

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const itemPrefix = "item:"

// cookieStorage keeps session values inside the client cookie. Every write
// re-issues the cookie, so writes must happen before the response body.
type cookieStorage struct {
	sess *sessions.Session
	r    *http.Request
	w    http.ResponseWriter
}

func (c *cookieStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	v, ok := c.sess.Values[itemPrefix+key].(string)
	return v, ok, nil
}

func (c *cookieStorage) SetItem(_ context.Context, key, value string) error {
	c.sess.Values[itemPrefix+key] = value
	return c.save()
}

func (c *cookieStorage) RemoveItem(_ context.Context, key string) error {
	if _, ok := c.sess.Values[itemPrefix+key]; !ok {
		return nil
	}
	delete(c.sess.Values, itemPrefix+key)
	return c.save()
}

func (c *cookieStorage) save() error {
	if err := c.sess.Save(c.r, c.w); err != nil {
		return fmt.Errorf("failed to save session cookie: %w", err)
	}
	return nil
}
