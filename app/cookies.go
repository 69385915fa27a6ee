package app

import (
	"net/http"
	"time"
)

// stagedCookie records one pending cookie change: a value to send, or a
// removal rendered as an expired cookie.
type stagedCookie struct {
	cookie  *http.Cookie
	removed bool
}

// cookieJar collects cookie changes staged during a request. Only the final
// state per name is emitted, in first-staged order, so repeated writes to one
// name produce a single Set-Cookie header.
type cookieJar struct {
	order  []string
	staged map[string]stagedCookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{staged: make(map[string]stagedCookie)}
}

func (j *cookieJar) set(ck *http.Cookie) {
	if _, ok := j.staged[ck.Name]; !ok {
		j.order = append(j.order, ck.Name)
	}
	j.staged[ck.Name] = stagedCookie{cookie: ck}
}

func (j *cookieJar) remove(name, path, domain string) {
	if _, ok := j.staged[name]; !ok {
		j.order = append(j.order, name)
	}
	j.staged[name] = stagedCookie{
		cookie: &http.Cookie{
			Name:    name,
			Path:    path,
			Domain:  domain,
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		},
		removed: true,
	}
}

// lookup reports the staged state of the named cookie: (cookie, true) for a
// staged value, (nil, true) for a staged removal, (nil, false) when the name
// was never staged.
func (j *cookieJar) lookup(name string) (*http.Cookie, bool) {
	sc, ok := j.staged[name]
	if !ok {
		return nil, false
	}
	if sc.removed {
		return nil, true
	}
	return sc.cookie, true
}

// deltas returns the cookies to emit as Set-Cookie headers, removals
// included, in first-staged order.
func (j *cookieJar) deltas() []*http.Cookie {
	if len(j.order) == 0 {
		return nil
	}
	out := make([]*http.Cookie, 0, len(j.order))
	for _, name := range j.order {
		out = append(out, j.staged[name].cookie)
	}
	return out
}
