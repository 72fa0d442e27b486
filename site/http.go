package site

import (
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"codeberg.org/kvo/std/errors"
)

// UserAgent identifies the client to both portals.
const UserAgent = "Mozilla/5.0 (compatible; MojeJecnaBot/1.0)"

const maxRedirects = 10

// NewClient returns the HTTP client used for portal requests. Redirects
// are not followed automatically: the portals rotate session cookies on
// intermediate responses too, so RoundTrip steps through them itself. The
// canteen portal runs on unreliable infrastructure, hence the timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// RoundTrip executes req, absorbing the cookies of every response in the
// redirect chain into session and refreshing the Cookie header between
// hops. The final response is returned with its body unread.
func RoundTrip(client *http.Client, req *http.Request, session *Session) (*http.Response, error) {
	req.Header.Set("User-Agent", UserAgent)
	if header := session.Header(); header != "" {
		req.Header.Set("Cookie", header)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, netError(err)
	}
	session.Absorb(resp)
	for i := 0; i < maxRedirects; i++ {
		if !redirected(resp.StatusCode) {
			return resp, nil
		}
		location, err := resp.Location()
		if err != nil {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		req, err = http.NewRequest("GET", location.String(), nil)
		if err != nil {
			return nil, errors.New(err.Error(), nil)
		}
		req.Header.Set("User-Agent", UserAgent)
		if header := session.Header(); header != "" {
			req.Header.Set("Cookie", header)
		}
		resp, err = client.Do(req)
		if err != nil {
			return nil, netError(err)
		}
		session.Absorb(resp)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil, errors.New("too many redirects", nil)
}

func redirected(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// netError translates transport failures into site sentinels where
// possible. Timeouts get their own error kind so callers can tell a slow
// portal apart from a broken one.
func netError(err error) error {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return errors.New(err.Error(), nil)
}
