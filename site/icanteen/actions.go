package icanteen

import (
	"io"
	"net/http"
	"net/url"

	"codeberg.org/kvo/std/errors"

	"mojejecna/site"
)

const orderPath = "/faces/secured/db/dbProcessOrder.jsp"

// Order replays the item's scraped order parameters. The parameters are
// whatever the last menu extraction produced; deadlines are informational
// only and the portal is the sole judge of whether the action still
// applies.
func Order(user site.User, session *site.Session, item site.CanteenItem) error {
	return runAction(session, item.Params)
}

// Exchange replays the item's scraped exchange parameters, releasing an
// ordered meal into the exchange or claiming a released one depending on
// which control the extraction found.
func Exchange(user site.User, session *site.Session, item site.CanteenItem) error {
	return runAction(session, item.BurzaParams)
}

func runAction(session *site.Session, params url.Values) error {
	if len(params) == 0 {
		return site.ErrNoParams
	}
	req, err := http.NewRequest("GET", BaseURL+orderPath+"?"+params.Encode(), nil)
	if err != nil {
		return errors.New(err.Error(), nil)
	}
	resp, err := site.RoundTrip(client, req, session)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return site.ErrInvalidResp
	}
	return nil
}
