package icanteen

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"mojejecna/site"
)

func captureOrders(t *testing.T) *[]url.Values {
	t.Helper()
	var got []url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != orderPath {
			http.NotFound(w, r)
			return
		}
		query, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			t.Errorf("unparsable replayed query: %v", err)
		}
		got = append(got, query)
		io.WriteString(w, "<html></html>")
	}))
	t.Cleanup(srv.Close)
	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })
	return &got
}

func TestOrderReplaysParams(t *testing.T) {
	got := captureOrders(t)
	item := site.CanteenItem{
		Params: url.Values{"time": {"1710421200"}, "token": {"abc"}, "ID": {"42"}},
	}

	err := Order(canteenUser(), site.NewSession(), item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*got))
	}
	// The scraped parameter bag must arrive verbatim, nothing added or
	// dropped.
	if !reflect.DeepEqual((*got)[0], item.Params) {
		t.Errorf("replayed %v, want %v", (*got)[0], item.Params)
	}
}

func TestExchangeReplaysBurzaParams(t *testing.T) {
	got := captureOrders(t)
	item := site.CanteenItem{
		Burzable:    true,
		BurzaType:   site.BurzaIn,
		BurzaParams: url.Values{"burza": {"in"}, "ID": {"43"}},
	}

	err := Exchange(canteenUser(), site.NewSession(), item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*got) != 1 || !reflect.DeepEqual((*got)[0], item.BurzaParams) {
		t.Errorf("replayed %v, want %v", *got, item.BurzaParams)
	}
}

func TestActionWithoutParams(t *testing.T) {
	got := captureOrders(t)

	if err := Order(canteenUser(), site.NewSession(), site.CanteenItem{}); err != site.ErrNoParams {
		t.Errorf("Order: expected ErrNoParams, got: %v", err)
	}
	if err := Exchange(canteenUser(), site.NewSession(), site.CanteenItem{}); err != site.ErrNoParams {
		t.Errorf("Exchange: expected ErrNoParams, got: %v", err)
	}
	if len(*got) != 0 {
		t.Error("no request may reach the portal without params")
	}
}
