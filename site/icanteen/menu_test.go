package icanteen

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"mojejecna/site"
)

const menuDay = `
<div class="jidelnicekDen" id="day-2024-03-15">
<div class="jidelnicekTop">Pátek 15.03.2024</div>
<span class="vydejna">Jídelna Ječná</span>
<div class="jidelnicekItem">
<a class="btn order-action"
   title="objednat od: 10.03.2024 10:00|objednat do: 14.03.2024 14:00|zrušit do: 14.03.2024 14:00|výdej do: 15.03.2024 14:00"
   onclick="ajaxOrder(this, 'db/dbProcessOrder.jsp?time=1710421200&amp;token=abc&amp;ID=42', '', null)">
<span class="button-link-align">objednat</span></a>
<span class="jidelnicekItemNazev">Gulášová polévka, Svíčková na smetaně<sub>1, 3, 7</sub></span>
<span class="important">35,00 Kč</span>
<a class="btn burza-out" onclick="ajaxOrder(this, 'db/dbProcessOrder.jsp?burza=out&amp;ID=42', '', null)"></a>
</div>
<div class="jidelnicekItem">
<a class="btn order-action disabled" onclick="ajaxOrder(this, 'db/dbProcessOrder.jsp?ID=43', '', null)">
<i class="fa fa-check"></i>
<span class="button-link-align">zrušit</span></a>
<span class="jidelnicekItemNazev">Gulášová polévka, Kuře na paprice<sub>1, 7</sub></span>
<span class="important">35,00 Kč</span>
<a class="btn burza-in" onclick="ajaxOrder(this, 'db/dbProcessOrder.jsp?burza=in&amp;ID=43', '', null)"></a>
</div>
<div class="jidelnicekItem">
<a class="btn order-action" onclick="ajaxOrder(this, 'db/dbProcessOrder.jsp?ID=44', '', null)">
<span class="button-link-align">vyzvednout</span></a>
<span class="jidelnicekItemNazev">Neznámá akce</span>
</div>
</div>`

func menuDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + html + "</body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParseMenu(t *testing.T) {
	days := parseMenu(menuDoc(t, menuDay))
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	day := days[0]
	if day.Date != "2024-03-15" || day.Location != "Jídelna Ječná" {
		t.Errorf("unexpected day header: %+v", day)
	}
	if day.Soup != "Gulášová polévka" {
		t.Errorf("soup not split out: %q", day.Soup)
	}
	// The third item carries an unknown action label and must be dropped.
	if len(day.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(day.Items))
	}

	first := day.Items[0]
	if first.Name != "Svíčková na smetaně" || first.Price != "35,00 Kč" {
		t.Errorf("unexpected first item: %+v", first)
	}
	if first.Action != "order" || first.Ordered || first.Disabled {
		t.Errorf("unexpected first item state: %+v", first)
	}
	if !reflect.DeepEqual(first.Allergens, []string{"1", "3", "7"}) {
		t.Errorf("allergens wrong: %v", first.Allergens)
	}
	if first.OrderFrom != "10.03.2024 10:00" || first.OrderUntil != "14.03.2024 14:00" ||
		first.CancelUntil != "14.03.2024 14:00" || first.PickupUntil != "15.03.2024 14:00" {
		t.Errorf("deadlines wrong: %+v", first)
	}
	wantParams := url.Values{"time": {"1710421200"}, "token": {"abc"}, "ID": {"42"}}
	if !reflect.DeepEqual(first.Params, wantParams) {
		t.Errorf("params = %v, want %v", first.Params, wantParams)
	}
	if !first.Burzable || first.BurzaType != site.BurzaOut {
		t.Errorf("exchange control wrong: %+v", first)
	}
	if first.BurzaParams.Get("burza") != "out" || first.BurzaParams.Get("ID") != "42" {
		t.Errorf("exchange params wrong: %v", first.BurzaParams)
	}

	second := day.Items[1]
	if second.Action != "cancel" || !second.Ordered || !second.Disabled {
		t.Errorf("unexpected second item state: %+v", second)
	}
	if !second.Burzable || second.BurzaType != site.BurzaIn {
		t.Errorf("ordered item should be releasable into the exchange: %+v", second)
	}
}

func TestHandlerParams(t *testing.T) {
	params := handlerParams(`ajaxOrder(this, 'db/dbProcessOrder.jsp?ID=42&token=a+b', '', null)`)
	if params.Get("ID") != "42" || params.Get("token") != "a b" {
		t.Errorf("unexpected params: %v", params)
	}
	if handlerParams(`doSomething('noQueryHere')`) != nil {
		t.Error("handler without a query string should yield nil params")
	}
}

// TestMenuReauth serves a hollow month page (no pickup location) until a
// re-login happens, and checks Menu recovers with exactly one retry.
func TestMenuReauth(t *testing.T) {
	loggedOut := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == loginPath:
			io.WriteString(w, canteenLoginPage)
		case r.Method == "POST" && r.URL.Path == checkPath:
			loggedOut = false
			http.Redirect(w, r, targetURL, http.StatusFound)
		case r.URL.Path == targetURL:
			io.WriteString(w, "<html></html>")
		case r.URL.Path == monthPath:
			if loggedOut {
				io.WriteString(w, `<html><body><div class="jidelnicekDen" id="day-2024-03-15"></div></body></html>`)
				return
			}
			io.WriteString(w, "<html><body>"+menuDay+"</body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })

	days, err := Menu(canteenUser(), site.NewSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 || days[0].Location == "" {
		t.Errorf("menu not recovered after re-login: %+v", days)
	}
}

// TestMenuReauthBounded keeps the pickup location empty even after a
// successful re-login; Menu must give up with a session error instead of
// recursing again.
func TestMenuReauthBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == loginPath:
			io.WriteString(w, canteenLoginPage)
		case r.Method == "POST" && r.URL.Path == checkPath:
			http.Redirect(w, r, targetURL, http.StatusFound)
		case r.URL.Path == targetURL:
			io.WriteString(w, "<html></html>")
		default:
			io.WriteString(w, `<html><body><div class="jidelnicekDen" id="day-2024-03-15"></div></body></html>`)
		}
	}))
	t.Cleanup(srv.Close)
	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })

	_, err := Menu(canteenUser(), site.NewSession())
	if err != site.ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired, got: %v", err)
	}
}

// TestMenuIdempotent fetches the month twice over an unchanged session;
// the two extractions must be structurally identical.
func TestMenuIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != monthPath {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "<html><body>"+menuDay+"</body></html>")
	}))
	t.Cleanup(srv.Close)
	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })

	session := site.NewSession()
	first, err := Menu(canteenUser(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Menu(canteenUser(), session)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated fetch diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestBurza(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != burzaPath {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "<html><body>"+menuDay+"</body></html>")
	}))
	t.Cleanup(srv.Close)
	old := BaseURL
	BaseURL = srv.URL
	t.Cleanup(func() { BaseURL = old })

	items, err := Burza(canteenUser(), site.NewSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}
