package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-formbuilder/pkg/render"
)

const flashCookie = "fb_flash"

// flash carries alerts across a post/redirect/get round trip in a short lived
// cookie.
type flash struct {
	path string
}

func (f flash) set(w http.ResponseWriter, alerts ...render.Alert) {
	alerts = render.MergeAlerts(nil, alerts...)
	if len(alerts) == 0 {
		return
	}
	payload, err := json.Marshal(alerts)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     f.path,
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// take returns the pending alerts and expires the cookie.
func (f flash) take(w http.ResponseWriter, r *http.Request) []render.Alert {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     f.path,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var alerts []render.Alert
	if err := json.Unmarshal(raw, &alerts); err != nil {
		return nil
	}
	return render.MergeAlerts(nil, alerts...)
}
