package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicesite/contact/application"
	"voicesite/contact/domain"
	"voicesite/middleware/ratelimit"
	"voicesite/middleware/ratelimit/infra"
)

type countingNotifier struct {
	calls int
	fail  bool
}

func (c *countingNotifier) Name() string { return "fake" }

func (c *countingNotifier) Send(context.Context, domain.Notification) domain.DeliveryResult {
	c.calls++
	if c.fail {
		return domain.Failed("fake", context.DeadlineExceeded)
	}
	return domain.Sent("fake")
}

type panicSubmitter struct{}

func (panicSubmitter) Submit(context.Context, domain.Submission) (application.Outcome, error) {
	panic("boom")
}

func newHandler(to string, n *countingNotifier, fallback *countingNotifier) http.Handler {
	svc := application.Service{
		Notifications: application.Dispatcher{
			Notifiers: []domain.Notifier{n},
			Fallback:  fallback,
		},
		To: to,
	}
	return Handler(HandlerOptions{Service: svc})
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

const validBody = `{"name":"Ana","email":"ana@example.com","company":"","message":"Hello","website":""}`

func TestHandlerAccepts(t *testing.T) {
	n := &countingNotifier{}
	rr := postJSON(t, newHandler("owner@example.com", n, &countingNotifier{}), validBody)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, domain.MsgAccepted, body["message"])
	assert.Equal(t, 1, n.calls)
}

func TestHandlerHoneypotLooksLikeSuccess(t *testing.T) {
	n := &countingNotifier{}
	h := newHandler("owner@example.com", n, &countingNotifier{})

	normal := postJSON(t, h, validBody)
	bot := postJSON(t, h, `{"name":"x","email":"x","message":"","website":"http://spam"}`)

	assert.Equal(t, http.StatusOK, bot.Code)
	assert.Equal(t, normal.Body.String(), bot.Body.String())
	assert.Equal(t, 1, n.calls)
}

func TestHandlerValidation(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"missing name":  {`{"email":"a@b.co","message":"hi"}`, domain.MsgMissingFields},
		"blank message": {`{"name":"Ana","email":"a@b.co","message":"   "}`, domain.MsgMissingFields},
		"empty body":    {``, domain.MsgMissingFields},
		"bad email":     {`{"name":"Ana","email":"ana@","message":"hi"}`, domain.MsgInvalidEmail},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			n := &countingNotifier{}
			rr := postJSON(t, newHandler("owner@example.com", n, &countingNotifier{}), tc.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.want, decode(t, rr)["error"])
			assert.Equal(t, 0, n.calls)
		})
	}
}

func TestHandlerMalformedBody(t *testing.T) {
	rr := postJSON(t, newHandler("owner@example.com", &countingNotifier{}, &countingNotifier{}), `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgInvalidBody, decode(t, rr)["error"])
}

func TestHandlerBodyTooLarge(t *testing.T) {
	svc := application.Service{To: "owner@example.com"}
	h := Handler(HandlerOptions{Service: svc, MaxBodyBytes: 16})

	rr := postJSON(t, h, validBody)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgInvalidBody, decode(t, rr)["error"])
}

func TestHandlerNotConfigured(t *testing.T) {
	n := &countingNotifier{}
	rr := postJSON(t, newHandler("", n, &countingNotifier{}), validBody)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, domain.MsgNotConfigured, decode(t, rr)["error"])
	assert.Equal(t, 0, n.calls)
}

func TestHandlerDeliveryFailureStillSucceeds(t *testing.T) {
	n := &countingNotifier{fail: true}
	fallback := &countingNotifier{}
	rr := postJSON(t, newHandler("owner@example.com", n, fallback), validBody)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decode(t, rr)["success"])
	assert.Equal(t, 1, fallback.calls)
}

func TestHandlerFormEncoded(t *testing.T) {
	n := &countingNotifier{}
	form := url.Values{"name": {"Ana"}, "email": {"ana@example.com"}, "message": {"Hi"}}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	newHandler("owner@example.com", n, &countingNotifier{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, n.calls)
}

func TestHandlerRecoversPanic(t *testing.T) {
	rr := postJSON(t, Handler(HandlerOptions{Service: panicSubmitter{}}), validBody)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, domain.MsgUnexpected, decode(t, rr)["error"])
}

func TestHandlerBehindRateLimit(t *testing.T) {
	n := &countingNotifier{}
	store := infra.NewStore(5, time.Minute)
	h := ratelimit.Middleware(ratelimit.Options{Store: store})(newHandler("owner@example.com", n, &countingNotifier{}))

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, postJSON(t, h, validBody).Code, "request %d", i+1)
	}
	// o sexto é barrado antes do corpo ser lido, mesmo malformado
	rr := postJSON(t, h, `{"name":`)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, ratelimit.TooManyRequestsMessage, decode(t, rr)["error"])
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, 5, n.calls)
}

func TestHandlerHoneypotConsumesAdmissionSlot(t *testing.T) {
	n := &countingNotifier{}
	store := infra.NewStore(5, time.Minute)
	h := ratelimit.Middleware(ratelimit.Options{Store: store})(newHandler("owner@example.com", n, &countingNotifier{}))

	bot := `{"name":"x","email":"x@example.com","message":"spam","website":"http://spam"}`
	for i := 0; i < 5; i++ {
		rr := postJSON(t, h, bot)
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
		assert.Equal(t, true, decode(t, rr)["success"])
	}
	// a janela foi gasta por respostas de honeypot
	rr := postJSON(t, h, validBody)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, 0, n.calls)
}

func TestHandlerNonStringHoneypot(t *testing.T) {
	cases := []struct {
		name    string
		website string
		bot     bool
	}{
		{"number", `1`, true},
		{"true", `true`, true},
		{"object", `{"a":1}`, true},
		{"array", `[]`, true},
		{"null", `null`, false},
		{"false", `false`, false},
		{"zero", `0`, false},
		{"empty string", `""`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := &countingNotifier{}
			h := newHandler("owner@example.com", n, &countingNotifier{})

			body := `{"name":"Ana","email":"ana@example.com","message":"Hello","website":` + tc.website + `}`
			rr := postJSON(t, h, body)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, true, decode(t, rr)["success"])
			if tc.bot {
				assert.Equal(t, 0, n.calls)
			} else {
				assert.Equal(t, 1, n.calls)
			}
		})
	}
}
