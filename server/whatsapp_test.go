package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func (e *testEnv) postWebhook(t *testing.T, form url.Values, signature string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/whatsapp/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set(twilioSignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func inbound(body string) url.Values {
	return url.Values{
		"From":        {"whatsapp:+5491112345678"},
		"To":          {"whatsapp:+14155238886"},
		"Body":        {body},
		"ProfileName": {"Ana"},
		"MessageSid":  {"SM0001"},
	}
}

func TestWhatsAppWebhookRepliesInBackground(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{ValidateSignature: true, PublicURL: "https://shop.example.com/"})
	rec := env.postWebhook(t, inbound("hola"), "good")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("webhook = %d %q, want 200 OK", rec.Code, rec.Body.String())
	}
	env.srv.Wait()

	if len(env.conv.calls) != 1 || env.conv.calls[0] != "+5491112345678:hola" {
		t.Fatalf("conversation calls = %v", env.conv.calls)
	}
	if len(env.wa.sent) != 1 || env.wa.sent[0].to != "+5491112345678" || env.wa.sent[0].body != env.conv.reply {
		t.Fatalf("sent = %+v", env.wa.sent)
	}
	if env.wa.signedURL != "https://shop.example.com/whatsapp/webhook" {
		t.Fatalf("signed url = %q", env.wa.signedURL)
	}
}

func TestWhatsAppWebhookRejectsBadSignature(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{ValidateSignature: true})
	for _, sig := range []string{"", "forged"} {
		rec := env.postWebhook(t, inbound("hola"), sig)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("signature %q status = %d, want 401", sig, rec.Code)
		}
	}
	env.srv.Wait()
	if len(env.conv.calls) != 0 {
		t.Fatalf("conversation called %d times, want 0", len(env.conv.calls))
	}
}

func TestWhatsAppWebhookSignatureDisabled(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{ValidateSignature: false})
	if rec := env.postWebhook(t, inbound("hola"), ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env.srv.Wait()
	if len(env.conv.calls) != 1 {
		t.Fatalf("conversation calls = %d, want 1", len(env.conv.calls))
	}
}

func TestWhatsAppWebhookIgnoresEmptyBody(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})
	rec := env.postWebhook(t, inbound("   "), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env.srv.Wait()
	if len(env.conv.calls) != 0 || len(env.wa.sent) != 0 {
		t.Fatalf("empty body should be ignored, calls=%v sent=%v", env.conv.calls, env.wa.sent)
	}
}

func TestWhatsAppUnconfiguredDropsReply(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})
	env.wa.configured = false
	env.postWebhook(t, inbound("hola"), "")
	env.srv.Wait()

	if len(env.conv.calls) != 1 {
		t.Fatalf("conversation calls = %d, want 1", len(env.conv.calls))
	}
	if len(env.wa.sent) != 0 {
		t.Fatalf("sent = %v, want none", env.wa.sent)
	}
}

func TestWhatsAppStatus(t *testing.T) {
	t.Parallel()

	env := newTestServer(t, WebhookOptions{})
	rec := env.do(t, http.MethodPost, "/whatsapp/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["configured"] != true || body["whatsappNumber"] != "whatsapp:+14155238886" {
		t.Fatalf("body = %v", body)
	}
}
