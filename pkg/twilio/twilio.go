package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	twiliogo "github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const (
	// MaxMessageLength is the WhatsApp body limit enforced by Twilio.
	MaxMessageLength = 1600

	defaultAPIBaseURL = "https://api.twilio.com"
	whatsappPrefix    = "whatsapp:"
)

var ErrNotConfigured = errors.New("twilio credentials are not configured")

type Config struct {
	AccountSID      string        `envconfig:"ACCOUNT_SID" split_words:"true"`
	AuthToken       string        `split_words:"true"`
	WhatsappNumber  string        `envconfig:"WHATSAPP_NUMBER" split_words:"true"`
	ValidateWebhook bool          `split_words:"true" default:"true"`
	PublicURL       string        `envconfig:"PUBLIC_URL" split_words:"true"`
	APIBaseURL      string        `envconfig:"API_BASE_URL" split_words:"true" default:"https://api.twilio.com"`
	Timeout         time.Duration `split_words:"true" default:"10s"`
}

// Client sends WhatsApp messages through the Twilio REST client and verifies
// webhook signatures.
type Client struct {
	rest           *twiliogo.RestClient
	validator      twclient.RequestValidator
	accountSID     string
	authToken      string
	whatsappNumber string
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.APIBaseURL)
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	base, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("twilio api base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	number := strings.TrimSpace(cfg.WhatsappNumber)
	if number != "" {
		number = FormatWhatsAppNumber(number)
	}

	accountSID := strings.TrimSpace(cfg.AccountSID)
	authToken := strings.TrimSpace(cfg.AuthToken)

	rest := twiliogo.NewRestClientWithParams(twiliogo.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	httpClient := &http.Client{Timeout: timeout}
	if strings.TrimRight(baseURL, "/") != defaultAPIBaseURL {
		httpClient.Transport = rebaseTransport{base: base, next: http.DefaultTransport}
	}
	if c, ok := rest.Client.(*twclient.Client); ok {
		c.HTTPClient = httpClient
	}

	return &Client{
		rest:           rest,
		validator:      twclient.NewRequestValidator(authToken),
		accountSID:     accountSID,
		authToken:      authToken,
		whatsappNumber: number,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Configured reports whether the client can send messages.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.authToken != "" && c.whatsappNumber != ""
}

func (c *Client) WhatsAppNumber() string {
	return c.whatsappNumber
}

// SendWhatsApp creates a message through the Messages API and returns its SID.
// Bodies longer than MaxMessageLength are truncated.
func (c *Client) SendWhatsApp(ctx context.Context, to string, body string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("twilio: send message: %w", err)
	}

	params := &openapi.CreateMessageParams{}
	params.SetPathAccountSid(c.accountSID)
	params.SetFrom(c.whatsappNumber)
	params.SetTo(FormatWhatsAppNumber(to))
	params.SetBody(Truncate(body, MaxMessageLength))

	resp, err := c.rest.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio: send message: %w", err)
	}
	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// ValidateSignature checks an X-Twilio-Signature header against the full
// request URL and the POST parameters.
func (c *Client) ValidateSignature(signature string, fullURL string, params url.Values) bool {
	if c.authToken == "" || signature == "" {
		return false
	}
	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	return c.validator.Validate(fullURL, flat, signature)
}

// rebaseTransport points the REST client at a different API host, such as a
// regional mock or a test server.
type rebaseTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t rebaseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.base.Scheme
	r.URL.Host = t.base.Host
	r.Host = t.base.Host
	return t.next.RoundTrip(r)
}

// FormatWhatsAppNumber turns "5491112345678" or "+5491112345678" into
// "whatsapp:+5491112345678". Already prefixed numbers are returned as is.
func FormatWhatsAppNumber(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return whatsappPrefix + number
}

// PhoneNumber strips the "whatsapp:" prefix from a Twilio address.
func PhoneNumber(address string) string {
	return strings.TrimPrefix(strings.TrimSpace(address), whatsappPrefix)
}

// Truncate cuts s to at most limit characters without splitting a rune.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit > 3 {
		return string(runes[:limit-3]) + "..."
	}
	return string(runes[:limit])
}
