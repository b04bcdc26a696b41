package cams

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"cams-catalog/internal/components/assert"
	"cams-catalog/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const (
	report_client_login        = "client.login"
	report_client_fetch_terms  = "client.fetch-terms"
	report_client_scrape       = "client.scrape-courses"
	report_session_fetch_page  = "session.fetch-page"
	report_session_fetch_all   = "session.fetch-all"
	report_session_logout      = "session.logout"
	report_session_sections    = "session.sections"
)

const (
	endpointTerms    = "/login.asp"
	endpointLogin    = "/ceProcess.asp"
	endpointOffering = "/cePortalOffering.asp"
	endpointLogout   = "/logout.asp"
)

const DefaultBaseUrl = "https://cams.floridapoly.org/student"

var tracer = otel.Tracer("cams-catalog/internal/scrapers/cams")

type ClientOptions struct {
	// BaseUrl is the directory the portal's .asp pages live under.
	BaseUrl string
	// Timeout applies to each request, defaults to 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond throttles all requests made by the client, defaults to 4.
	RequestsPerSecond float64
	// MaxConcurrentPages bounds how many result pages are fetched at once, defaults to 8.
	MaxConcurrentPages int
	UserAgent          string
	// CloudflareBypass tweaks the TLS fingerprint and headers of requests.
	CloudflareBypass bool
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Second * 30
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 4
	}
	if o.MaxConcurrentPages <= 0 {
		o.MaxConcurrentPages = 8
	}
	if o.UserAgent == "" {
		o.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}
	return o
}

// Client talks to a CAMS portal. It holds no session state of its own, every
// Login creates an independent AuthSession.
type Client struct {
	BaseUrl *url.URL

	options     ClientOptions
	rateLimiter *rate.Limiter
	tel         telemetry.API
}

func NewClient(options ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	options = options.withDefaults()
	assert.NotEmptyStr(options.UserAgent)
	assert.Positive(options.MaxConcurrentPages)
	parsedBaseUrl, err := url.Parse(options.BaseUrl)
	if err != nil {
		return nil, err
	}
	if parsedBaseUrl.Scheme == "" || parsedBaseUrl.Host == "" {
		return nil, fmt.Errorf("cams: base url %q must be absolute", options.BaseUrl)
	}

	// max burst >= 1 means no requests will be dropped
	burst := max(int(options.RequestsPerSecond), 1)

	return &Client{
		BaseUrl:     parsedBaseUrl,
		options:     options,
		rateLimiter: rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst),
		tel:         telemetry.NewScopedAPI("cams_scraper", tel),
	}, nil
}

// newHttpClient creates a resty client with an empty cookie jar.
func (c *Client) newHttpClient() (*resty.Client, error) {
	httpClient := resty.New()
	httpClient.SetBaseURL(c.BaseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if c.options.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", c.options.UserAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(c.BaseUrl.Hostname()))
	httpClient.SetTimeout(c.options.Timeout)
	// a failed page fails the whole scrape, retrying is left to the caller
	httpClient.SetRetryCount(0)

	telemetry.InstrumentResty(httpClient, c.tel)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.rateLimiter.Wait(req.Context())
	})

	return httpClient, nil
}

// Login authenticates against the portal for a given term, the returned session
// carries the cookies the portal set.
func (c *Client) Login(ctx context.Context, username, password, term string) (*AuthSession, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	httpClient, err := c.newHttpClient()
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	res, err := respOrStatusErr(
		httpClient.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"txtUsername": username,
				"txtPassword": password,
				"term":        term,
				"accessKey":   "",
				"op":          "login",
			}).
			Post(endpointLogin),
	)
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("fetch: %w", err),
		)
		span.RecordError(err)
		return nil, &AuthError{Err: err}
	}

	login, err := decodeLoginResponse(res.String())
	if err != nil {
		c.tel.ReportBroken(
			report_client_login,
			fmt.Errorf("decode: %w", err),
			res.String(),
		)
		span.RecordError(err)
		return nil, &AuthError{Err: err}
	}
	if !login.LoginStatus {
		c.tel.ReportWarning(report_client_login, "rejected", login.StrError)
		return nil, &AuthError{Message: login.StrError}
	}

	c.tel.ReportDebug("logged in", username, term)
	return &AuthSession{
		http:               httpClient,
		maxConcurrentPages: c.options.MaxConcurrentPages,
		tel:                c.tel,
	}, nil
}
