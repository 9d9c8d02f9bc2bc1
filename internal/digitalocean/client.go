package digitalocean

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/giantswarm/microerror"
	"github.com/go-logr/logr"
	"k8s.io/client-go/util/flowcontrol"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns"
	janitorerrors "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/errors"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/inventory"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/metrics"
)

const (
	providerName = "digitalocean"

	defaultBaseURL = "https://api.digitalocean.com/v2"
	defaultPerPage = 200

	// The API allows 250 requests per minute per token.
	defaultQPS   = 4
	defaultBurst = 10
)

func init() {
	dns.Register(providerName, func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
	inventory.Register(providerName, func(log logr.Logger, settings map[string]string) (inventory.Source, error) {
		return New(log, settings)
	})
}

// Client talks to the DigitalOcean v2 API. It is both an inventory source
// (droplets) and a DNS provider (domain records).
type Client struct {
	baseURL string
	token   string
	perPage int
	client  *http.Client
	limiter flowcontrol.RateLimiter
	log     logr.Logger
}

var (
	_ dns.Provider     = (*Client)(nil)
	_ inventory.Source = (*Client)(nil)
)

// New creates a DigitalOcean client from the given settings map.
// Required settings: token.
// Optional settings: base_url, per_page (default 200), qps (default 4), burst (default 10).
func New(log logr.Logger, settings map[string]string) (*Client, error) {
	token := settings["token"]
	if token == "" {
		return nil, fmt.Errorf("digitalocean: missing required setting 'token'")
	}

	baseURL := settings["base_url"]
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	perPage, err := intSetting(settings, "per_page", defaultPerPage)
	if err != nil {
		return nil, err
	}
	burst, err := intSetting(settings, "burst", defaultBurst)
	if err != nil {
		return nil, err
	}
	qps := float32(defaultQPS)
	if v := settings["qps"]; v != "" {
		parsed, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return nil, fmt.Errorf("digitalocean: invalid qps %q: %w", v, err)
		}
		qps = float32(parsed)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		perPage: perPage,
		client:  &http.Client{},
		limiter: flowcontrol.NewTokenBucketRateLimiter(qps, burst),
		log:     log,
	}, nil
}

func intSetting(settings map[string]string, key string, def int) (int, error) {
	v := settings[key]
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("digitalocean: invalid %s %q: %w", key, v, err)
	}
	return parsed, nil
}

// endpoint builds an absolute API URL for path with the page size applied.
func (c *Client) endpoint(path string) string {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.perPage))
	return c.baseURL + "/" + strings.TrimLeft(path, "/") + "?" + q.Encode()
}

// doRequest executes an authenticated request against rawURL. op names the
// call for metrics and errors.
func (c *Client) doRequest(ctx context.Context, op, method, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("digitalocean: %s: waiting for rate limiter: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("digitalocean: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	metrics.APIRequest.WithLabelValues(providerName, op).Inc()

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.APIRequestError.WithLabelValues(providerName, op).Inc()
		return nil, fmt.Errorf("digitalocean: %s: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		metrics.APIRequestError.WithLabelValues(providerName, op).Inc()
		return nil, responseError(op, resp)
	}
	return resp, nil
}

// apiError is the error body the API returns on non-2xx responses.
type apiError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func responseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var ae apiError
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &ae) == nil && ae.Message != "" {
		msg = ae.ID + ": " + ae.Message
	}

	if resp.StatusCode == http.StatusNotFound {
		return microerror.Maskf(janitorerrors.NotFoundError, "digitalocean: %s returned status %d: %s", op, resp.StatusCode, msg)
	}
	return fmt.Errorf("digitalocean: %s returned status %d: %s", op, resp.StatusCode, msg)
}

// links is the pagination envelope shared by all list responses.
type links struct {
	Pages struct {
		Next string `json:"next"`
	} `json:"pages"`
}

// list follows links.pages.next from first until exhausted, handing each
// decoded page to decode. decode returns the page's links. Links leaving the
// scheme and host of the base URL are refused, the token must not go there.
func (c *Client) list(ctx context.Context, op, first string, decode func(io.Reader) (links, error)) error {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("digitalocean: invalid base URL %q: %w", c.baseURL, err)
	}

	seen := make(map[string]bool)
	for next := first; next != ""; {
		if seen[next] {
			return fmt.Errorf("digitalocean: %s: pagination loop at %s", op, next)
		}
		seen[next] = true
		if err := sameOrigin(base, next); err != nil {
			return fmt.Errorf("digitalocean: %s: %w", op, err)
		}

		resp, err := c.doRequest(ctx, op, http.MethodGet, next)
		if err != nil {
			return err
		}
		l, err := decode(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("digitalocean: decode %s response: %w", op, err)
		}
		c.log.V(1).Info("fetched page", "op", op, "url", next)
		next = l.Pages.Next
	}
	return nil
}

func sameOrigin(base *url.URL, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid pagination link %q: %w", rawURL, err)
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return fmt.Errorf("refusing pagination link to %s://%s, outside %s://%s", u.Scheme, u.Host, base.Scheme, base.Host)
	}
	return nil
}
