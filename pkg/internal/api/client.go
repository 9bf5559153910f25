package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agoraview/survey-client/pkg/internal/busy"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const csrfCookieName = "csrftoken"

// Client talks to the survey backend. It does not retry, deduplicate or
// cancel requests; reliability for writes is layered on top by the outbox.
type Client struct {
	baseURL string
	busy    *busy.Tracker
	onCSRF  func(token string)
}

func NewClient(baseURL string, tracker *busy.Tracker) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		busy:    tracker,
	}
}

// NewClientFromConfig reads the backend address out of the loaded settings.
func NewClientFromConfig(tracker *busy.Tracker) *Client {
	return NewClient(viper.GetString("api.base_url"), tracker)
}

// OnCSRFToken registers a sink for CSRF tokens the backend hands out via
// cookie; the session store persists them for later state-changing calls.
func (c *Client) OnCSRFToken(fn func(token string)) {
	c.onCSRF = fn
}

// StatusError is a response that came back with a non-success status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, response: %s", e.Code, e.Body)
}

// IsPermanent reports whether the backend rejected the request outright, so
// retrying the same payload can never succeed.
func IsPermanent(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= fiber.StatusBadRequest && statusErr.Code < fiber.StatusInternalServerError
	}
	return false
}

// Do issues one request and returns the raw status code and body. Form fields
// are sent urlencoded; extra headers (idempotency keys) are attached last.
func (c *Client) Do(method, path string, sctx session.Context, form map[string]string, headers map[string]string) (int, []byte, error) {
	if c.busy != nil {
		c.busy.Add()
		defer c.busy.Done()
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)

	for key, value := range sctx.Headers() {
		req.Header.Set(key, value)
	}
	if cookie, ok := sctx.CSRFCookie(); ok {
		req.Header.SetCookie(csrfCookieName, cookie)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if len(form) > 0 {
		args := fiber.AcquireArgs()
		for key, value := range form {
			args.Set(key, value)
		}
		agent.Form(args)
		fiber.ReleaseArgs(args)
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	agent.SetResponse(resp)

	if err := agent.Parse(); err != nil {
		return 0, nil, fmt.Errorf("unable to prepare request to %s: %v", path, err)
	}

	log.Debug().Str("method", method).Str("path", path).Msg("Requesting survey backend...")

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("request to %s failed: %v", path, errs[0])
	}

	if raw := resp.Header.PeekCookie(csrfCookieName); len(raw) > 0 && c.onCSRF != nil {
		if value := cookieValue(string(raw), csrfCookieName); len(value) > 0 {
			c.onCSRF(value)
		}
	}

	return code, body, nil
}

func cookieValue(raw, name string) string {
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, name+"=") {
			return strings.TrimPrefix(part, name+"=")
		}
	}
	return ""
}

func (c *Client) getJSON(path string, sctx session.Context, out any) error {
	code, body, err := c.Do(fiber.MethodGet, path, sctx, nil, nil)
	if err != nil {
		return err
	}
	if code != fiber.StatusOK {
		return &StatusError{Code: code, Body: string(body)}
	}
	if err := jsoniter.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %v", path, err)
	}
	return nil
}

func (c *Client) submitForm(method, path string, sctx session.Context, form map[string]string, out any) error {
	code, body, err := c.Do(method, path, sctx, form, nil)
	if err != nil {
		return err
	}
	if code != fiber.StatusOK && code != fiber.StatusCreated {
		return &StatusError{Code: code, Body: string(body)}
	}
	if out != nil {
		if err := jsoniter.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse %s response: %v", path, err)
		}
	}
	return nil
}
