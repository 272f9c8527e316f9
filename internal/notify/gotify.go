package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/slotwatch/slotwatch/internal/config"
)

// Gotify message priorities. Urgent messages bypass quiet hours on most
// clients; normal ones do not.
const (
	gotifyPriorityNormal = 1
	gotifyPriorityUrgent = 9
)

// Gotify delivers messages through a gotify server's application message
// endpoint.
type Gotify struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewGotify(cfg config.GotifySettings) *Gotify {
	return &Gotify{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.ApplicationToken,
		httpClient: &http.Client{Timeout: cfg.Timeout.Duration()},
	}
}

func (g *Gotify) SendNormal(ctx context.Context, title, message string) error {
	return g.send(ctx, title, message, gotifyPriorityNormal)
}

func (g *Gotify) SendUrgent(ctx context.Context, title, message string) error {
	return g.send(ctx, title, message, gotifyPriorityUrgent)
}

func (g *Gotify) send(ctx context.Context, title, message string, priority int) error {
	endpoint := fmt.Sprintf("%s/message?token=%s", g.baseURL, url.QueryEscape(g.token))

	form := url.Values{}
	form.Set("title", title)
	form.Set("message", message)
	form.Set("priority", strconv.Itoa(priority))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected gotify status: %d", resp.StatusCode)
	}
	return nil
}

// compile-time check that Gotify implements Sink
var _ Sink = (*Gotify)(nil)
