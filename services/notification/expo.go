package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"aliadolaboral/config"

	"github.com/tidwall/gjson"
)

// ExpoChunkSize is the maximum number of messages Expo accepts per request.
const ExpoChunkSize = 100

var expoTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[.+\]$`)

// IsExpoToken reports whether token is an Expo push token.
func IsExpoToken(token string) bool {
	return expoTokenPattern.MatchString(token)
}

// ExpoMessage is one entry of an Expo push request.
type ExpoMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

func newExpoMessage(token, title, body string, data map[string]string) ExpoMessage {
	return ExpoMessage{To: token, Title: title, Body: body, Sound: "default", Priority: "high", Data: data}
}

// ExpoSender posts messages to the Expo push service.
type ExpoSender interface {
	Send(ctx context.Context, messages []ExpoMessage) error
}

// ChunkMessages splits messages into slices of at most size.
func ChunkMessages(messages []ExpoMessage, size int) [][]ExpoMessage {
	var chunks [][]ExpoMessage
	for size < len(messages) {
		messages, chunks = messages[size:], append(chunks, messages[:size])
	}
	if len(messages) > 0 {
		chunks = append(chunks, messages)
	}
	return chunks
}

type ExpoClient struct {
	URL  string
	HTTP *http.Client
}

func NewExpoClient() *ExpoClient {
	return &ExpoClient{URL: config.AppConfig.ExpoPushURL, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

func (e *ExpoClient) Send(ctx context.Context, messages []ExpoMessage) error {
	if len(messages) == 0 {
		return nil
	}
	b, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("expo push failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("expo push failed: status %d", resp.StatusCode)
	}
	if errs := gjson.GetBytes(raw, "errors"); errs.Exists() && len(errs.Array()) > 0 {
		return fmt.Errorf("expo push rejected: %s", errs.Array()[0].Get("message").String())
	}
	return nil
}
