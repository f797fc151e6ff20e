package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/port"
)

const (
	sendPath = "/multiagent-to-whatsapp"
	endPath  = "/multiagent-to-end"

	assignedMessage = "Su conversación ha sido asignada a %s, quien le asistirá en un momento."
	goodbyeMessage  = "Ha sido un gusto poder ayudarle con su consulta. Mi nombre es %s, y si necesita algo más, no dude en contactarnos. Que tenga un excelente día."
)

// ChatbotChannel implements port.CustomerChannel against the chatbot
// service's HTTP API, which relays to the customer's WhatsApp number.
type ChatbotChannel struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

func NewChatbotChannel(baseURL string, log *logrus.Logger) *ChatbotChannel {
	return &ChatbotChannel{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

var _ port.CustomerChannel = (*ChatbotChannel)(nil)

type outboundPayload struct {
	ToNumber string `json:"to_number"`
	Message  string `json:"message"`
	MediaURL string `json:"media_url,omitempty"`
}

type endPayload struct {
	ThreadID string `json:"thread_id"`
	Human    bool   `json:"human"`
	ToNumber string `json:"to_number"`
	Message  string `json:"message"`
}

func (c *ChatbotChannel) SendMessage(ctx context.Context, toNumber, body string, media *port.OutboundMedia, senderName string) error {
	message := body
	if senderName != "" {
		// First two name parts only, matching what the customer expects to see.
		parts := strings.Fields(senderName)
		if len(parts) > 2 {
			parts = parts[:2]
		}
		message = fmt.Sprintf("*_%s_*:\n%s", strings.Join(parts, " "), body)
	}
	payload := outboundPayload{ToNumber: toNumber, Message: message}
	if media != nil {
		payload.MediaURL = media.URL
	}
	return c.post(ctx, sendPath, payload)
}

func (c *ChatbotChannel) NotifyAgentAssigned(ctx context.Context, toNumber, agentName string) error {
	return c.post(ctx, sendPath, outboundPayload{
		ToNumber: toNumber,
		Message:  fmt.Sprintf(assignedMessage, agentName),
	})
}

func (c *ChatbotChannel) NotifyConversationEnded(ctx context.Context, threadID, toNumber, agentName string) error {
	return c.post(ctx, endPath, endPayload{
		ThreadID: threadID,
		Human:    false,
		ToNumber: toNumber,
		Message:  fmt.Sprintf(goodbyeMessage, agentName),
	})
}

func (c *ChatbotChannel) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("chatbot: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chatbot: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chatbot: %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chatbot: %s returned status %d", path, resp.StatusCode)
	}
	return nil
}

// NoopChannel swallows all customer-channel calls. Used when the service runs
// in testing mode without a reachable chatbot.
type NoopChannel struct{}

var _ port.CustomerChannel = (*NoopChannel)(nil)

func (NoopChannel) SendMessage(context.Context, string, string, *port.OutboundMedia, string) error {
	return nil
}

func (NoopChannel) NotifyAgentAssigned(context.Context, string, string) error { return nil }

func (NoopChannel) NotifyConversationEnded(context.Context, string, string, string) error {
	return nil
}
