// Package broadlink sends pre-learned IR pulse packets through a Broadlink
// hub's HTTP API. The decision engine only ever hands it a command id; the
// packet payloads never leave this package.
package broadlink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/scheerer/ir-screen-lights/internal/logging"
	"github.com/scheerer/ir-screen-lights/lights"
)

var logger = logging.New("broadlink")

const defaultTimeout = 5 * time.Second

type Config struct {
	// BaseURL of the hub API, e.g. http://192.168.1.40:8000
	BaseURL string
	// Packets maps each command id to its learned pulse packet.
	Packets map[lights.CommandID]string
	// Timeout bounds a single send-packet call.
	Timeout time.Duration
}

type Sender struct {
	endpoint string
	packets  map[lights.CommandID]string
	client   *http.Client
}

var _ lights.Sender = (*Sender)(nil)

func NewSender(config Config) (*Sender, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("broadlink base URL is required")
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Sender{
		endpoint: strings.TrimRight(config.BaseURL, "/") + "/send-packet",
		packets:  config.Packets,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (s *Sender) Send(ctx context.Context, id lights.CommandID) error {
	packet, ok := s.packets[id]
	if !ok {
		return fmt.Errorf("no learned packet for command %q", id)
	}

	body, err := sonic.Marshal(map[string]string{"packet": packet})
	if err != nil {
		return fmt.Errorf("encode packet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send-packet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send command %q: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send command %q: hub returned %d: %s", id, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	logger.Debugw("command dispatched", "command", id)
	return nil
}
