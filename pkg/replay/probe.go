package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ManagementConfig holds the coordinates of the broker's management API.
type ManagementConfig struct {
	Host     string `env:"AMQP_HOST" env-default:"localhost"`
	Port     string `env:"AMQP_MANAGEMENT_PORT" env-default:"15672"`
	Username string `env:"AMQP_USERNAME" env-default:"guest"`
	Password string `env:"AMQP_PASSWORD" env-default:"guest"`
}

// Prober queries the broker's management HTTP API for queue metadata.
// AMQP itself has no way to ask "what kind of queue is this and how many
// messages does it hold", so the engine falls back to the management
// plugin's REST surface for the one piece of authoritative metadata the
// scanner needs before it can know when to stop.
type Prober struct {
	cfg    ManagementConfig
	client *http.Client
}

// NewProber builds a Prober against the given management API config.
func NewProber(cfg ManagementConfig) *Prober {
	return &Prober{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type queueStatus struct {
	Type     string `json:"type"`
	Messages *uint64 `json:"messages"`
}

// ProbeQueue fetches the queue descriptor for name in the default vhost.
// A nil descriptor with CodeQueueNotFound means the management API
// reported no "messages" field at all -- the source treats that the same
// whether the queue doesn't exist or exists but is empty.
func (p *Prober) ProbeQueue(ctx context.Context, name string) (*QueueDescriptor, error) {
	url := fmt.Sprintf("http://%s:%s/api/queues/%%2f/%s", p.cfg.Host, p.cfg.Port, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ErrManagementTransport(err)
	}
	req.SetBasicAuth(p.cfg.Username, p.cfg.Password)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, ErrManagementTransport(err)
	}
	defer resp.Body.Close()

	var status queueStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, ErrManagementTransport(err)
	}

	if status.Type != "" && status.Type != "stream" {
		return nil, ErrNotAStream(name)
	}

	if status.Messages == nil {
		return nil, ErrQueueNotFound(name)
	}

	return &QueueDescriptor{Kind: QueueKindStream, MessageCount: *status.Messages}, nil
}
