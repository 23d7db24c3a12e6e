package consul

import (
	"fmt"
	"time"

	consulapi "github.com/hashicorp/consul/api"
)

// Registration describes one service instance to advertise.
type Registration struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
	// HealthURL, when set, attaches an HTTP check polled by the agent.
	// Interval and timeout fall back to the package defaults when zero.
	HealthURL     string
	CheckInterval time.Duration
	CheckTimeout  time.Duration
}

const (
	defaultCheckInterval = 10 * time.Second
	defaultCheckTimeout  = 3 * time.Second
)

// Register advertises a service instance to the local Consul agent.
// Re-registering under the same ID replaces the previous registration.
func (c *Client) Register(reg Registration) error {
	asr := &consulapi.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Tags:    reg.Tags,
	}

	if reg.HealthURL != "" {
		interval := reg.CheckInterval
		if interval <= 0 {
			interval = defaultCheckInterval
		}
		timeout := reg.CheckTimeout
		if timeout <= 0 {
			timeout = defaultCheckTimeout
		}
		asr.Check = &consulapi.AgentServiceCheck{
			HTTP:     reg.HealthURL,
			Interval: interval.String(),
			Timeout:  timeout.String(),
		}
	}

	if err := c.api.Agent().ServiceRegister(asr); err != nil {
		return fmt.Errorf("register %s with consul: %w", reg.Name, err)
	}
	return nil
}

// Deregister withdraws a previously advertised service instance.
func (c *Client) Deregister(serviceID string) error {
	if err := c.api.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("deregister %s from consul: %w", serviceID, err)
	}
	return nil
}
