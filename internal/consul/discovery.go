package consul

import (
	"fmt"
	"math/rand"
)

// ServiceInstance represents a discovered service instance.
type ServiceInstance struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
}

// ServiceDiscovery defines the interface for service discovery.
type ServiceDiscovery interface {
	Discover(serviceName string) ([]*ServiceInstance, error)
	DiscoverOne(serviceName string) (*ServiceInstance, error)
}

// Discover retrieves all healthy instances of a service.
func (c *Client) Discover(serviceName string) ([]*ServiceInstance, error) {
	services, _, err := c.api.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to discover service %s: %w", serviceName, err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("no healthy instances found for service: %s", serviceName)
	}

	instances := make([]*ServiceInstance, 0, len(services))
	for _, entry := range services {
		instance := &ServiceInstance{
			ID:      entry.Service.ID,
			Name:    entry.Service.Service,
			Address: entry.Service.Address,
			Port:    entry.Service.Port,
			Tags:    entry.Service.Tags,
		}
		if instance.Address == "" {
			instance.Address = entry.Node.Address
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// DiscoverOne retrieves a single healthy instance with random load balancing.
func (c *Client) DiscoverOne(serviceName string) (*ServiceInstance, error) {
	instances, err := c.Discover(serviceName)
	if err != nil {
		return nil, err
	}

	idx := rand.Intn(len(instances))
	return instances[idx], nil
}
