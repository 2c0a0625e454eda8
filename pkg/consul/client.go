package consul

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hashicorp/consul/api"
)

type Client struct {
	client      *api.Client
	serviceName string
	servicePort int
}

// NewClient creates a Consul client pointed at the given agent host
func NewClient(consulHost, serviceName string, servicePort int) (*Client, error) {
	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s:8500", consulHost)

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %v", err)
	}

	return &Client{
		client:      client,
		serviceName: serviceName,
		servicePort: servicePort,
	}, nil
}

// RegisterService registers the service with Consul, with the
// /health endpoint as its check target
func (c *Client) RegisterService() error {
	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to get hostname: %v", err)
	}

	registration := &api.AgentServiceRegistration{
		ID:      fmt.Sprintf("%s-%s", c.serviceName, hostname),
		Name:    c.serviceName,
		Port:    c.servicePort,
		Address: hostname,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", hostname, c.servicePort),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}

	err = c.client.Agent().ServiceRegister(registration)
	if err != nil {
		return fmt.Errorf("failed to register service: %v", err)
	}

	log.Printf("Service %s registered with Consul at %s:%d", c.serviceName, hostname, c.servicePort)
	return nil
}

// DeregisterService removes the service from Consul
func (c *Client) DeregisterService() error {
	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to get hostname: %v", err)
	}

	serviceID := fmt.Sprintf("%s-%s", c.serviceName, hostname)
	err = c.client.Agent().ServiceDeregister(serviceID)
	if err != nil {
		return fmt.Errorf("failed to deregister service: %v", err)
	}

	log.Printf("Service %s deregistered from Consul", c.serviceName)
	return nil
}

// WaitForConsul waits for the Consul agent to be reachable
func (c *Client) WaitForConsul(maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		_, err := c.client.Status().Leader()
		if err == nil {
			log.Printf("Consul is available")
			return nil
		}

		log.Printf("Waiting for Consul to be available... (attempt %d/%d)", i+1, maxRetries)
		time.Sleep(2 * time.Second)
	}

	return fmt.Errorf("consul not available after %d retries", maxRetries)
}
