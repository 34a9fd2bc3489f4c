package discovery

import (
	"fmt"
	"net"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes how a service instance announces itself.
type Registration struct {
	ServiceName    string
	ServiceAddress string
	HealthCheckURL string
	CheckInterval  string
	CheckTimeout   string
	Tags           []string
}

// ConsulRegistry registers service instances with a Consul agent.
type ConsulRegistry struct {
	client *consulapi.Client
	logger *zerolog.Logger
}

// NewConsulRegistry creates a registry talking to the agent at address.
func NewConsulRegistry(address string, logger *zerolog.Logger) (*ConsulRegistry, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = address

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &ConsulRegistry{client: client, logger: logger}, nil
}

// Register announces the instance and returns its service id.
func (r *ConsulRegistry) Register(reg Registration) (string, error) {
	host, portStr, err := net.SplitHostPort(reg.ServiceAddress)
	if err != nil {
		return "", fmt.Errorf("parse service address: %w", err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", fmt.Errorf("parse service port: %w", err)
	}

	serviceID := ServiceID(reg.ServiceName, host, port)

	registration := &consulapi.AgentServiceRegistration{
		ID:      serviceID,
		Name:    reg.ServiceName,
		Address: host,
		Port:    port,
		Tags:    reg.Tags,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           reg.HealthCheckURL,
			Interval:                       reg.CheckInterval,
			Timeout:                        reg.CheckTimeout,
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := r.client.Agent().ServiceRegister(registration); err != nil {
		return "", fmt.Errorf("register service: %w", err)
	}

	r.logger.Info().Str("service_id", serviceID).Msg("registered with consul")

	return serviceID, nil
}

// Deregister removes the instance from the agent.
func (r *ConsulRegistry) Deregister(serviceID string) error {
	if err := r.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("deregister service: %w", err)
	}

	r.logger.Info().Str("service_id", serviceID).Msg("deregistered from consul")

	return nil
}

// ServiceID builds a stable instance id.
func ServiceID(name, host string, port int) string {
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s-%s-%d", name, host, port)
}
