// internal/writer/builder.go
package writer

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/flogmeter/internal/config"
	"github.com/tamzrod/flogmeter/internal/writer/ingest"
	wmodbus "github.com/tamzrod/flogmeter/internal/writer/modbus"
)

// BuildPlan converts the export config into a Plan.
// Assumes config has already passed validation and normalization.
func BuildPlan(e cfg.ExportConfig) Plan {
	plan := Plan{}
	for _, t := range e.Targets {
		plan.Targets = append(plan.Targets, TargetPlan{
			Transport:  t.Transport,
			Endpoint:   t.Endpoint,
			UnitID:     t.UnitID,
			BaseSlot:   t.BaseSlot,
			DeviceName: t.DeviceName,
		})
	}
	return plan
}

// BuildEndpointClients creates one client per unique transport+endpoint.
func BuildEndpointClients(e cfg.ExportConfig) (map[string]endpointClient, func() error, error) {
	clients := make(map[string]endpointClient)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for _, t := range e.Targets {
		key := TargetPlan{Transport: t.Transport, Endpoint: t.Endpoint}.key()
		if _, ok := clients[key]; ok {
			continue
		}

		timeout := time.Duration(t.TimeoutMs) * time.Millisecond

		switch t.Transport {
		case "modbus":
			c, err := wmodbus.NewEndpointClient(wmodbus.Config{Endpoint: t.Endpoint, Timeout: timeout})
			if err != nil {
				_ = closeAll()
				return nil, nil, fmt.Errorf("writer: %s: %w", t.Endpoint, err)
			}
			clients[key] = c
			closers = append(closers, c.Close)

		case "ingest":
			c, err := ingest.NewEndpointClient(ingest.Config{Endpoint: t.Endpoint, Timeout: timeout})
			if err != nil {
				_ = closeAll()
				return nil, nil, fmt.Errorf("writer: %s: %w", t.Endpoint, err)
			}
			clients[key] = c
			closers = append(closers, c.Close)

		default:
			_ = closeAll()
			return nil, nil, fmt.Errorf("writer: unknown transport %q", t.Transport)
		}
	}

	return clients, closeAll, nil
}
