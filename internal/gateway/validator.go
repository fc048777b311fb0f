package gateway

import (
	"context"
	"strings"
	"time"

	"mcpweb/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// DefaultProbeTimeout bounds a single validation probe, covering connection
// setup, handshake and tool listing.
const DefaultProbeTimeout = 15 * time.Second

const probeConcurrency = 4

// Validator probes proxied backends for the required operations before the
// registry freezes. A backend passes when its server exposes all of
// RequiredTools. Probe failures mark the backend invalid and are logged;
// they never abort startup.
type Validator struct {
	timeout time.Duration
}

// NewValidator creates a validator with the given per-probe timeout,
// falling back to DefaultProbeTimeout when zero.
func NewValidator(timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Validator{timeout: timeout}
}

// Run probes every proxied registration in the builder and records the
// verdicts. It blocks until all probes have finished; the builder must not
// be frozen before Run returns.
func (v *Validator) Run(ctx context.Context, b *Builder) {
	routes := b.proxiedRoutes()
	if len(routes) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for _, route := range routes {
		g.Go(func() error {
			v.probe(ctx, route)
			return nil
		})
	}
	// Probes report verdicts through the routes, never as errors.
	_ = g.Wait()
}

// SkipAll marks every proxied registration valid without probing, for
// deployments that validate out of band.
func (v *Validator) SkipAll(b *Builder) {
	for _, route := range b.proxiedRoutes() {
		route.valid = true
		logging.Info("validator", "Validation skipped for service '%s'", route.name)
	}
}

// probe connects to one backend, lists its tools and records the verdict.
// The probe connection is closed before the verdict is written.
func (v *Validator) probe(ctx context.Context, route *proxiedRoute) {
	probeCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	cli, err := route.dial(probeCtx)
	if err != nil {
		logging.Warn("validator", "Service '%s' failed validation: %v", route.name, err)
		return
	}

	tools, err := cli.ListTools(probeCtx)
	if closeErr := cli.Close(); closeErr != nil {
		logging.Debug("validator", "Error closing probe connection to %s: %v", route.name, closeErr)
	}
	if err != nil {
		logging.Warn("validator", "Service '%s' failed validation: %v", route.name, err)
		return
	}

	exposed := make(map[string]bool, len(tools))
	for _, tool := range tools {
		exposed[tool.Name] = true
	}
	var missing []string
	for _, required := range RequiredTools {
		if !exposed[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		logging.Warn("validator", "Service '%s' does not implement %s", route.name, strings.Join(missing, ", "))
		return
	}

	route.valid = true
	logging.Info("validator", "Service '%s' validated", route.name)
}
