// Package gate owns the environment gate guarding seeding operations.
//
// Ownership boundary:
// - isolation mechanism registry
// - allow/deny decision
// - non-recoverable denial signal
//
// Gate does not read ambient process state; callers pass a descriptor.
package gate

import (
	"fmt"

	"github.com/danmuck/seedgate/internal/envinfo"
	"github.com/rs/zerolog/log"
)

// ExitDenied is the process exit status for a denied seeding attempt.
const ExitDenied = 3

// Mechanism is a named isolation probe. A mechanism that returns true
// proves the descriptor belongs to an isolated environment.
type Mechanism struct {
	Name  string
	Probe func(envinfo.Descriptor) bool
}

// Decision is the outcome of one gate evaluation.
type Decision struct {
	Allowed bool
	// Mechanism names the probe that proved isolation; empty on deny.
	Mechanism string
}

// Gate evaluates ordered isolation mechanisms, first match wins.
// Absence of every marker is treated as the system installation.
type Gate struct {
	mechanisms []Mechanism
}

// New returns a gate seeded with the two known isolation mechanisms:
// the legacy root marker and standard prefix divergence.
func New() *Gate {
	return &Gate{
		mechanisms: []Mechanism{
			{
				Name: "legacy-root",
				Probe: func(d envinfo.Descriptor) bool {
					return d.LegacyMarker
				},
			},
			{
				Name: "prefix-divergence",
				Probe: func(d envinfo.Descriptor) bool {
					return d.ActivePrefix != d.BasePrefix
				},
			},
		},
	}
}

// WithMechanism appends an additional isolation mechanism. The two
// built-in mechanisms are always consulted first.
func (g *Gate) WithMechanism(m Mechanism) *Gate {
	g.mechanisms = append(g.mechanisms, m)
	return g
}

// Check evaluates the mechanisms against the descriptor. It is pure:
// no logging, no side effects.
func (g *Gate) Check(d envinfo.Descriptor) Decision {
	for _, m := range g.mechanisms {
		if m.Probe(d) {
			return Decision{Allowed: true, Mechanism: m.Name}
		}
	}
	return Decision{}
}

// Halt is a non-recoverable denial. Callers must propagate it
// unchanged to main, which prints Advisory to stderr and exits with
// Code. Catching a Halt and continuing defeats the gate.
type Halt struct {
	Advisory string
	Code     int
}

func (h *Halt) Error() string {
	return "gate: seeding denied for the system installation"
}

// Enforce checks the descriptor and converts a deny into a *Halt
// carrying the advisory text.
func (g *Gate) Enforce(d envinfo.Descriptor, advisory string) error {
	decision := g.Check(d)
	if decision.Allowed {
		log.Debug().
			Str("mechanism", decision.Mechanism).
			Str("prefix", d.ActivePrefix).
			Msg("seeding permitted")
		return nil
	}
	log.Warn().
		Str("prefix", d.ActivePrefix).
		Msg("seeding denied: system installation")
	return &Halt{Advisory: advisory, Code: ExitDenied}
}

// Describe lists the registered mechanism names in evaluation order.
func (g *Gate) Describe() []string {
	names := make([]string, len(g.mechanisms))
	for i, m := range g.mechanisms {
		names[i] = m.Name
	}
	return names
}

var _ error = (*Halt)(nil)

// String implements fmt.Stringer for decision logging.
func (dec Decision) String() string {
	if !dec.Allowed {
		return "deny"
	}
	return fmt.Sprintf("allow(%s)", dec.Mechanism)
}
