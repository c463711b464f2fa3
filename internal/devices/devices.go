// Package devices resolves the runtime device metadata attached to a module.
package devices

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"offload/internal/ir"
)

// ErrNoDevices is returned when a module carries no device attribute.
var ErrNoDevices = errors.New("no devices attached to module")

// DeviceProperties are the components of a fully specified device name.
type DeviceProperties struct {
	Job     string
	Replica int
	Task    int
	Type    string
	ID      int
}

// RuntimeDevices maps full device names to their properties.
type RuntimeDevices map[string]DeviceProperties

// Names returns the device names in sorted order.
func (d RuntimeDevices) Names() []string {
	out := make([]string, 0, len(d))
	for name := range d {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ByType returns the sorted names of devices of the given type (e.g. "TPU").
func (d RuntimeDevices) ByType(typ string) []string {
	var out []string
	for name, props := range d {
		if strings.EqualFold(props.Type, typ) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Provider fetches device metadata for a whole module.
type Provider interface {
	Devices(m *ir.Module) (RuntimeDevices, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(m *ir.Module) (RuntimeDevices, error)

func (f ProviderFunc) Devices(m *ir.Module) (RuntimeDevices, error) { return f(m) }

// FromModule is the default Provider: it parses the module's device list.
var FromModule Provider = ProviderFunc(Parse)

// Parse resolves the device list attached to m.
func Parse(m *ir.Module) (RuntimeDevices, error) {
	if m == nil || !m.HasDevices {
		return nil, ErrNoDevices
	}
	out := make(RuntimeDevices, len(m.Devices))
	for _, name := range m.Devices {
		props, err := ParseName(name)
		if err != nil {
			return nil, err
		}
		out[name] = props
	}
	return out, nil
}

// ParseName parses a fully specified device name of the form
// /job:<name>/replica:<n>/task:<n>/device:<TYPE>:<n>. Each component must
// appear exactly once and numbers must be non-negative decimals.
func ParseName(name string) (DeviceProperties, error) {
	var props DeviceProperties
	if !strings.HasPrefix(name, "/") {
		return props, fmt.Errorf("invalid device name %q: must start with '/'", name)
	}
	seen := make(map[string]bool, 4)
	for _, part := range strings.Split(name[1:], "/") {
		key, rest, ok := strings.Cut(part, ":")
		if !ok {
			return props, fmt.Errorf("invalid device name %q: malformed component %q", name, part)
		}
		if seen[key] {
			return props, fmt.Errorf("invalid device name %q: duplicate component %q", name, key)
		}
		var err error
		switch key {
		case "job":
			if rest == "" {
				return props, fmt.Errorf("invalid device name %q: empty job", name)
			}
			props.Job = rest
		case "replica":
			props.Replica, err = parseIndex(rest)
		case "task":
			props.Task, err = parseIndex(rest)
		case "device":
			typ, id, found := strings.Cut(rest, ":")
			if !found || typ == "" {
				return props, fmt.Errorf("invalid device name %q: malformed device component %q", name, part)
			}
			props.Type = typ
			props.ID, err = parseIndex(id)
		default:
			return props, fmt.Errorf("invalid device name %q: unknown component %q", name, key)
		}
		if err != nil {
			return props, fmt.Errorf("invalid device name %q: %s: %w", name, key, err)
		}
		seen[key] = true
	}
	if len(seen) != 4 {
		return props, fmt.Errorf("invalid device name %q: not fully specified", name)
	}
	return props, nil
}

// parseIndex accepts only plain decimal digits, so signs are rejected.
func parseIndex(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing number")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%q is not a non-negative number", s)
		}
	}
	return strconv.Atoi(s)
}

// String renders the canonical full name.
func (p DeviceProperties) String() string {
	return fmt.Sprintf("/job:%s/replica:%d/task:%d/device:%s:%d", p.Job, p.Replica, p.Task, p.Type, p.ID)
}
