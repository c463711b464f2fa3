package ir

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks module invariants.
// Returns error if any invariant is violated.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error

	// 1. Parent links and region membership
	if err := validateStructure(m); err != nil {
		errs = append(errs, err)
	}

	// 2. Use lists mirror operand lists
	if err := validateUseLists(m); err != nil {
		errs = append(errs, err)
	}

	// 3. Every use follows its definition
	if err := validateDominance(m); err != nil {
		errs = append(errs, err)
	}

	// 4. Device and function bodies are terminated
	if err := validateTerminators(m); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func opLabel(m *Module, op OpID) string {
	return fmt.Sprintf("op%d (%s)", op, m.ops[op].Name)
}

func validateStructure(m *Module) error {
	var errs []error
	seen := make(map[OpID]RegionID)
	for r := range m.regions {
		reg := &m.regions[r]
		for _, op := range reg.Ops {
			if prev, dup := seen[op]; dup {
				errs = append(errs, fmt.Errorf("%s: listed in regions %d and %d", opLabel(m, op), prev, r))
				continue
			}
			seen[op] = reg.ID
			if m.ops[op].Parent != reg.ID {
				errs = append(errs, fmt.Errorf("%s: parent is region %d but listed in region %d", opLabel(m, op), m.ops[op].Parent, r))
			}
		}
	}
	for i := range m.ops {
		o := &m.ops[i]
		if o.Parent == NoRegionID {
			continue
		}
		if _, ok := seen[o.ID]; !ok {
			errs = append(errs, fmt.Errorf("%s: not listed in its parent region %d", opLabel(m, o.ID), o.Parent))
		}
		for _, r := range o.Regions {
			if m.regions[r].Parent != o.ID {
				errs = append(errs, fmt.Errorf("%s: region %d has parent op%d", opLabel(m, o.ID), r, m.regions[r].Parent))
			}
		}
	}
	return errors.Join(errs...)
}

func validateUseLists(m *Module) error {
	var errs []error
	for i := range m.ops {
		o := &m.ops[i]
		for slot, v := range o.Operands {
			if m.Value(v) == nil {
				errs = append(errs, fmt.Errorf("%s: operand %d refers to unknown value %d", opLabel(m, o.ID), slot, v))
				continue
			}
			if !slices.Contains(m.values[v].Uses, Use{Op: o.ID, Operand: slot}) {
				errs = append(errs, fmt.Errorf("%s: operand %d missing from use list of value %d", opLabel(m, o.ID), slot, v))
			}
		}
	}
	for i := range m.values {
		v := &m.values[i]
		for _, u := range v.Uses {
			o := m.Op(u.Op)
			if o == nil || u.Operand < 0 || u.Operand >= len(o.Operands) || o.Operands[u.Operand] != v.ID {
				errs = append(errs, fmt.Errorf("value %d: stale use op%d#%d", v.ID, u.Op, u.Operand))
			}
		}
	}
	return errors.Join(errs...)
}

// validateDominance checks def-before-use for every attached op: the value
// must be a parameter of an enclosing region, or the result of an op that
// precedes the user's ancestor in the defining region.
func validateDominance(m *Module) error {
	var errs []error
	m.Walk(func(op OpID) bool {
		for slot, v := range m.ops[op].Operands {
			if m.Value(v) == nil {
				continue
			}
			if !m.visibleAt(v, op) {
				errs = append(errs, fmt.Errorf("%s: operand %d (value %d) does not dominate its use", opLabel(m, op), slot, v))
			}
		}
		return true
	})
	return errors.Join(errs...)
}

func (m *Module) visibleAt(v ValueID, user OpID) bool {
	defRegion := m.DefiningRegion(v)
	if defRegion == NoRegionID {
		return false
	}
	anc := m.AncestorIn(user, defRegion)
	if anc == NoOpID {
		return false
	}
	val := &m.values[v]
	if val.Kind == ValueParam {
		return true
	}
	return m.IsBeforeInRegion(val.Def, anc)
}

func validateTerminators(m *Module) error {
	var errs []error
	m.Walk(func(op OpID) bool {
		o := &m.ops[op]
		switch o.Name {
		case OpCluster, OpLaunch:
			if err := validateDeviceBody(m, op); err != nil {
				errs = append(errs, err)
			}
		case OpFunc:
			if len(o.Regions) != 1 {
				errs = append(errs, fmt.Errorf("%s: expected 1 region, got %d", opLabel(m, op), len(o.Regions)))
				break
			}
			term := m.regions[o.Regions[0]].Terminator()
			if term == NoOpID || m.ops[term].Name != OpFuncReturn {
				errs = append(errs, fmt.Errorf("%s: body must end with %s", opLabel(m, op), OpFuncReturn))
			}
		}
		return true
	})
	return errors.Join(errs...)
}

func validateDeviceBody(m *Module, op OpID) error {
	o := &m.ops[op]
	if len(o.Regions) != 1 {
		return fmt.Errorf("%s: expected 1 region, got %d", opLabel(m, op), len(o.Regions))
	}
	term := m.regions[o.Regions[0]].Terminator()
	if term == NoOpID || m.ops[term].Name != OpReturn {
		return fmt.Errorf("%s: body must end with %s", opLabel(m, op), OpReturn)
	}
	ret := m.ops[term].Operands
	if len(ret) != len(o.Results) {
		return fmt.Errorf("%s: returns %d values but has %d results", opLabel(m, op), len(ret), len(o.Results))
	}
	var errs []error
	for i := range ret {
		if got, want := m.TypeOf(ret[i]), m.TypeOf(o.Results[i]); got != want {
			errs = append(errs, fmt.Errorf("%s: result %d has type %s but body returns %s", opLabel(m, op), i, want, got))
		}
	}
	return errors.Join(errs...)
}
