package pass

import "offload/internal/headextract"

// Default returns a registry holding every built-in pass.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(func() Pass { return Verify{} })
	r.MustRegister(func() Pass { return headextract.New() })
	return r
}
