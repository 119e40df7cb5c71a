// Package loader registers HTTP features on the Fiber router.
//
// A feature exposes a name, an enabled switch and a Load hook that mounts its
// routes:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager.LoadAll skips disabled features and stops at the first Load error,
// wrapping it with the feature name. The documents feature is disabled when
// no document service could be built.
package loader
