// Package validator proves a built bundle works with no network at all.
//
// It installs the tool from the bundle's snapshot or offline cache into an
// ephemeral home, runs non-interactive onboarding against a seeded
// credential, starts the local service and polls it over HTTP. Proxy
// variables are pointed at an unreachable address so any accidental
// outbound call fails instead of quietly succeeding.
package validator
