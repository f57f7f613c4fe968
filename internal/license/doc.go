// Package license implements the hardware-bound licensing of the
// application: probing the four per-host identifiers, the encrypted local
// activation record, the online activation handshake against the remote
// licenses table, and the offline startup validation.
//
// The binding policy is deliberately simple because the remote store offers
// no compare-and-set: a row flips used=false to used=true at most once, a
// reactivation on bound hardware is idempotent, and a host matching at least
// MinHardwareMatches of the four stored components may re-bind locally
// without touching the remote row.
package license
