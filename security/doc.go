// Package security builds the TLS settings the HTTP transport dials the
// database account with.
//
// A local emulator serves a self-signed certificate; point CAFile at its
// exported certificate instead of turning verification off:
//
//	cfg := security.TLSConfig{CAFile: "/etc/cosmos/emulator.pem"}
//	tlsConfig, err := cfg.Build()
package security
