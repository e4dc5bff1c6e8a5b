// Package config holds the decoder's configuration surface (spec.md §6)
// as an immutable snapshot passed into each decode call, per the design
// note "Mutable global preferences": the core is pure with respect to
// configuration, so a schema reload or a preference change never races
// with an in-flight decode.
package config

// SearchPath is one entry of the `search_paths` configuration key.
type SearchPath struct {
	Path    string
	LoadAll bool
}

// PortRange is an inclusive [Low, High] port interval used by
// `udp_message_types`.
type PortRange struct {
	Low, High uint16
}

// Contains reports whether port falls within the range.
func (r PortRange) Contains(port uint16) bool {
	return port >= r.Low && port <= r.High
}

// UDPMessageType associates a port range with a default message type,
// consulted by the Entry Dispatcher (§4.8) when no hint is supplied and
// the packet arrived over UDP.
type UDPMessageType struct {
	Ports       PortRange
	MessageName string
}

// Snapshot is the immutable configuration value consumed by a decode
// call. Build one with Default or a struct literal and never mutate it
// afterward; construct a
// fresh Snapshot instead when preferences change.
type Snapshot struct {
	SearchPaths            []SearchPath
	UDPMessageTypes        []UDPMessageType
	TryDissectAsString     bool
	ShowAllPossibleTypes   bool
	DissectBytesAsString   bool
}

// Default returns the zero-value preference set: no fallback-as-string,
// no multi-type rendering, bytes rendered as raw only.
func Default() Snapshot {
	return Snapshot{}
}

// MessageTypeForUDPPort returns the configured default message type for
// a UDP port, if any `udp_message_types` entry covers it.
func (s Snapshot) MessageTypeForUDPPort(port uint16) (string, bool) {
	for _, e := range s.UDPMessageTypes {
		if e.Ports.Contains(port) {
			return e.MessageName, true
		}
	}
	return "", false
}
