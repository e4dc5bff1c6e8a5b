// Package dispatch implements the Entry Dispatcher of spec.md §4.8: it
// resolves an optional hint string (or a UDP port, via config) to a
// message descriptor and invokes the Message Decoder over the whole
// buffer.
package dispatch

import (
	"strings"

	"github.com/protolens/pbtree/config"
	"github.com/protolens/pbtree/decode"
	"github.com/protolens/pbtree/schema"
	"github.com/protolens/pbtree/tree"
	"github.com/protolens/pbtree/wire"
)

// Transport identifies the transport a packet arrived over, needed to
// decide whether the UDP port→type fallback applies (spec.md §4.8).
type Transport int

const (
	TransportOther Transport = iota
	TransportUDP
)

// Request bundles everything the dispatcher needs for one decode call.
type Request struct {
	Buffer    []byte
	Hint      string // empty if no hint was supplied
	Transport Transport
	UDPPort   uint16
}

// Decode resolves a message descriptor (if any) for req and decodes the
// entire buffer into a fresh "ProtoBuf" tree.
func Decode(req Request, pool *schema.Pool, cfg config.Snapshot) *tree.Node {
	rng := wire.NewRange(req.Buffer)
	root := tree.NewRoot(tree.ByteRange{Offset: rng.Start(), Length: rng.Len()})

	md := resolve(req, pool, cfg)
	decode.Message(rng, md, pool, cfg, root)
	return root
}

// resolve implements the message-type selection logic of spec.md §4.8:
// hint string first (either form), else a UDP port lookup, else no
// descriptor (wire-type-only inference downstream).
func resolve(req Request, pool *schema.Pool, cfg config.Snapshot) *schema.MessageDescriptor {
	if req.Hint != "" {
		if md, ok := resolveHint(req.Hint, pool); ok {
			return md
		}
		return nil
	}
	if req.Transport == TransportUDP {
		if name, ok := cfg.MessageTypeForUDPPort(req.UDPPort); ok {
			if md, ok := pool.FindMessage(name); ok {
				return md
			}
		}
	}
	return nil
}

// resolveHint parses either hint form described in spec.md §4.8:
//
//  1. "message,<full_name>" — direct message-descriptor lookup.
//  2. "<grpc_content_type>,[/]<service>/<method>,(request|response)" —
//     normalised into a fully-qualified method name, then resolved via
//     input_type()/output_type().
func resolveHint(hint string, pool *schema.Pool) (*schema.MessageDescriptor, bool) {
	parts := strings.Split(hint, ",")
	if len(parts) == 2 && parts[0] == "message" {
		return pool.FindMessage(strings.TrimSpace(parts[1]))
	}
	if len(parts) == 3 {
		servicePath := strings.TrimPrefix(strings.TrimSpace(parts[1]), "/")
		methodFullName := strings.ReplaceAll(servicePath, "/", ".")
		md, ok := pool.FindMethod(methodFullName)
		if !ok {
			return nil, false
		}
		switch strings.TrimSpace(parts[2]) {
		case "request":
			return md.InputType(), true
		case "response":
			return md.OutputType(), true
		default:
			return nil, false
		}
	}
	return nil, false
}

// PreferenceHintKey is the per-packet key-value map key the host
// framework uses to carry the hint string out of band, per spec.md §6.
const PreferenceHintKey = "pb_msg_type"

// HintFromMap extracts the hint string from a per-packet key-value map,
// if present.
func HintFromMap(m map[string]string) string {
	return m[PreferenceHintKey]
}
