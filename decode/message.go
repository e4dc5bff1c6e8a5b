package decode

import (
	"github.com/protolens/pbtree/config"
	"github.com/protolens/pbtree/schema"
	"github.com/protolens/pbtree/tree"
	"github.com/protolens/pbtree/wire"
)

// unknownMessageLabel is the label used when no message descriptor was
// resolved for a message subtree (spec.md §4.7).
const unknownMessageLabel = "<UNKNOWN> Message Type"

// Message drives the Field Decoder (§4.4) over rng until the cursor
// reaches the end or a field fails, appending a "Message" subtree to
// parent labelled with md's full name (or the unknown-type label).
// Already-emitted children remain when a field fails partway through
// (spec.md §4.7, §7): no failure here is fatal to the rest of the
// buffer.
func Message(rng wire.Range, md *schema.MessageDescriptor, pool *schema.Pool, cfg config.Snapshot, parent *tree.Node) *tree.Node {
	label := unknownMessageLabel
	if md != nil {
		label = md.FullName()
	}
	node := parent.NewChild(label, tree.ByteRange{Offset: rng.Start(), Length: rng.Len()})

	off := rng.Start()
	for off < rng.End() {
		next, ok := Field(rng, off, md, pool, cfg, node)
		if !ok {
			break
		}
		off = next
	}
	return node
}
