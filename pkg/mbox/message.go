package mbox

import (
	"encoding/binary"

	"github.com/mbox-ipc/mbox-go/pkg/hw"
)

// Message is one mailbox message: a single machine word whose
// contents the core does not interpret.
type Message = hw.Word

// MessageSize is the width of one message in bytes. Software queue
// capacities are multiples of it.
const MessageSize = hw.WordSize

// DefaultQueueCapacity is the software queue size in bytes used when
// the registry configuration does not set one.
const DefaultQueueCapacity = 256

func encodeMessage(dst []byte, msg Message) {
	binary.LittleEndian.PutUint32(dst, uint32(msg))
}

func decodeMessage(src []byte) Message {
	return Message(binary.LittleEndian.Uint32(src))
}
