package codec

import (
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/spymaster/internal/protocol"
)

// Message pools for reducing GC pressure
var (
	messagePool = sync.Pool{
		New: func() any {
			return &protocol.Message{}
		},
	}

	framePool = sync.Pool{
		New: func() any {
			return &structpb.Struct{}
		},
	}
)

// GetMessage retrieves a Message from the pool
func GetMessage() *protocol.Message {
	return messagePool.Get().(*protocol.Message)
}

// PutMessage returns a Message to the pool
// The message fields are reset to prevent memory leaks
func PutMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	msg.Type = ""
	msg.ID = 0
	msg.Payload = nil
	messagePool.Put(msg)
}

// getFrame retrieves a wire frame from the pool
func getFrame() *structpb.Struct {
	return framePool.Get().(*structpb.Struct)
}

// putFrame returns a wire frame to the pool
func putFrame(f *structpb.Struct) {
	if f == nil {
		return
	}
	f.Reset()
	framePool.Put(f)
}
