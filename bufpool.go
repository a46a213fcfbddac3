package binstream

import (
	"bytes"
	"sync"
)

// scratchPool reuses buffers for the incremental scans (line and
// zero-terminated reads) that accumulate bytes before decoding. This keeps
// per-call allocation down without retaining any state across calls.
var scratchPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

func getScratch() *bytes.Buffer {
	buf := scratchPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putScratch(buf *bytes.Buffer) {
	scratchPool.Put(buf)
}
