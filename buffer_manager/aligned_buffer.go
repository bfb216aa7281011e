package buffer_manager

import "github.com/ncw/directio"

// AllocateAlignedBuffer returns a zeroed buffer whose starting address sits
// on a direct I/O block boundary. O_DIRECT transfers fail on unaligned
// user memory.
func AllocateAlignedBuffer(size int) []byte {
	return directio.AlignedBlock(size)
}
