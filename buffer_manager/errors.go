package buffer_manager

import (
	"errors"
	"fmt"
)

// ErrBufferExceeded is returned when every frame in the pool is pinned
// and no victim can be chosen.
var ErrBufferExceeded = errors.New("buffer pool exceeded: all frames are pinned")

// PageNotPinnedError is returned when a resident page is unpinned
// more times than it was pinned.
type PageNotPinnedError struct {
	Filename string
	PageNo   PageID
	FrameNo  FrameID
}

func (e *PageNotPinnedError) Error() string {
	return fmt.Sprintf("page %d of file %s in frame %d is not pinned", e.PageNo, e.Filename, e.FrameNo)
}

// PagePinnedError is returned when a flush encounters a page that is still pinned.
type PagePinnedError struct {
	Filename string
	PageNo   PageID
	FrameNo  FrameID
}

func (e *PagePinnedError) Error() string {
	return fmt.Sprintf("page %d of file %s in frame %d is still pinned", e.PageNo, e.Filename, e.FrameNo)
}

// BadBufferError is returned when a flush encounters a resident frame
// carrying INVALID_PAGE_NUMBER.
type BadBufferError struct {
	FrameNo FrameID
	Dirty   bool
	Valid   bool
	Refbit  bool
}

func (e *BadBufferError) Error() string {
	return fmt.Sprintf("frame %d holds a corrupt page (dirty=%v valid=%v refbit=%v)", e.FrameNo, e.Dirty, e.Valid, e.Refbit)
}
