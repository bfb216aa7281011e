package buffer_manager

import "fmt"

// FrameDescriptor holds the bookkeeping state of one buffer pool frame.
type FrameDescriptor struct {

	// position of the frame in the frame table, fixed at construction.
	frameNo FrameID

	// identity of the page occupying the frame while valid.
	file   File
	pageNo PageID

	// valid is true while the frame holds a loaded page.
	valid bool

	// dirty is true while the in-memory copy has unsaved modifications.
	dirty bool

	// refbit gives the frame a second chance during the clock sweep.
	refbit bool

	// pinCount is the number of outstanding references held by callers.
	pinCount uint32
}

// set initializes the descriptor after a page is loaded into the frame.
// The page starts pinned once, referenced, and clean.
func (desc *FrameDescriptor) set(file File, pageNo PageID) {

	desc.file = file
	desc.pageNo = pageNo
	desc.valid = true
	desc.dirty = false
	desc.refbit = true
	desc.pinCount = 1
}

// clear resets the descriptor to the unused state.
func (desc *FrameDescriptor) clear() {

	desc.file = nil
	desc.pageNo = INVALID_PAGE_NUMBER
	desc.valid = false
	desc.dirty = false
	desc.refbit = false
	desc.pinCount = 0
}

// String renders the descriptor state for diagnostics.
func (desc *FrameDescriptor) String() string {

	filename := "<none>"

	if desc.file != nil {
		filename = desc.file.Filename()
	}

	return fmt.Sprintf("file:%s pageNo:%d valid:%v dirty:%v refbit:%v pinCount:%d",
		filename, desc.pageNo, desc.valid, desc.dirty, desc.refbit, desc.pinCount)
}
