package buffer_manager

import (
	"fmt"
	"log/slog"
)

// BufMgr keeps a bounded number of pages resident in memory on behalf of
// callers, evicting with a clock sweep when space runs out.
//
// All operations run on the calling goroutine; the manager holds no locks.
// A page reference returned by ReadPage or AllocPage aliases a pool slot and
// is only valid until the matching UnPinPage.
type BufMgr struct {
	numBufs uint32

	pool     []Page
	frames   []FrameDescriptor
	index    *pageIndex
	replacer *clockReplacer
}

// NewBufMgr allocates a pool of numBufs page frames. numBufs must be at least 1.
func NewBufMgr(numBufs uint32) *BufMgr {

	if numBufs == 0 {
		panic("buffer pool must hold at least one frame")
	}

	pool := make([]Page, numBufs)
	frames := make([]FrameDescriptor, numBufs)

	for i := range frames {
		pool[i] = NewPage(INVALID_PAGE_NUMBER)
		frames[i].frameNo = FrameID(i)
	}

	index := newPageIndex(numBufs)

	return &BufMgr{
		numBufs:  numBufs,
		pool:     pool,
		frames:   frames,
		index:    index,
		replacer: newClockReplacer(frames, pool, index),
	}
}

// ReadPage pins the page and returns a reference to its pool slot.
// The page is loaded from the file if it is not already resident.
func (mgr *BufMgr) ReadPage(file File, pageNo PageID) (*Page, error) {

	if frameNo, ok := mgr.index.lookup(file, pageNo); ok {

		desc := &mgr.frames[frameNo]
		desc.refbit = true
		desc.pinCount++

		return &mgr.pool[frameNo], nil
	}

	frameNo, err := mgr.replacer.allocFrame()

	if err != nil {
		return nil, err
	}

	page, err := file.ReadPage(pageNo)

	// the index entry is installed only after a successful load,
	// so a failed read leaves no stale mapping.
	if err != nil {
		return nil, err
	}

	slot := &mgr.pool[frameNo]
	slot.pageNo = page.pageNo
	copy(slot.data, page.data)

	mgr.index.insert(file, pageNo, frameNo)
	mgr.frames[frameNo].set(file, pageNo)

	return slot, nil
}

// UnPinPage drops one pin from the page. Unpinning a page that is not
// resident is tolerated; unpinning a resident page with no outstanding pins
// returns PageNotPinnedError. A true dirty flag is sticky until write-back.
func (mgr *BufMgr) UnPinPage(file File, pageNo PageID, dirty bool) error {

	frameNo, ok := mgr.index.lookup(file, pageNo)

	if !ok {
		return nil
	}

	desc := &mgr.frames[frameNo]

	if desc.pinCount == 0 {
		return &PageNotPinnedError{
			Filename: file.Filename(),
			PageNo:   pageNo,
			FrameNo:  frameNo,
		}
	}

	desc.pinCount--

	if dirty {
		desc.dirty = true
	}

	return nil
}

// AllocPage allocates a new page in the file, makes it resident and pinned,
// and returns its number alongside a reference to its pool slot.
func (mgr *BufMgr) AllocPage(file File) (PageID, *Page, error) {

	page, err := file.AllocatePage()

	if err != nil {
		return 0, nil, err
	}

	frameNo, err := mgr.replacer.allocFrame()

	if err != nil {
		return 0, nil, err
	}

	slot := &mgr.pool[frameNo]
	slot.pageNo = page.pageNo
	copy(slot.data, page.data)

	pageNo := page.PageNumber()

	mgr.index.insert(file, pageNo, frameNo)
	mgr.frames[frameNo].set(file, pageNo)

	return pageNo, slot, nil
}

// DisposePage removes the page from the pool if resident, then deletes it
// from the file. The caller is expected to hold no pin on the page.
func (mgr *BufMgr) DisposePage(file File, pageNo PageID) error {

	if frameNo, ok := mgr.index.lookup(file, pageNo); ok {
		mgr.index.remove(file, pageNo)
		mgr.frames[frameNo].clear()
	}

	return file.DeletePage(pageNo)
}

// FlushFile writes back every dirty resident page of the file and drops all
// of the file's pages from the pool. The caller must have unpinned them all:
// the flush stops at the first pinned or corrupt frame, leaving frames
// already processed flushed and cleared.
func (mgr *BufMgr) FlushFile(file File) error {

	for i := range mgr.frames {

		desc := &mgr.frames[i]

		if !desc.valid || desc.file != file {
			continue
		}

		if desc.pageNo == INVALID_PAGE_NUMBER {
			return &BadBufferError{
				FrameNo: desc.frameNo,
				Dirty:   desc.dirty,
				Valid:   desc.valid,
				Refbit:  desc.refbit,
			}
		}

		if desc.pinCount > 0 {
			return &PagePinnedError{
				Filename: file.Filename(),
				PageNo:   desc.pageNo,
				FrameNo:  desc.frameNo,
			}
		}

		if desc.dirty {

			if err := file.WritePage(&mgr.pool[i]); err != nil {
				slog.Error("failed to flush page", "filename", file.Filename(), "pageNo", desc.pageNo, "error", err.Error())
				return err
			}

			desc.dirty = false
		}

		mgr.index.remove(file, desc.pageNo)
		desc.clear()
	}

	return nil
}

// Close writes back every valid dirty page still resident in the pool and
// releases it. Pages pinned at shutdown are a caller bug, not an error; they
// are written back like the rest.
func (mgr *BufMgr) Close() error {

	for i := range mgr.frames {

		desc := &mgr.frames[i]

		if !desc.valid || !desc.dirty {
			continue
		}

		if err := desc.file.WritePage(&mgr.pool[i]); err != nil {
			slog.Error("failed to write back dirty page on close", "filename", desc.file.Filename(), "pageNo", desc.pageNo, "error", err.Error())
			return err
		}

		desc.dirty = false
	}

	mgr.pool = nil
	mgr.frames = nil

	return nil
}

// PrintSelf dumps the state of every frame and the number of valid frames.
func (mgr *BufMgr) PrintSelf() {

	validFrames := 0

	for i := range mgr.frames {

		fmt.Printf("FrameNo:%d %s\n", i, mgr.frames[i].String())

		if mgr.frames[i].valid {
			validFrames++
		}
	}

	fmt.Printf("Total Number of Valid Frames:%d\n", validFrames)
}
