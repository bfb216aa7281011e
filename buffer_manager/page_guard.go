package buffer_manager

import "log/slog"

// PageGuard ties the lifetime of a page reference to its pin. The page stays
// pinned until Done is called, after which the guard is inert and the
// reference must no longer be used.
type PageGuard struct {

	// active is used to prevent users from using a guard once its Done function has been called.
	active bool
	page   *Page
	file   File
	pageNo PageID
	dirty  bool
	mgr    *BufMgr
}

// NewPageGuard pins the page and returns an active guard for it.
func (mgr *BufMgr) NewPageGuard(file File, pageNo PageID) (*PageGuard, error) {

	page, err := mgr.ReadPage(file, pageNo)

	if err != nil {
		slog.Error("Failed to read page for page guard", "pageNo", pageNo, "error", err.Error())
		return nil, err
	}

	return &PageGuard{
		active: true,
		page:   page,
		file:   file,
		pageNo: pageNo,
		mgr:    mgr,
	}, nil
}

// Data returns the pinned page's payload.
func (guard *PageGuard) Data() []byte {

	if !guard.active {
		return nil
	}

	return guard.page.Data()
}

// PageNumber returns the page number of the page corresponding to the guard.
func (guard *PageGuard) PageNumber() PageID {

	if !guard.active {
		return INVALID_PAGE_NUMBER
	}

	return guard.pageNo
}

// SetDirtyFlag records that the page was modified through this guard.
// The frame is marked dirty when the guard is released.
func (guard *PageGuard) SetDirtyFlag() bool {

	if !guard.active {
		return false
	}

	guard.dirty = true

	return true
}

// Done drops the pin, carrying the guard's dirty flag to the frame.
// A guard becomes inactive and cannot be reused once this function returns true.
func (guard *PageGuard) Done() bool {

	if !guard.active {
		return false
	}

	_ = guard.mgr.UnPinPage(guard.file, guard.pageNo, guard.dirty)

	guard.page = nil
	guard.file = nil
	guard.mgr = nil
	guard.active = false

	return true
}
