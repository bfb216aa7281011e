package buffer_manager

// File is a paged file the buffer manager mediates access to.
// The manager never opens, closes or frees files; callers own them.
type File interface {

	// ReadPage returns the page with the given page number by value.
	ReadPage(pageNo PageID) (Page, error)

	// WritePage persists the page at the offset derived from its page number.
	WritePage(page *Page) error

	// AllocatePage allocates a page in the file and returns it.
	// The returned page carries its newly assigned page number.
	AllocatePage() (Page, error)

	// DeletePage removes a page from the file, making its number available for reuse.
	DeletePage(pageNo PageID) error

	// Filename identifies the file in error messages and diagnostics.
	Filename() string
}
