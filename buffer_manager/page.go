package buffer_manager

const (
	PAGE_SIZE        = 4096
	METADATA_PAGE_NO = 0

	// INVALID_PAGE_NUMBER is the reserved metadata page number.
	// It is never handed out by AllocatePage, so a resident frame carrying it
	// means the descriptor table is corrupt.
	INVALID_PAGE_NUMBER PageID = 0
)

type PageID uint64

type FrameID uint32

// Page is the unit of transfer between a file and the buffer pool.
// Each page carries its own page number.
type Page struct {
	pageNo PageID
	data   []byte
}

func NewPage(pageNo PageID) Page {
	return Page{
		pageNo: pageNo,
		data:   make([]byte, PAGE_SIZE),
	}
}

// PageNumber returns the page number assigned by the owning file.
func (page *Page) PageNumber() PageID {
	return page.pageNo
}

// Data returns the page payload. The slice aliases the buffer pool slot,
// so it must not be used after the page is unpinned.
func (page *Page) Data() []byte {
	return page.data
}
