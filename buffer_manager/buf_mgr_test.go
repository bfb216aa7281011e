package buffer_manager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// memFile is an in-memory File used to count the I/O calls the buffer
// manager makes.
type memFile struct {
	name  string
	pages map[PageID][]byte

	maxAllocatedPageNo PageID

	readCount   map[PageID]int
	writeCount  map[PageID]int
	deleteCount map[PageID]int
}

func newMemFile(name string, pageCount int) *memFile {

	file := &memFile{
		name:        name,
		pages:       make(map[PageID][]byte),
		readCount:   make(map[PageID]int),
		writeCount:  make(map[PageID]int),
		deleteCount: make(map[PageID]int),
	}

	for i := 1; i <= pageCount; i++ {

		data := make([]byte, PAGE_SIZE)
		data[0] = byte(i)

		file.pages[PageID(i)] = data
		file.maxAllocatedPageNo = PageID(i)
	}

	return file
}

func (file *memFile) ReadPage(pageNo PageID) (Page, error) {

	file.readCount[pageNo]++

	stored, exists := file.pages[pageNo]

	if !exists {
		return Page{}, fmt.Errorf("page %d does not exist in file %s", pageNo, file.name)
	}

	data := make([]byte, PAGE_SIZE)
	copy(data, stored)

	return Page{pageNo: pageNo, data: data}, nil
}

func (file *memFile) WritePage(page *Page) error {

	file.writeCount[page.pageNo]++

	data := make([]byte, PAGE_SIZE)
	copy(data, page.data)

	file.pages[page.pageNo] = data
	return nil
}

func (file *memFile) AllocatePage() (Page, error) {

	file.maxAllocatedPageNo++
	pageNo := file.maxAllocatedPageNo

	file.pages[pageNo] = make([]byte, PAGE_SIZE)

	return NewPage(pageNo), nil
}

func (file *memFile) DeletePage(pageNo PageID) error {

	file.deleteCount[pageNo]++

	delete(file.pages, pageNo)
	return nil
}

func (file *memFile) Filename() string {
	return file.name
}

type BufMgrTestSuite struct {
	suite.Suite

	mgr  *BufMgr
	file *memFile
}

func (bs *BufMgrTestSuite) SetupTest() {

	bs.file = newMemFile("test_file.dat", 8)
	bs.mgr = NewBufMgr(3)
}

func (bs *BufMgrTestSuite) TestReadPageHit() {

	// first read is a miss that loads the page from the file.
	page, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)
	bs.Suite.Assert().Equal(byte(1), page.Data()[0])

	frameNo, ok := bs.mgr.index.lookup(bs.file, 1)

	bs.Suite.Require().Equal(true, ok)
	bs.Suite.Assert().Equal(uint32(1), bs.mgr.frames[frameNo].pinCount)
	bs.Suite.Assert().Equal(true, bs.mgr.frames[frameNo].refbit)

	err = bs.mgr.UnPinPage(bs.file, 1, false)

	bs.Suite.Require().NoError(err)

	// second read must be served from the pool.
	page, err = bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)
	bs.Suite.Assert().Equal(byte(1), page.Data()[0])

	bs.Suite.Assert().Equal(1, bs.file.readCount[1])
	bs.Suite.Assert().Equal(uint32(1), bs.mgr.frames[frameNo].pinCount)
	bs.Suite.Assert().Equal(true, bs.mgr.frames[frameNo].refbit)

	err = bs.mgr.UnPinPage(bs.file, 1, false)

	bs.Suite.Require().NoError(err)
}

func (bs *BufMgrTestSuite) TestDirtyPageEviction() {

	mgr := NewBufMgr(2)

	// modify page 1, then release it dirty.
	page, err := mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	page.Data()[1] = 42

	bs.Suite.Require().NoError(mgr.UnPinPage(bs.file, 1, true))

	_, err = mgr.ReadPage(bs.file, 2)

	bs.Suite.Require().NoError(err)
	bs.Suite.Require().NoError(mgr.UnPinPage(bs.file, 2, false))

	// the pool is full, reading page 3 sweeps twice and evicts page 1,
	// writing it back first.
	_, err = mgr.ReadPage(bs.file, 3)

	bs.Suite.Require().NoError(err)

	bs.Suite.Assert().Equal(1, bs.file.writeCount[1])
	bs.Suite.Assert().Equal(0, bs.file.writeCount[2])
	bs.Suite.Assert().Equal(byte(42), bs.file.pages[1][1])

	_, ok := mgr.index.lookup(bs.file, 1)

	bs.Suite.Assert().Equal(false, ok)
}

func (bs *BufMgrTestSuite) TestBufferExceeded() {

	mgr := NewBufMgr(2)

	_, err := mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	_, err = mgr.ReadPage(bs.file, 2)

	bs.Suite.Require().NoError(err)

	// every frame is pinned, the next miss must fail.
	_, err = mgr.ReadPage(bs.file, 3)

	bs.Suite.Assert().Equal(true, errors.Is(err, ErrBufferExceeded))

	// the resident set is unchanged.
	_, ok := mgr.index.lookup(bs.file, 1)
	bs.Suite.Assert().Equal(true, ok)

	_, ok = mgr.index.lookup(bs.file, 2)
	bs.Suite.Assert().Equal(true, ok)
}

func (bs *BufMgrTestSuite) TestUnpinPageNotPinned() {

	_, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, false))

	err = bs.mgr.UnPinPage(bs.file, 1, false)

	var notPinned *PageNotPinnedError

	bs.Suite.Require().Equal(true, errors.As(err, &notPinned))
	bs.Suite.Assert().Equal("test_file.dat", notPinned.Filename)
	bs.Suite.Assert().Equal(PageID(1), notPinned.PageNo)
}

func (bs *BufMgrTestSuite) TestUnpinNonResidentPage() {

	// unpinning a page that was never read is tolerated.
	err := bs.mgr.UnPinPage(bs.file, 7, false)

	bs.Suite.Assert().NoError(err)
}

func (bs *BufMgrTestSuite) TestPinCounting() {

	_, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	_, err = bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	frameNo, ok := bs.mgr.index.lookup(bs.file, 1)

	bs.Suite.Require().Equal(true, ok)
	bs.Suite.Assert().Equal(uint32(2), bs.mgr.frames[frameNo].pinCount)

	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, false))

	bs.Suite.Assert().Equal(uint32(1), bs.mgr.frames[frameNo].pinCount)

	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, false))

	bs.Suite.Assert().Equal(uint32(0), bs.mgr.frames[frameNo].pinCount)
}

func (bs *BufMgrTestSuite) TestStickyDirtyFlag() {

	_, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)
	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, true))

	_, err = bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	// a later clean unpin must not clear the dirty flag.
	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, false))

	frameNo, ok := bs.mgr.index.lookup(bs.file, 1)

	bs.Suite.Require().Equal(true, ok)
	bs.Suite.Assert().Equal(true, bs.mgr.frames[frameNo].dirty)
}

func (bs *BufMgrTestSuite) TestAllocPage() {

	pageNo, page, err := bs.mgr.AllocPage(bs.file)

	bs.Suite.Require().NoError(err)
	bs.Suite.Assert().Equal(PageID(9), pageNo)
	bs.Suite.Assert().Equal(pageNo, page.PageNumber())

	frameNo, ok := bs.mgr.index.lookup(bs.file, pageNo)

	bs.Suite.Require().Equal(true, ok)
	bs.Suite.Assert().Equal(uint32(1), bs.mgr.frames[frameNo].pinCount)

	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, pageNo, false))
}

func (bs *BufMgrTestSuite) TestDisposePage() {

	_, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)
	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, false))

	bs.Suite.Require().NoError(bs.mgr.DisposePage(bs.file, 1))

	_, ok := bs.mgr.index.lookup(bs.file, 1)

	bs.Suite.Assert().Equal(false, ok)
	bs.Suite.Assert().Equal(1, bs.file.deleteCount[1])
}

func (bs *BufMgrTestSuite) TestDisposeNonResidentPage() {

	bs.Suite.Require().NoError(bs.mgr.DisposePage(bs.file, 5))

	bs.Suite.Assert().Equal(1, bs.file.deleteCount[5])
}

func (bs *BufMgrTestSuite) TestFlushFile() {

	page, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	page.Data()[1] = 99

	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, true))

	_, err = bs.mgr.ReadPage(bs.file, 2)

	bs.Suite.Require().NoError(err)
	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 2, false))

	bs.Suite.Require().NoError(bs.mgr.FlushFile(bs.file))

	// the dirty page was written back, the clean one was not.
	bs.Suite.Assert().Equal(1, bs.file.writeCount[1])
	bs.Suite.Assert().Equal(0, bs.file.writeCount[2])
	bs.Suite.Assert().Equal(byte(99), bs.file.pages[1][1])

	// nothing from the file is resident anymore.
	_, ok := bs.mgr.index.lookup(bs.file, 1)
	bs.Suite.Assert().Equal(false, ok)

	_, ok = bs.mgr.index.lookup(bs.file, 2)
	bs.Suite.Assert().Equal(false, ok)
}

func (bs *BufMgrTestSuite) TestFlushFilePagePinned() {

	_, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	err = bs.mgr.FlushFile(bs.file)

	var pinned *PagePinnedError

	bs.Suite.Require().Equal(true, errors.As(err, &pinned))
	bs.Suite.Assert().Equal(PageID(1), pinned.PageNo)

	// the page is still resident and nothing was written.
	_, ok := bs.mgr.index.lookup(bs.file, 1)

	bs.Suite.Assert().Equal(true, ok)
	bs.Suite.Assert().Equal(0, bs.file.writeCount[1])
}

func (bs *BufMgrTestSuite) TestFlushFileBadBuffer() {

	_, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)
	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, false))

	// corrupt the descriptor so the flush trips over it.
	frameNo, ok := bs.mgr.index.lookup(bs.file, 1)

	bs.Suite.Require().Equal(true, ok)

	bs.mgr.frames[frameNo].pageNo = INVALID_PAGE_NUMBER

	err = bs.mgr.FlushFile(bs.file)

	var badBuffer *BadBufferError

	bs.Suite.Require().Equal(true, errors.As(err, &badBuffer))
	bs.Suite.Assert().Equal(frameNo, badBuffer.FrameNo)
	bs.Suite.Assert().Equal(true, badBuffer.Valid)
}

func (bs *BufMgrTestSuite) TestFlushFileLeavesOtherFilesResident() {

	otherFile := newMemFile("other_file.dat", 4)

	_, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)
	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, false))

	_, err = bs.mgr.ReadPage(otherFile, 1)

	bs.Suite.Require().NoError(err)
	bs.Suite.Require().NoError(bs.mgr.UnPinPage(otherFile, 1, false))

	bs.Suite.Require().NoError(bs.mgr.FlushFile(bs.file))

	_, ok := bs.mgr.index.lookup(otherFile, 1)

	bs.Suite.Assert().Equal(true, ok)
}

func (bs *BufMgrTestSuite) TestCloseWritesBackDirtyPages() {

	page, err := bs.mgr.ReadPage(bs.file, 1)

	bs.Suite.Require().NoError(err)

	page.Data()[1] = 7

	bs.Suite.Require().NoError(bs.mgr.UnPinPage(bs.file, 1, true))

	bs.Suite.Require().NoError(bs.mgr.Close())

	bs.Suite.Assert().Equal(1, bs.file.writeCount[1])
	bs.Suite.Assert().Equal(byte(7), bs.file.pages[1][1])
}

func TestBufMgr(t *testing.T) {

	suite.Run(t, new(BufMgrTestSuite))
}
