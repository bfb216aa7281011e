package buffer_manager

import (
	"encoding/binary"
	"fmt"
	"os"
)

// OSBufferedFile is a paged file backed by an os.File, going through the
// kernel page cache. Page 0 is a metadata page holding the highest allocated
// page number and the list of deleted page numbers available for reuse.
type OSBufferedFile struct {
	file *os.File
	path string

	deletedPageNoList  []PageID
	maxAllocatedPageNo PageID
}

func NewOSBufferedFile(path string) (*OSBufferedFile, error) {

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)

	if err != nil {
		return nil, err
	}

	paged := &OSBufferedFile{
		file: f,
		path: path,
	}

	stats, err := f.Stat()

	if err != nil {
		return nil, err
	}

	// a brand new file gets its metadata page written immediately,
	// an existing one is restored from its metadata page.
	if stats.Size() == 0 {

		if err := paged.write(METADATA_PAGE_NO*PAGE_SIZE, paged.serializeMetadataPage()); err != nil {
			return nil, err
		}

	} else {

		metadataPageData, err := paged.read(METADATA_PAGE_NO*PAGE_SIZE, PAGE_SIZE)

		if err != nil {
			return nil, err
		}

		paged.deserializeMetadataPage(metadataPageData)
	}

	return paged, nil
}

// writes data to a particular offset in the file.
func (paged *OSBufferedFile) write(offset int64, data []byte) error {

	_, err := paged.file.Seek(offset, 0)
	if err != nil {
		return err
	}

	n, err := paged.file.Write(data)
	if err != nil {
		return err
	}

	if n != len(data) {
		return fmt.Errorf("incomplete write")
	}
	return nil
}

// reads a specified amount of data starting from a particular offset in the file.
func (paged *OSBufferedFile) read(offset int64, size int) ([]byte, error) {

	_, err := paged.file.Seek(offset, 0)
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)

	n, err := paged.file.Read(data)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("incomplete read")
	}
	return data, nil

}

// ReadPage returns the page with the given page number by value.
func (paged *OSBufferedFile) ReadPage(pageNo PageID) (Page, error) {

	data, err := paged.read(int64(pageNo)*PAGE_SIZE, PAGE_SIZE)

	if err != nil {
		return Page{}, err
	}

	return Page{pageNo: pageNo, data: data}, nil
}

// WritePage persists the page at the offset derived from its page number.
func (paged *OSBufferedFile) WritePage(page *Page) error {

	return paged.write(int64(page.pageNo)*PAGE_SIZE, page.data)
}

// AllocatePage allocates a page in the file and returns it.
// It reuses a deleted page number if available, otherwise the file grows by
// one zeroed page.
func (paged *OSBufferedFile) AllocatePage() (Page, error) {

	var pageNo PageID

	if len(paged.deletedPageNoList) > 0 {

		pageNo = paged.deletedPageNoList[0]
		paged.deletedPageNoList = paged.deletedPageNoList[1:]

	} else {

		pageNo = paged.maxAllocatedPageNo + 1
		paged.maxAllocatedPageNo++
	}

	page := NewPage(pageNo)

	if err := paged.write(int64(pageNo)*PAGE_SIZE, page.data); err != nil {
		return Page{}, err
	}

	return page, nil
}

// DeletePage makes a page number available for future allocation.
func (paged *OSBufferedFile) DeletePage(pageNo PageID) error {

	paged.deletedPageNoList = append(paged.deletedPageNoList, pageNo)
	return nil
}

// Filename identifies the file in error messages and diagnostics.
func (paged *OSBufferedFile) Filename() string {
	return paged.path
}

// Close writes the serialized metadata page to the file, then closes it.
func (paged *OSBufferedFile) Close() error {

	if err := paged.write(METADATA_PAGE_NO*PAGE_SIZE, paged.serializeMetadataPage()); err != nil {
		return err
	}

	return paged.file.Close()
}

// serializeMetadataPage encodes the max allocated page number and the list of
// deleted page numbers so they survive a restart.
func (paged *OSBufferedFile) serializeMetadataPage() []byte {

	data := make([]byte, PAGE_SIZE)

	pointer := 0
	binary.LittleEndian.PutUint64(data[pointer:pointer+8], uint64(paged.maxAllocatedPageNo))
	pointer += 8

	binary.LittleEndian.PutUint64(data[pointer:pointer+8], uint64(len(paged.deletedPageNoList)))
	pointer += 8

	for _, pageNo := range paged.deletedPageNoList {
		binary.LittleEndian.PutUint64(data[pointer:pointer+8], uint64(pageNo))
		pointer += 8
	}
	return data

}

// deserializeMetadataPage restores the in-memory free list after a restart.
func (paged *OSBufferedFile) deserializeMetadataPage(data []byte) {

	pointer := 0
	paged.maxAllocatedPageNo = PageID(binary.LittleEndian.Uint64(data[pointer : pointer+8]))

	pointer += 8

	deletedPageListSize := binary.LittleEndian.Uint64(data[pointer : pointer+8])
	pointer += 8

	deletedPageNoList := make([]PageID, 0)

	for i := 0; i < int(deletedPageListSize); i++ {
		deletedPageNoList = append(deletedPageNoList, PageID(binary.LittleEndian.Uint64(data[pointer:pointer+8])))
		pointer += 8
	}

	paged.deletedPageNoList = deletedPageNoList
}
