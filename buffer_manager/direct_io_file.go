package buffer_manager

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// DirectIOFile is a paged file whose pages move directly between process
// memory and the disk controller.

// Direct I/O bypasses the kernel page cache, this is useful because:
// 1. It prevents page data from being cached twice, once in the kernel page cache, and once in the buffer pool.
// 2. It gives the buffer manager complete control over when data is flushed to disk.

type DirectIOFile struct {
	file *os.File
	path string

	deletedPageNoList  []PageID
	maxAllocatedPageNo PageID
}

func NewDirectIOFile(path string) (*DirectIOFile, error) {

	// flag represents whether the file already exists at the given path or not.
	newFileCreated := false

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Info("file does not exist, creating new file...", "path", path, "function", "NewDirectIOFile", "at", "DirectIOFile")
		newFileCreated = true
	}

	slog.Info("Opening file in DIRECT I/O mode", "path", path, "function", "NewDirectIOFile", "at", "DirectIOFile")

	file, err := OpenFileDirectIO(path, os.O_RDWR|os.O_CREATE, 0644)

	if err != nil {
		return nil, err
	}

	paged := &DirectIOFile{
		file: file,
		path: path,
	}

	// a new file gets a metadata page written to it, an existing file has its
	// metadata page read back in.
	if newFileCreated {

		slog.Info("writing new metadata page", "function", "NewDirectIOFile", "at", "DirectIOFile")

		if err = paged.write(METADATA_PAGE_NO*PAGE_SIZE, paged.serializeMetadataPage()); err != nil {

			slog.Error("Failed to write metadata page", "error", err.Error(), "function", "NewDirectIOFile", "at", "DirectIOFile")

			return nil, err
		}

	} else {

		slog.Info("Reading metadata page from existing file", "function", "NewDirectIOFile", "at", "DirectIOFile")

		metadataPageData, err := paged.read(METADATA_PAGE_NO*PAGE_SIZE, PAGE_SIZE)

		if err != nil {

			slog.Error("Failed to read metadata page", "error", err.Error(), "function", "NewDirectIOFile", "at", "DirectIOFile")
			return nil, err
		}

		paged.deserializeMetadataPage(metadataPageData)
	}

	return paged, nil
}

// write copies data into a page-aligned block, then writes it to a particular
// offset in the file. O_DIRECT requires aligned user buffers.
func (paged *DirectIOFile) write(offset int64, data []byte) error {

	block := AllocateAlignedBuffer(len(data))
	copy(block, data)

	// WriteAt internally calls the pwrite system call, which seeks and writes
	// without disturbing the file offset.
	n, err := paged.file.WriteAt(block, offset)

	if err != nil {
		slog.Error("Failed to write data", "error", err.Error(), "function", "write", "at", "DirectIOFile")
		return err
	}

	if n != len(block) {
		return fmt.Errorf("incomplete write")
	}
	return nil
}

// read reads a page-aligned amount of data starting from a particular offset
// in the file into a page-aligned block.
func (paged *DirectIOFile) read(offset int64, size int) ([]byte, error) {

	block := AllocateAlignedBuffer(size)

	// ReadAt internally calls the pread system call, which seeks and reads
	// without disturbing the file offset.
	n, err := paged.file.ReadAt(block, offset)

	if err != nil {
		slog.Error("Failed to read data", "error", err.Error(), "function", "read", "at", "DirectIOFile")
		return nil, err
	}
	if n != size {
		return nil, fmt.Errorf("incomplete read")
	}
	return block, nil

}

// ReadPage returns the page with the given page number by value.
func (paged *DirectIOFile) ReadPage(pageNo PageID) (Page, error) {

	data, err := paged.read(int64(pageNo)*PAGE_SIZE, PAGE_SIZE)

	if err != nil {
		return Page{}, err
	}

	return Page{pageNo: pageNo, data: data}, nil
}

// WritePage persists the page at the offset derived from its page number.
func (paged *DirectIOFile) WritePage(page *Page) error {

	return paged.write(int64(page.pageNo)*PAGE_SIZE, page.data)
}

// AllocatePage allocates a page in the file and returns it.
// It reuses a deleted page number if available, otherwise the file grows in
// 16 page extents and the next page number past the old end is handed out.
func (paged *DirectIOFile) AllocatePage() (Page, error) {

	if len(paged.deletedPageNoList) > 0 {

		pageNo := paged.deletedPageNoList[0]

		slog.Info(fmt.Sprintf("allocating existing page with page number = %d", pageNo), "function", "AllocatePage", "at", "DirectIOFile")

		paged.deletedPageNoList = paged.deletedPageNoList[1:]
		return NewPage(pageNo), nil
	}

	fileStats, err := paged.file.Stat()

	if err != nil {
		return Page{}, err
	}

	// if the number of pages in the file = max allocated page number + 1
	// (plus one because of the metadata page), the file is full and 16 pages
	// are added to the end.
	if paged.maxAllocatedPageNo+1 == PageID(fileStats.Size()/PAGE_SIZE) {

		if err := paged.write(int64(paged.maxAllocatedPageNo+1)*PAGE_SIZE, make([]byte, PAGE_SIZE*16)); err != nil {
			slog.Error("Failed to extend file", "error", err.Error(), "function", "AllocatePage", "at", "DirectIOFile")
			return Page{}, err
		}
	}

	pageNo := paged.maxAllocatedPageNo + 1
	paged.maxAllocatedPageNo++

	slog.Info(fmt.Sprintf("allocating new page with page number = %d", pageNo), "function", "AllocatePage", "at", "DirectIOFile")

	return NewPage(pageNo), nil
}

// DeletePage makes a page number available for future allocation.
func (paged *DirectIOFile) DeletePage(pageNo PageID) error {

	slog.Info(fmt.Sprintf("deleting page with page number = %d", pageNo), "function", "DeletePage", "at", "DirectIOFile")

	paged.deletedPageNoList = append(paged.deletedPageNoList, pageNo)
	return nil
}

// Filename identifies the file in error messages and diagnostics.
func (paged *DirectIOFile) Filename() string {
	return paged.path
}

// Close writes the serialized metadata page to the file, then closes it.
func (paged *DirectIOFile) Close() error {

	slog.Info("Closing DirectIOFile...", "function", "Close", "at", "DirectIOFile")

	if err := paged.write(METADATA_PAGE_NO*PAGE_SIZE, paged.serializeMetadataPage()); err != nil {

		slog.Error("Failed to write metadata page", "error", err.Error(), "function", "Close", "at", "DirectIOFile")

		return err
	}

	if err := paged.file.Close(); err != nil {

		slog.Error("Failed to close file", "error", err.Error(), "function", "Close", "at", "DirectIOFile")

		return err
	}

	return nil
}

// serializeMetadataPage encodes the max allocated page number and the list of
// deleted page numbers so they survive a restart.
func (paged *DirectIOFile) serializeMetadataPage() []byte {

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
func (paged *DirectIOFile) deserializeMetadataPage(data []byte) {

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
