package buffer_manager

import (
	"encoding/binary"
	"hash/fnv"
)

// pageIndex maps the identity of a resident page to the frame holding it.
// It is chained and sized independently from the pool so probe cost stays O(1).
type pageIndex struct {
	buckets []*indexEntry
}

type indexEntry struct {
	file    File
	pageNo  PageID
	frameNo FrameID

	next *indexEntry
}

// newPageIndex allocates a table with roughly 1.2 buckets per frame.
func newPageIndex(numBufs uint32) *pageIndex {

	bucketCount := int(float64(numBufs)*1.2) + 1

	return &pageIndex{
		buckets: make([]*indexEntry, bucketCount),
	}
}

// bucket hashes the page identity to a chain. Files hash by name; two File
// values are only ever considered equal by pointer identity, so a name
// collision costs a longer chain, never a wrong match.
func (index *pageIndex) bucket(file File, pageNo PageID) int {

	hash := fnv.New64a()
	hash.Write([]byte(file.Filename()))

	var pageNoBytes [8]byte
	binary.LittleEndian.PutUint64(pageNoBytes[:], uint64(pageNo))
	hash.Write(pageNoBytes[:])

	return int(hash.Sum64() % uint64(len(index.buckets)))
}

// insert records a page → frame mapping. It returns false if the page is
// already present.
func (index *pageIndex) insert(file File, pageNo PageID, frameNo FrameID) bool {

	slot := index.bucket(file, pageNo)

	for entry := index.buckets[slot]; entry != nil; entry = entry.next {
		if entry.file == file && entry.pageNo == pageNo {
			return false
		}
	}

	index.buckets[slot] = &indexEntry{
		file:    file,
		pageNo:  pageNo,
		frameNo: frameNo,
		next:    index.buckets[slot],
	}

	return true
}

// lookup returns the frame holding the page, if resident.
func (index *pageIndex) lookup(file File, pageNo PageID) (FrameID, bool) {

	slot := index.bucket(file, pageNo)

	for entry := index.buckets[slot]; entry != nil; entry = entry.next {
		if entry.file == file && entry.pageNo == pageNo {
			return entry.frameNo, true
		}
	}

	return 0, false
}

// remove deletes the mapping for a page. It returns false if the page was
// not present.
func (index *pageIndex) remove(file File, pageNo PageID) bool {

	slot := index.bucket(file, pageNo)

	for prev, entry := (*indexEntry)(nil), index.buckets[slot]; entry != nil; prev, entry = entry, entry.next {

		if entry.file != file || entry.pageNo != pageNo {
			continue
		}

		if prev == nil {
			index.buckets[slot] = entry.next
		} else {
			prev.next = entry.next
		}

		return true
	}

	return false
}
