package buffer_manager

import "log/slog"

// clockReplacer picks victim frames using the second-chance algorithm.
// It shares the frame table, pool and page index with the buffer manager
// that owns it.
type clockReplacer struct {
	frames []FrameDescriptor
	pool   []Page
	index  *pageIndex

	hand FrameID
}

// newClockReplacer starts the hand on the last frame so the first advance
// lands on frame 0.
func newClockReplacer(frames []FrameDescriptor, pool []Page, index *pageIndex) *clockReplacer {

	return &clockReplacer{
		frames: frames,
		pool:   pool,
		index:  index,
		hand:   FrameID(len(frames) - 1),
	}
}

func (replacer *clockReplacer) advance() {
	replacer.hand = (replacer.hand + 1) % FrameID(len(replacer.frames))
}

// allocFrame sweeps the frame table and returns a cleared frame.
//
// An invalid frame is taken immediately. A referenced frame loses its refbit
// and is passed over, a pinned frame is passed over, and the first frame that
// is valid, unreferenced and unpinned is evicted: its index entry is removed
// and, if dirty, its page is written back first. The sweep runs two full
// revolutions so every frame whose refbit was cleared on the first pass gets
// revisited; if it still finds nothing, every frame is pinned.
func (replacer *clockReplacer) allocFrame() (FrameID, error) {

	numBufs := uint32(len(replacer.frames))

	for scanned := uint32(0); scanned < 2*numBufs; scanned++ {

		replacer.advance()

		desc := &replacer.frames[replacer.hand]

		if !desc.valid {
			desc.clear()
			return desc.frameNo, nil
		}

		if desc.refbit {
			desc.refbit = false
			continue
		}

		if desc.pinCount > 0 {
			continue
		}

		replacer.index.remove(desc.file, desc.pageNo)

		if desc.dirty {

			if err := desc.file.WritePage(&replacer.pool[desc.frameNo]); err != nil {
				slog.Error("failed to write back evicted page", "filename", desc.file.Filename(), "pageNo", desc.pageNo, "error", err.Error())
				return 0, err
			}

			desc.dirty = false
		}

		desc.clear()
		return desc.frameNo, nil
	}

	return 0, ErrBufferExceeded
}
