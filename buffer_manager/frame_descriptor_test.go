package buffer_manager

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type FrameDescriptorTestSuite struct {
	suite.Suite

	file *memFile
	desc FrameDescriptor
}

func (ds *FrameDescriptorTestSuite) SetupTest() {

	ds.file = newMemFile("test_file.dat", 8)
	ds.desc = FrameDescriptor{frameNo: 2}
}

func (ds *FrameDescriptorTestSuite) TestSet() {

	ds.desc.set(ds.file, 5)

	ds.Suite.Assert().Equal(true, ds.desc.valid)
	ds.Suite.Assert().Equal(false, ds.desc.dirty)
	ds.Suite.Assert().Equal(true, ds.desc.refbit)
	ds.Suite.Assert().Equal(uint32(1), ds.desc.pinCount)
	ds.Suite.Assert().Equal(PageID(5), ds.desc.pageNo)
	ds.Suite.Assert().Equal(FrameID(2), ds.desc.frameNo)
}

func (ds *FrameDescriptorTestSuite) TestClear() {

	ds.desc.set(ds.file, 5)
	ds.desc.dirty = true
	ds.desc.pinCount = 3

	ds.desc.clear()

	ds.Suite.Assert().Equal(false, ds.desc.valid)
	ds.Suite.Assert().Equal(false, ds.desc.dirty)
	ds.Suite.Assert().Equal(false, ds.desc.refbit)
	ds.Suite.Assert().Equal(uint32(0), ds.desc.pinCount)
	ds.Suite.Assert().Nil(ds.desc.file)

	// the frame position never changes.
	ds.Suite.Assert().Equal(FrameID(2), ds.desc.frameNo)
}

func TestFrameDescriptor(t *testing.T) {

	suite.Run(t, new(FrameDescriptorTestSuite))
}
