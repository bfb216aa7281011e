package main

import (
	"fmt"

	"github.com/Adarsh-Kmt/WyvernDB/buffer_manager"
)

// StorageEngine owns the paged files and the buffer manager shared between them.
type StorageEngine struct {
	bufMgr *buffer_manager.BufMgr

	openFiles map[string]*buffer_manager.OSBufferedFile
}

func NewStorageEngine(numBufs uint32) *StorageEngine {

	return &StorageEngine{
		bufMgr:    buffer_manager.NewBufMgr(numBufs),
		openFiles: make(map[string]*buffer_manager.OSBufferedFile),
	}
}

// BufMgr exposes the shared buffer manager.
func (engine *StorageEngine) BufMgr() *buffer_manager.BufMgr {
	return engine.bufMgr
}

// OpenFile opens the paged file at the given path, reusing the handle if the
// file is already open. Pages are resident under the handle's identity, so a
// path must never be opened through two handles at once.
func (engine *StorageEngine) OpenFile(path string) (*buffer_manager.OSBufferedFile, error) {

	file, exists := engine.openFiles[path]

	if exists {
		return file, nil
	}

	file, err := buffer_manager.NewOSBufferedFile(path)

	if err != nil {
		return nil, err
	}

	engine.openFiles[path] = file
	return file, nil
}

// CloseFile flushes the file's resident pages out of the buffer pool, then
// closes the file. All of its pages must be unpinned.
func (engine *StorageEngine) CloseFile(path string) error {

	file, exists := engine.openFiles[path]

	if !exists {
		return fmt.Errorf("file %s is not open", path)
	}

	if err := engine.bufMgr.FlushFile(file); err != nil {
		return err
	}

	delete(engine.openFiles, path)
	return file.Close()
}

// Close writes back every dirty resident page, then closes the open files.
func (engine *StorageEngine) Close() error {

	if err := engine.bufMgr.Close(); err != nil {
		return err
	}

	for path, file := range engine.openFiles {

		if err := file.Close(); err != nil {
			return err
		}

		delete(engine.openFiles, path)
	}

	return nil
}
