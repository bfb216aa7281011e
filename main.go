package main

import "fmt"

func main() {

	engine := NewStorageEngine(5)

	file, err := engine.OpenFile("wyvern.db")

	if err != nil {
		panic(err)
	}

	bufMgr := engine.BufMgr()

	pageNo, page, err := bufMgr.AllocPage(file)

	if err != nil {
		panic(err)
	}

	greeting := []byte("hello, wyvern")

	copy(page.Data(), greeting)

	if err := bufMgr.UnPinPage(file, pageNo, true); err != nil {
		panic(err)
	}

	guard, err := bufMgr.NewPageGuard(file, pageNo)

	if err != nil {
		panic(err)
	}

	fmt.Printf("page %d => %s\n", guard.PageNumber(), guard.Data()[:len(greeting)])

	guard.Done()

	bufMgr.PrintSelf()

	if err := engine.Close(); err != nil {
		panic(err)
	}
}
