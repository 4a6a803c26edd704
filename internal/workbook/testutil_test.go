package workbook

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/slatehq/workbench/internal/docstore"
)

// fakeStore is an in-memory docstore.Resource for tests.
type fakeStore struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage

	saveCount int
	saveErr   error
	callErr   error
	perms     []docstore.SharePermission
	lastCall  string
	lastArgs  map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]json.RawMessage)}
}

func key(doctype, name string) string {
	return doctype + "/" + name
}

func (f *fakeStore) put(doctype, name string, doc any) {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	f.docs[key(doctype, name)] = data
	f.mu.Unlock()
}

func (f *fakeStore) Load(_ context.Context, doctype, name string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.docs[key(doctype, name)]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) Save(_ context.Context, doctype, name string, doc any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	f.docs[key(doctype, name)] = data
	f.saveCount++
	return nil
}

func (f *fakeStore) Delete(_ context.Context, doctype, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[key(doctype, name)]; !ok {
		return docstore.ErrNotFound
	}
	delete(f.docs, key(doctype, name))
	return nil
}

func (f *fakeStore) Call(_ context.Context, _, _, method string, args map[string]any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCall = method
	f.lastArgs = args
	if f.callErr != nil {
		return nil, f.callErr
	}
	switch method {
	case docstore.MethodGetShares:
		return json.Marshal(f.perms)
	case docstore.MethodUpdateShares:
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected method %q", method)
}

func (f *fakeStore) saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCount
}

func (f *fakeStore) has(doctype, name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[key(doctype, name)]
	return ok
}

// testWorkbook returns a minimal workbook document.
func testWorkbook(name string) *Workbook {
	return &Workbook{Name: name, Title: "Test Workbook", Owner: "alice"}
}
