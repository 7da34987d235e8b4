//go:build !goheap

package mem

func defaultBackend() Backend {
	return newPageAlloc()
}
