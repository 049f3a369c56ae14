// Package mempool pools the float32 tensor buffers allocated on the
// recognition hot path. One buffer is built per inference; without reuse
// every request churns a multi-hundred-kilobyte allocation.
package mempool

import "sync"

// sizeClass rounds n up to a 1 KiB-element bucket to keep the pool count
// bounded.
func sizeClass(n int) int {
	const step = 1024
	if n <= step {
		return step
	}
	return ((n + step - 1) / step) * step
}

var float32Pools sync.Map // size class -> *sync.Pool

// GetFloat32 returns a []float32 of length n, possibly reused. Contents
// are undefined; the caller overwrites every element. Return the buffer
// with PutFloat32 once the tensor built from it is destroyed.
func GetFloat32(n int) []float32 {
	cls := sizeClass(n)
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{
		New: func() any { return make([]float32, cls) },
	})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return make([]float32, n)
	}
	buf, ok := p.Get().([]float32)
	if !ok || cap(buf) < n {
		buf = make([]float32, cls)
	}
	return buf[:n]
}

// PutFloat32 returns a buffer to its size-class pool. Nil is a no-op.
func PutFloat32(buf []float32) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	pAny, _ := float32Pools.LoadOrStore(cls, &sync.Pool{
		New: func() any { return make([]float32, cls) },
	})
	if p, ok := pAny.(*sync.Pool); ok {
		p.Put(buf[:cap(buf)]) //nolint:staticcheck
	}
}
