//go:build !tinygo

package reg

import (
	"sync/atomic"
	"unsafe"
)

// MMIO is the CPU's own address space. Host builds only reach it on a
// target where the peripheral window is actually mapped.
var MMIO Space = mmio{}

type mmio struct{}

func (mmio) Load(addr uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (mmio) Store(addr uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), v)
}

func (mmio) BusAddress(p unsafe.Pointer) uint32 { return uint32(uintptr(p)) }
