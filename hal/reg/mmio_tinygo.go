//go:build tinygo

package reg

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO is the CPU's own address space.
var MMIO Space = mmio{}

type mmio struct{}

func (mmio) Load(addr uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (mmio) Store(addr uintptr, v uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), v)
}

func (mmio) BusAddress(p unsafe.Pointer) uint32 { return uint32(uintptr(p)) }
