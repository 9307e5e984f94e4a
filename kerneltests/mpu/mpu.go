// Package mpu models memory-protection-unit regions and registers the
// kernel tests that verify protection boundaries. The region arithmetic
// mirrors the constraints of a Cortex-M style MPU: power-of-two region
// sizes, base addresses aligned to the region size, and a fixed number of
// hardware region slots.
package mpu

import (
	"fmt"
	"math/bits"
)

const (
	// MinRegionSize is the smallest configurable region, in bytes.
	MinRegionSize uint32 = 32

	// NumRegions is the number of hardware region slots.
	NumRegions = 8

	// Memory map anchors for a Cortex-M class part.
	FlashBase      uint32 = 0x0000_0000
	RAMBase        uint32 = 0x2000_0000
	PeripheralBase uint32 = 0x4000_0000

	// NullGuardSize is the span kept inaccessible at address zero so null
	// pointer dereferences fault instead of reading the vector table.
	NullGuardSize uint32 = 0x1000
)

// Permissions describe the access rights of a region.
type Permissions struct {
	Read    bool
	Write   bool
	Execute bool
}

// Common permission sets.
var (
	ReadExecute = Permissions{Read: true, Execute: true}
	ReadWrite   = Permissions{Read: true, Write: true}
	NoAccess    = Permissions{}
)

// Region is a contiguous protected span of the address space.
type Region struct {
	Base  uint32
	Size  uint32
	Perms Permissions
}

// Valid checks the hardware constraints: minimum size, power-of-two size,
// and base alignment to the size.
func (r Region) Valid() error {
	if r.Size < MinRegionSize {
		return fmt.Errorf("mpu: region size %#x below minimum %#x", r.Size, MinRegionSize)
	}
	if bits.OnesCount32(r.Size) != 1 {
		return fmt.Errorf("mpu: region size %#x is not a power of two", r.Size)
	}
	if r.Base&(r.Size-1) != 0 {
		return fmt.Errorf("mpu: region base %#x not aligned to size %#x", r.Base, r.Size)
	}
	return nil
}

// End returns the first address past the region.
func (r Region) End() uint32 {
	return r.Base + r.Size
}

// Contains reports whether the address lies inside the region.
func (r Region) Contains(addr uint32) bool {
	return addr >= r.Base && addr < r.End()
}

// Overlaps reports whether two regions share any address.
func (r Region) Overlaps(other Region) bool {
	return r.Base < other.End() && other.Base < r.End()
}

// Map is a configured set of MPU regions.
type Map struct {
	regions []Region
}

// NewMap returns an empty region map.
func NewMap() *Map {
	return &Map{}
}

// Add configures one region. It rejects invalid regions, overlapping
// regions, and exhaustion of the hardware slots.
func (m *Map) Add(r Region) error {
	if err := r.Valid(); err != nil {
		return err
	}
	if len(m.regions) >= NumRegions {
		return fmt.Errorf("mpu: all %d region slots in use", NumRegions)
	}
	for _, existing := range m.regions {
		if existing.Overlaps(r) {
			return fmt.Errorf("mpu: region %#x+%#x overlaps region %#x+%#x",
				r.Base, r.Size, existing.Base, existing.Size)
		}
	}
	m.regions = append(m.regions, r)
	return nil
}

// Check returns the permissions governing an address. Addresses covered by
// no region have no access.
func (m *Map) Check(addr uint32) Permissions {
	for _, r := range m.regions {
		if r.Contains(addr) {
			return r.Perms
		}
	}
	return NoAccess
}

// Len returns the number of configured regions.
func (m *Map) Len() int {
	return len(m.regions)
}
