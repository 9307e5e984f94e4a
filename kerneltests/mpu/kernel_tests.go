package mpu

import (
	"math/bits"

	"github.com/charles37/tock/registry"
	"github.com/charles37/tock/types"
)

// Module is the name this package contributes tests under.
const Module = "mpu"

func init() {
	registry.Register(Module,
		types.SyncTest("test_mpu_basic_configuration", testBasicConfiguration),
		types.SyncTest("test_mpu_region_boundaries", testRegionBoundaries),
		types.SyncTest("test_mpu_flash_protection", testFlashProtection),
		types.SyncTest("test_mpu_peripheral_isolation", testPeripheralIsolation),
		types.SyncTest("test_mpu_overlapping_regions", testOverlappingRegions),
		types.SyncTest("test_mpu_null_pointer_protection", testNullPointerProtection),
	)
}

func testBasicConfiguration() types.TestResult {
	if NumRegions == 0 {
		return types.Failf("no MPU region slots available")
	}
	if bits.OnesCount32(MinRegionSize) != 1 {
		return types.Failf("minimum region size %#x is not a power of two", MinRegionSize)
	}
	return types.Pass()
}

func testRegionBoundaries() types.TestResult {
	region := Region{Base: RAMBase, Size: MinRegionSize, Perms: ReadWrite}
	if err := region.Valid(); err != nil {
		return types.Failf("minimum region at RAM base rejected: %v", err)
	}
	misaligned := Region{Base: RAMBase + 1, Size: MinRegionSize, Perms: ReadWrite}
	if err := misaligned.Valid(); err == nil {
		return types.Failf("misaligned region base %#x accepted", misaligned.Base)
	}
	undersized := Region{Base: RAMBase, Size: MinRegionSize / 2, Perms: ReadWrite}
	if err := undersized.Valid(); err == nil {
		return types.Failf("region below minimum size accepted")
	}
	return types.Pass()
}

func testFlashProtection() types.TestResult {
	m := NewMap()
	flash := Region{Base: FlashBase, Size: 0x10_0000, Perms: ReadExecute}
	if err := m.Add(flash); err != nil {
		return types.Failf("configuring flash region: %v", err)
	}

	// Probe past the vector table; a write there must be denied.
	probe := FlashBase + 0x1000
	perms := m.Check(probe)
	if perms.Write {
		return types.Failf("flash address %#x is writable", probe)
	}
	if !perms.Read || !perms.Execute {
		return types.Failf("flash address %#x lost read/execute access", probe)
	}
	return types.Pass()
}

func testPeripheralIsolation() types.TestResult {
	if PeripheralBase&0xFFFF != 0 {
		return types.Failf("peripheral base %#x not aligned to a 64KB boundary", PeripheralBase)
	}

	m := NewMap()
	if err := m.Add(Region{Base: PeripheralBase, Size: 0x1_0000, Perms: ReadWrite}); err != nil {
		return types.Failf("configuring peripheral window: %v", err)
	}
	if err := m.Add(Region{Base: RAMBase, Size: 0x1_0000, Perms: ReadWrite}); err != nil {
		return types.Failf("configuring RAM region: %v", err)
	}

	// The peripheral window must not leak into RAM.
	if m.Check(RAMBase - 4).Write {
		return types.Failf("address %#x below RAM is writable", RAMBase-4)
	}
	if !m.Check(PeripheralBase).Write {
		return types.Failf("peripheral base lost write access")
	}
	return types.Pass()
}

func testOverlappingRegions() types.TestResult {
	m := NewMap()
	first := Region{Base: RAMBase, Size: 0x1000, Perms: ReadWrite}
	if err := m.Add(first); err != nil {
		return types.Failf("configuring first region: %v", err)
	}

	overlapping := Region{Base: RAMBase + 0x800, Size: 0x800, Perms: ReadWrite}
	if !first.Overlaps(overlapping) {
		return types.Failf("overlap not detected between %#x+%#x and %#x+%#x",
			first.Base, first.Size, overlapping.Base, overlapping.Size)
	}
	if err := m.Add(overlapping); err == nil {
		return types.Failf("overlapping region accepted")
	}
	if m.Len() != 1 {
		return types.Failf("rejected region was still configured")
	}
	return types.Pass()
}

func testNullPointerProtection() types.TestResult {
	m := NewMap()
	if err := m.Add(Region{Base: NullGuardSize, Size: 0x1000, Perms: ReadWrite}); err != nil {
		return types.Failf("configuring region above null guard: %v", err)
	}

	// Address zero must stay inaccessible to catch null dereferences.
	if perms := m.Check(0); perms != NoAccess {
		return types.Failf("address 0 is accessible: %+v", perms)
	}
	if perms := m.Check(NullGuardSize - 4); perms != NoAccess {
		return types.Failf("null guard page is accessible at %#x", NullGuardSize-4)
	}
	return types.Pass()
}
