package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles37/tock/types"
)

func passTest(name string) types.TestDescriptor {
	return types.SyncTest(name, func() types.TestResult { return types.Pass() })
}

func TestRegistrationOrderIsStable(t *testing.T) {
	table := NewTable()
	table.Register("mpu", passTest("test_a"), passTest("test_b"))
	table.Register("timer", passTest("test_c"))
	table.Register("mpu2", passTest("test_d"))

	reg, err := NewRegistry(Config{Table: table})
	require.NoError(t, err)
	require.Equal(t, 4, reg.Len())

	var names []string
	for _, e := range reg.Entries() {
		names = append(names, e.Module+"/"+e.Descriptor.Name)
	}
	assert.Equal(t, []string{"mpu/test_a", "mpu/test_b", "timer/test_c", "mpu2/test_d"}, names)
	assert.Equal(t, []string{"mpu", "timer", "mpu2"}, reg.Modules())
}

func TestModuleFilter(t *testing.T) {
	table := NewTable()
	table.Register("mpu", passTest("test_a"))
	table.Register("timer", passTest("test_b"), passTest("test_c"))
	table.Register("gpio", passTest("test_d"))

	reg, err := NewRegistry(Config{Table: table, Modules: []string{"timer", "gpio"}})
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	assert.Equal(t, []string{"timer", "gpio"}, reg.Modules())
	for _, e := range reg.Entries() {
		assert.NotEqual(t, "mpu", e.Module)
	}
}

func TestModuleFilterUnknownModule(t *testing.T) {
	table := NewTable()
	table.Register("mpu", passTest("test_a"))

	_, err := NewRegistry(Config{Table: table, Modules: []string{"mpu", "uart"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no tests registered for module "uart"`)
}

func TestEmptyTableSnapshot(t *testing.T) {
	reg, err := NewRegistry(Config{Table: NewTable()})
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Entries())
	assert.Empty(t, reg.Modules())
}

func TestSnapshotSealsTable(t *testing.T) {
	table := NewTable()
	table.Register("mpu", passTest("test_a"))

	first, err := NewRegistry(Config{Table: table})
	require.NoError(t, err)

	assert.Panics(t, func() {
		table.Register("timer", passTest("test_late"))
	})

	// Re-snapshotting a sealed table is allowed and sees the same contents.
	second, err := NewRegistry(Config{Table: table})
	require.NoError(t, err)
	assert.Equal(t, first.Entries(), second.Entries())
}

func TestRegisterMisusePanics(t *testing.T) {
	tests := []struct {
		name     string
		register func(*Table)
	}{
		{
			name: "empty module name",
			register: func(table *Table) {
				table.Register("", passTest("test_a"))
			},
		},
		{
			name: "empty descriptor name",
			register: func(table *Table) {
				table.Register("mpu", passTest(""))
			},
		},
		{
			name: "sync descriptor with nil function",
			register: func(table *Table) {
				table.Register("mpu", types.TestDescriptor{Name: "test_a", Kind: types.TestKindSync})
			},
		},
		{
			name: "duplicate name within a module",
			register: func(table *Table) {
				table.Register("mpu", passTest("test_a"))
				table.Register("mpu", passTest("test_a"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable()
			assert.Panics(t, func() { tt.register(table) })
		})
	}
}

func TestSameNameAcrossModules(t *testing.T) {
	table := NewTable()
	table.Register("mpu", passTest("test_init"))
	require.NotPanics(t, func() {
		table.Register("timer", passTest("test_init"))
	})

	reg, err := NewRegistry(Config{Table: table})
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
}

func TestEntriesReturnsCopy(t *testing.T) {
	table := NewTable()
	table.Register("mpu", passTest("test_a"), passTest("test_b"))

	reg, err := NewRegistry(Config{Table: table})
	require.NoError(t, err)

	entries := reg.Entries()
	entries[0].Module = "mutated"
	assert.Equal(t, "mpu", reg.Entries()[0].Module)

	modules := reg.Modules()
	modules[0] = "mutated"
	assert.Equal(t, "mpu", reg.Modules()[0])
}
