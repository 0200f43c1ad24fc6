/*
 * EM2200 - Base registers and active base table.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package register

import (
	"fmt"

	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/bank"
)

const (
	NumBaseRegisters = 32 // B0 through B31.
	NumABTEntries    = 15 // B1 through B15.
	BDTBase          = 16 // B16+level holds the BDT for level.
	NumLevels        = 8

	abtOffsetMask uint64 = 0777777
)

// Candidate basic mode registers, indexed by DB31.
var basicModeCandidates = [2][4]int{
	{12, 14, 13, 15},
	{13, 15, 12, 14},
}

// Cached description of a loaded bank.
type BaseRegister struct {
	Void         bool                    // No bank loaded.
	Level        uint8                   // Level bank was loaded from.
	BDI          uint16                  // BDI bank was loaded from.
	Base         address.AbsoluteAddress // Address of offset 0.
	Lock         access.Info             // Access lock.
	GAP          access.Permissions      // General access.
	SAP          access.Permissions      // Special access.
	LargeBank    bool                    // Large bank.
	ExtendedMode bool                    // Bank is not a basic mode bank.
	Lower        uint32                  // Lower limit normalized.
	Upper        uint32                  // Upper limit normalized.
}

// Return a void register.
func Void() BaseRegister {
	return BaseRegister{Void: true}
}

// Build a register from a descriptor. Enter permissions never carry into a
// base register.
func FromDescriptor(level uint8, bdi uint16, bd *bank.Descriptor) BaseRegister {
	br := BaseRegister{
		Level:        level,
		BDI:          bdi,
		Base:         bd.Base,
		Lock:         bd.Lock,
		GAP:          bd.GAP,
		SAP:          bd.SAP,
		LargeBank:    bd.LargeBank,
		ExtendedMode: bd.Type != bank.BasicMode,
		Lower:        bd.LowerLimitNormalized(),
		Upper:        bd.UpperLimitNormalized(),
	}
	br.GAP.Enter = false
	br.SAP.Enter = false
	br.Void = br.Lower > br.Upper
	return br
}

// Build a register describing the part of a bank starting at offset.
func Subset(level uint8, bdi uint16, bd *bank.Descriptor, offset uint32) BaseRegister {
	br := FromDescriptor(level, bdi, bd)
	if offset == 0 {
		return br
	}
	lower := bd.LowerLimitNormalized()
	upper := bd.UpperLimitNormalized()
	br.Base = bd.Base.AddOffset(offset)
	if lower > offset {
		br.Lower = lower - offset
	} else {
		br.Lower = 0
	}
	if upper >= offset {
		br.Upper = upper - offset
		br.Void = br.Lower > br.Upper
	} else {
		br.Upper = 0
		br.Void = true
	}
	return br
}

// Build a register directly from limits, used for BDT bases.
func FromLimits(base address.AbsoluteAddress, lower, upper uint32, lock access.Info,
	gap, sap access.Permissions) BaseRegister {
	return BaseRegister{
		Void:         lower > upper,
		Base:         base,
		Lock:         lock,
		GAP:          gap,
		SAP:          sap,
		ExtendedMode: true,
		Lower:        lower,
		Upper:        upper,
	}
}

// Offset lies within limits of a non void register.
func (br *BaseRegister) InLimits(offset uint32) bool {
	return !br.Void && offset >= br.Lower && offset <= br.Upper
}

// Check count words starting at offset fit and the key has the required access.
func (br *BaseRegister) CheckAccessLimits(offset, count uint32, required access.Permissions, key access.Info) bool {
	if br.Void || count == 0 {
		return false
	}
	if offset < br.Lower || offset+count-1 > br.Upper || offset+count-1 < offset {
		return false
	}
	return access.CheckAccess(required, key, br.Lock, br.GAP, br.SAP)
}

// Absolute address of offset within this bank.
func (br *BaseRegister) Address(offset uint32) address.AbsoluteAddress {
	return br.Base.AddOffset(offset)
}

func (br *BaseRegister) String() string {
	if br.Void {
		return "void"
	}
	mode := "basic"
	if br.ExtendedMode {
		mode = "extended"
	}
	return fmt.Sprintf("%o,%05o %s lock:%s gap:%s sap:%s lim:%09o-%09o addr:%s",
		br.Level, br.BDI, mode, br.Lock, br.GAP, br.SAP, br.Lower, br.Upper, br.Base)
}

// Remembered L,BDI and offset for a loaded basic mode register.
type ActiveBaseTableEntry struct {
	Level  uint8
	BDI    uint16
	Offset uint32
}

// Decode from a 36 bit word.
func NewActiveBaseTableEntry(word uint64) ActiveBaseTableEntry {
	lbdi := uint32(word >> 18)
	return ActiveBaseTableEntry{
		Level:  uint8((lbdi >> 15) & 07),
		BDI:    uint16(lbdi & 077777),
		Offset: uint32(word & abtOffsetMask),
	}
}

// Encode into a word.
func (e ActiveBaseTableEntry) Word() uint64 {
	return (uint64(e.Level&07)<<15|uint64(e.BDI&077777))<<18 | uint64(e.Offset)&abtOffsetMask
}

// Entry holds nothing.
func (e ActiveBaseTableEntry) IsEmpty() bool {
	return e == ActiveBaseTableEntry{}
}

// Per processor base registers and active base table.
type Set struct {
	base [NumBaseRegisters]BaseRegister
	abt  [NumABTEntries]ActiveBaseTableEntry
}

// Create register set with every register void.
func NewSet() *Set {
	set := &Set{}
	set.Clear()
	return set
}

// Reset to initial state.
func (set *Set) Clear() {
	for i := range set.base {
		set.base[i] = Void()
	}
	for i := range set.abt {
		set.abt[i] = ActiveBaseTableEntry{}
	}
}

// Return copy of base register.
func (set *Set) BaseRegister(index int) (BaseRegister, error) {
	if index < 0 || index >= NumBaseRegisters {
		return BaseRegister{}, fmt.Errorf("invalid base register: %d", index)
	}
	return set.base[index], nil
}

// Load base register. Loading a BDT base register invalidates any active
// base table entry on that level.
func (set *Set) LoadBaseRegister(index int, br BaseRegister) error {
	if index < 0 || index >= NumBaseRegisters {
		return fmt.Errorf("invalid base register: %d", index)
	}
	set.base[index] = br
	if index >= BDTBase && index < BDTBase+NumLevels {
		level := uint8(index - BDTBase)
		for i := range set.abt {
			if !set.abt[i].IsEmpty() && set.abt[i].Level == level {
				set.abt[i] = ActiveBaseTableEntry{}
			}
		}
	}
	return nil
}

// Return active base table entry for B1-B15.
func (set *Set) ActiveBaseTableEntry(index int) (ActiveBaseTableEntry, error) {
	if index < 1 || index > NumABTEntries {
		return ActiveBaseTableEntry{}, fmt.Errorf("invalid active base table index: %d", index)
	}
	return set.abt[index-1], nil
}

// Set active base table entry for B1-B15.
func (set *Set) LoadActiveBaseTableEntry(index int, entry ActiveBaseTableEntry) error {
	if index < 1 || index > NumABTEntries {
		return fmt.Errorf("invalid active base table index: %d", index)
	}
	set.abt[index-1] = entry
	return nil
}

// Clear active base table entry for B1-B15.
func (set *Set) ClearActiveBaseTableEntry(index int) error {
	return set.LoadActiveBaseTableEntry(index, ActiveBaseTableEntry{})
}

// Find which of B12-B15 holds relative address. Returns zero when none
// does. flip is set when the address was found in the secondary pair and
// DB31 should be toggled.
func (set *Set) BasicModeBankRegisterIndex(relativeAddress uint32, db31 bool) (index int, flip bool) {
	table := basicModeCandidates[0]
	if db31 {
		table = basicModeCandidates[1]
	}
	for tx, reg := range table {
		if set.base[reg].InLimits(relativeAddress) {
			return reg, tx >= 2
		}
	}
	return 0, false
}
