/*
 * EM2200 - Bank descriptors.
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

package bank

import (
	"fmt"
	"strings"

	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
)

// Number of words in a bank descriptor.
const Size = 8

// Bank type from word 0 bits 8-11.
type Type uint8

const (
	ExtendedMode    Type = 0
	BasicMode       Type = 1
	Gate            Type = 2
	Indirect        Type = 3
	Queue           Type = 4
	QueueRepository Type = 6
	Invalid         Type = 0xff
)

var typeNames = map[Type]string{
	ExtendedMode:    "EXTENDED",
	BasicMode:       "BASIC",
	Gate:            "GATE",
	Indirect:        "INDIRECT",
	Queue:           "QUEUE",
	QueueRepository: "QBR",
}

// Convert type code, codes 5 and 7-15 are reserved.
func TypeFromCode(code uint8) Type {
	ty := Type(code)
	if _, ok := typeNames[ty]; ok {
		return ty
	}
	return Invalid
}

// Find type by name.
func ParseType(name string) (Type, error) {
	name = strings.ToUpper(name)
	for ty, str := range typeNames {
		if str == name || (len(name) >= 2 && strings.HasPrefix(str, name)) {
			return ty, nil
		}
	}
	return Invalid, fmt.Errorf("unknown bank type: %s", name)
}

func (t Type) String() string {
	if str, ok := typeNames[t]; ok {
		return str
	}
	return "INVALID"
}

// Word 0 fields.
const (
	gapShift         = 33
	sapShift         = 30
	permMask  uint64 = 07
	typeShift        = 24
	typeMask  uint64 = 017
	gBit      uint64 = 020_000000 // General fault
	sBit      uint64 = 04_000000  // Large bank
	uBit      uint64 = 02_000000  // Upper limit suppression
	lockMask  uint64 = 0777777

	// Word 1 fields.
	lowerShift        = 27
	lowerMask  uint64 = 0777
	upperMask  uint64 = 0777_777777

	// Word 2 and 3 base address.
	segmentMask uint64 = address.SegmentMask
	upiShift           = 32
	upiMask     uint64 = 017
	offsetMask  uint64 = 0xffffffff

	// Word 4 displacement and target L,BDI.
	dispShift         = 18
	dispMask   uint64 = 077777
	targetMask uint64 = 0777777
)

// Decoded copy of one bank descriptor table entry.
type Descriptor struct {
	Type             Type               // Bank type.
	Lock             access.Info        // Access lock.
	GAP              access.Permissions // General access permissions.
	SAP              access.Permissions // Special access permissions.
	GeneralFault     bool               // G bit.
	LargeBank        bool               // S bit, 32K word granules.
	UpperSuppression bool               // U bit.
	LowerLimit       uint32             // Raw lower limit, 9 bits.
	UpperLimit       uint32             // Raw upper limit, 27 bits.
	Base             address.AbsoluteAddress
	TargetLBDI       uint32 // Indirect and gate target L,BDI.
	Displacement     uint16 // Large bank displacement.
}

// Decode eight words.
func Decode(words [Size]uint64) *Descriptor {
	w0 := words[0]
	w1 := words[1]
	bd := &Descriptor{
		Type:             TypeFromCode(uint8((w0 >> typeShift) & typeMask)),
		Lock:             access.NewInfo(uint32(w0 & lockMask)),
		GAP:              access.NewPermissions(uint8((w0 >> gapShift) & permMask)),
		SAP:              access.NewPermissions(uint8((w0 >> sapShift) & permMask)),
		GeneralFault:     (w0 & gBit) != 0,
		LargeBank:        (w0 & sBit) != 0,
		UpperSuppression: (w0 & uBit) != 0,
		Displacement:     uint16((words[4] >> dispShift) & dispMask),
		Base: address.AbsoluteAddress{
			UPI:     uint8((words[3] >> upiShift) & upiMask),
			Segment: uint32(words[2] & segmentMask),
			Offset:  uint32(words[3] & offsetMask),
		},
	}

	bd.LowerLimit = uint32((w1 >> lowerShift) & lowerMask)
	bd.UpperLimit = uint32(w1 & upperMask)
	if bd.Type == Indirect || bd.Type == Gate {
		bd.TargetLBDI = uint32(words[4] & targetMask)
	}
	return bd
}

// Encode back into eight words.
func (bd *Descriptor) Encode() [Size]uint64 {
	var words [Size]uint64
	w0 := uint64(bd.GAP.Bits())<<gapShift | uint64(bd.SAP.Bits())<<sapShift
	code := uint64(bd.Type)
	if bd.Type == Invalid {
		code = 017
	}
	w0 |= (code & typeMask) << typeShift
	if bd.GeneralFault {
		w0 |= gBit
	}
	if bd.LargeBank {
		w0 |= sBit
	}
	if bd.UpperSuppression {
		w0 |= uBit
	}
	w0 |= uint64(bd.Lock.Half()) & lockMask
	words[0] = w0

	words[1] = (uint64(bd.LowerLimit)&lowerMask)<<lowerShift | uint64(bd.UpperLimit)&upperMask
	words[2] = uint64(bd.Base.Segment) & segmentMask
	words[3] = (uint64(bd.Base.UPI)&upiMask)<<upiShift | uint64(bd.Base.Offset)&offsetMask
	words[4] = (uint64(bd.Displacement) & dispMask) << dispShift
	if bd.Type == Indirect || bd.Type == Gate {
		words[4] |= uint64(bd.TargetLBDI) & targetMask
	}
	return words
}

// Lower limit in words.
func (bd *Descriptor) LowerLimitNormalized() uint32 {
	if bd.LargeBank {
		return bd.LowerLimit << 15
	}
	return bd.LowerLimit << 9
}

// Upper limit in words.
func (bd *Descriptor) UpperLimitNormalized() uint32 {
	if bd.LargeBank {
		return bd.UpperLimit << 6
	}
	return bd.UpperLimit
}

// Offset lies within the inclusive normalized limits.
func (bd *Descriptor) InLimits(offset uint32) bool {
	return offset >= bd.LowerLimitNormalized() && offset <= bd.UpperLimitNormalized()
}

// Target of an indirect or gate bank.
func (bd *Descriptor) Target() (uint8, uint16) {
	return uint8((bd.TargetLBDI >> 15) & 07), uint16(bd.TargetLBDI & 077777)
}

// Permissions selected by the key against this bank's lock.
func (bd *Descriptor) Effective(key access.Info) access.Permissions {
	return access.EffectivePermissions(key, bd.Lock, bd.GAP, bd.SAP)
}

func (bd *Descriptor) String() string {
	return fmt.Sprintf("{type:%s lock:%s gap:%s sap:%s llim:%012o ulim:%012o addr:%s}",
		bd.Type, bd.Lock, bd.GAP, bd.SAP,
		bd.LowerLimitNormalized(), bd.UpperLimitNormalized(), bd.Base)
}
