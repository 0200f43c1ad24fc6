/*
 * EM2200 - Ring and domain access control.
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

package access

import (
	"fmt"
	"strings"
)

const (
	ringMask   uint32 = 0600000 // Ring in half word
	ringShift         = 16
	domainMask uint32 = 0177777 // Domain in half word

	enterBit uint8 = 4
	readBit  uint8 = 2
	writeBit uint8 = 1
)

// Key or lock: ring and domain.
type Info struct {
	Ring   uint8  // 0 most privileged, 3 least.
	Domain uint16 // Protection domain.
}

// Decode ring and domain from an 18 bit half word.
func NewInfo(half uint32) Info {
	return Info{
		Ring:   uint8((half & ringMask) >> ringShift),
		Domain: uint16(half & domainMask),
	}
}

// Encode into an 18 bit half word.
func (i Info) Half() uint32 {
	return (uint32(i.Ring&03) << ringShift) | uint32(i.Domain)
}

func (i Info) String() string {
	return fmt.Sprintf("%o:%o", i.Ring, i.Domain)
}

// Enter, read and write permissions.
type Permissions struct {
	Enter bool
	Read  bool
	Write bool
}

// Decode 3 bit permission field, E=4 R=2 W=1.
func NewPermissions(bits uint8) Permissions {
	return Permissions{
		Enter: (bits & enterBit) != 0,
		Read:  (bits & readBit) != 0,
		Write: (bits & writeBit) != 0,
	}
}

// Parse a string of E, R and W letters.
func ParsePermissions(text string) (Permissions, error) {
	perm := Permissions{}
	for _, by := range strings.ToUpper(text) {
		switch by {
		case 'E':
			perm.Enter = true
		case 'R':
			perm.Read = true
		case 'W':
			perm.Write = true
		case '-':
		default:
			return Permissions{}, fmt.Errorf("invalid permission: %c", by)
		}
	}
	return perm, nil
}

// Return 3 bit encoded form.
func (p Permissions) Bits() uint8 {
	bits := uint8(0)
	if p.Enter {
		bits |= enterBit
	}
	if p.Read {
		bits |= readBit
	}
	if p.Write {
		bits |= writeBit
	}
	return bits
}

func (p Permissions) String() string {
	var str strings.Builder
	for i, by := range []byte{'E', 'R', 'W'} {
		if (p.Bits() & (enterBit >> i)) != 0 {
			str.WriteByte(by)
		} else {
			str.WriteByte('-')
		}
	}
	return str.String()
}

// Special access permissions apply when the key ring is numerically
// greater than the lock ring, or both ring and domain are equal.
func UseSpecial(key, lock Info) bool {
	return key.Ring > lock.Ring || (key.Ring == lock.Ring && key.Domain == lock.Domain)
}

// Return GAP or SAP as selected by key and lock.
func EffectivePermissions(key, lock Info, gap, sap Permissions) Permissions {
	if UseSpecial(key, lock) {
		return sap
	}
	return gap
}

// Check that every required permission is present in the selected set.
// Nothing required always passes.
func CheckAccess(required Permissions, key, lock Info, gap, sap Permissions) bool {
	selected := EffectivePermissions(key, lock, gap, sap)
	return !((required.Enter && !selected.Enter) ||
		(required.Read && !selected.Read) ||
		(required.Write && !selected.Write))
}
