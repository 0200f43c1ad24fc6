/*
 * EM2200 - Access control tests.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gapOnly = Permissions{Read: true}
	sapOnly = Permissions{Write: true}
)

// Selection over every ring pair and a few domains.
func TestSelection(t *testing.T) {
	domains := []uint16{0, 5, 0777}
	for keyRing := range uint8(4) {
		for lockRing := range uint8(4) {
			for _, keyDomain := range domains {
				for _, lockDomain := range domains {
					key := Info{Ring: keyRing, Domain: keyDomain}
					lock := Info{Ring: lockRing, Domain: lockDomain}
					sap := keyRing > lockRing || (keyRing == lockRing && keyDomain == lockDomain)
					assert.Equal(t, sap, UseSpecial(key, lock), "key %v lock %v", key, lock)
					want := gapOnly
					if sap {
						want = sapOnly
					}
					assert.Equal(t, want, EffectivePermissions(key, lock, gapOnly, sapOnly))
				}
			}
		}
	}
}

func TestSelectionExamples(t *testing.T) {
	// Lower key ring than lock ring selects GAP.
	key := Info{Ring: 1, Domain: 5}
	lock := Info{Ring: 2, Domain: 5}
	assert.False(t, UseSpecial(key, lock))
	assert.True(t, CheckAccess(Permissions{Read: true}, key, lock, gapOnly, sapOnly))
	assert.False(t, CheckAccess(Permissions{Write: true}, key, lock, gapOnly, sapOnly))

	// Higher key ring selects SAP.
	key = Info{Ring: 2, Domain: 5}
	lock = Info{Ring: 1, Domain: 5}
	assert.True(t, UseSpecial(key, lock))
	assert.True(t, CheckAccess(Permissions{Write: true}, key, lock, gapOnly, sapOnly))
	assert.False(t, CheckAccess(Permissions{Read: true}, key, lock, gapOnly, sapOnly))

	// Same ring, different domain selects GAP.
	key = Info{Ring: 2, Domain: 4}
	lock = Info{Ring: 2, Domain: 5}
	assert.False(t, UseSpecial(key, lock))
}

func TestCheckNothingRequired(t *testing.T) {
	none := Permissions{}
	assert.True(t, CheckAccess(none, Info{}, Info{Ring: 3}, none, none))
	assert.True(t, CheckAccess(none, Info{Ring: 3}, Info{}, none, none))
}

func TestCheckEachPermission(t *testing.T) {
	all := Permissions{Enter: true, Read: true, Write: true}
	key := Info{Ring: 0, Domain: 1}
	lock := Info{Ring: 1, Domain: 1}
	for bits := range uint8(8) {
		gap := NewPermissions(bits)
		for reqBits := range uint8(8) {
			req := NewPermissions(reqBits)
			want := (reqBits & ^bits) == 0
			assert.Equal(t, want, CheckAccess(req, key, lock, gap, all), "gap %s required %s", gap, req)
		}
	}
}

func TestInfoHalf(t *testing.T) {
	info := NewInfo(0_600005)
	assert.Equal(t, Info{Ring: 3, Domain: 5}, info)
	assert.Equal(t, uint32(0_600005), info.Half())
	info = NewInfo(0_277777)
	assert.Equal(t, Info{Ring: 1, Domain: 077777}, info)
	assert.Equal(t, "1:77777", info.String())
}

func TestPermissionBits(t *testing.T) {
	for bits := range uint8(8) {
		assert.Equal(t, bits, NewPermissions(bits).Bits())
	}
	assert.Equal(t, "E-W", NewPermissions(5).String())
	assert.Equal(t, "-R-", NewPermissions(2).String())
}

func TestParsePermissions(t *testing.T) {
	perm, err := ParsePermissions("rw")
	require.NoError(t, err)
	assert.Equal(t, Permissions{Read: true, Write: true}, perm)

	perm, err = ParsePermissions("E-W")
	require.NoError(t, err)
	assert.Equal(t, Permissions{Enter: true, Write: true}, perm)

	_, err = ParsePermissions("RX")
	assert.Error(t, err)
}
