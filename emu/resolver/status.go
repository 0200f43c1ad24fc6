/*
 * EM2200 - Resolution status bits
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

package resolver

import "strings"

// Status bits, laid out as the first validate status word.
type Status uint64

const (
	AccessDenied       Status = 0400000000000 // ad
	InvalidRealAddress Status = 0200000000000 // ia
	GateViolation      Status = 0100000000000 // gv
	LimitsViolation    Status = 0040000000000 // lim
	GeneralFault       Status = 0020000000000 // g
	QBRFound           Status = 0004000000000 // qbrf

	statusMask = AccessDenied | InvalidRealAddress | GateViolation |
		LimitsViolation | GeneralFault | QBRFound
)

var statusNames = []struct {
	bit  Status
	name string
}{
	{AccessDenied, "AD"},
	{InvalidRealAddress, "IA"},
	{GateViolation, "GV"},
	{LimitsViolation, "LIM"},
	{GeneralFault, "G"},
	{QBRFound, "QBRF"},
}

// Reports whether every bit in bits is set.
func (s Status) Has(bits Status) bool {
	return (s & bits) == bits
}

func (s Status) String() string {
	if s == 0 {
		return "OK"
	}
	names := []string{}
	for _, n := range statusNames {
		if (s & n.bit) != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}
