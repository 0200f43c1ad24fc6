/*
 * EM2200 - Resolution faults and denials
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

import (
	"errors"
	"fmt"
)

// Reason for a fatal fault.
type Reason int

const (
	FatalAddressing Reason = 1 + iota
	InvalidSourceLevelBDI
	GBitSetIndirect
	InvalidProcessorPrivilege
	InvalidBaseRegister
	BDTypeInvalid
)

var reasonNames = map[Reason]string{
	FatalAddressing:           "fatal addressing exception",
	InvalidSourceLevelBDI:     "invalid source level/BDI",
	GBitSetIndirect:           "G bit set on indirect or gate",
	InvalidProcessorPrivilege: "invalid processor privilege",
	InvalidBaseRegister:       "invalid base register",
	BDTypeInvalid:             "invalid bank descriptor type",
}

func (r Reason) String() string {
	if str, ok := reasonNames[r]; ok {
		return str
	}
	return fmt.Sprintf("reason %d", int(r))
}

// Fatal condition, delivered to the owning processor as an interrupt.
type Fault struct {
	Reason Reason
	Level  uint8
	BDI    uint16
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s at %o,%05o", f.Reason, f.Level, f.BDI)
}

func fault(reason Reason, level uint8, bdi uint16) *Fault {
	return &Fault{Reason: reason, Level: level, BDI: bdi}
}

// Reportable refusal. Resolution holds whatever was found before the
// refusal, nil when no descriptor was reached.
type Denial struct {
	Status     Status
	Resolution *Resolution
}

func (d *Denial) Error() string {
	return "access refused: " + d.Status.String()
}

// Reports whether err carries a fatal fault.
func IsFatal(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// Return the denial carried by err, or nil.
func AsDenial(err error) *Denial {
	var d *Denial
	if errors.As(err, &d) {
		return d
	}
	return nil
}
