/*
 * EM2200 - Addressing instructions
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

package processor

import (
	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/bank"
	"github.com/rcornwell/EM2200/emu/register"
	"github.com/rcornwell/EM2200/emu/resolver"
	"github.com/rcornwell/EM2200/util/debug"
	"github.com/rcornwell/EM2200/util/trace"
)

// Load bank user, a selects B2 through B15.
func (p *Processor) LoadBankUser(a int, va address.VirtualAddress) error {
	if a < 2 || a > 15 {
		return p.record("LBU", va, &resolver.Fault{Reason: resolver.InvalidBaseRegister})
	}
	return p.record("LBU", va, p.loadBank(a, va))
}

// Load bank exec, a selects B16 through B31.
func (p *Processor) LoadBankExec(a int, va address.VirtualAddress) error {
	if a < 0 || a > 15 {
		return p.record("LBE", va, &resolver.Fault{Reason: resolver.InvalidBaseRegister})
	}
	return p.record("LBE", va, p.loadBank(a+register.BDTBase, va))
}

func (p *Processor) loadBank(index int, va address.VirtualAddress) error {
	var br register.BaseRegister

	switch {
	case va.Level == 0 && va.BDI == 0:
		br = register.Void()

	case va.IsVoidRange():
		return &resolver.Fault{Reason: resolver.InvalidSourceLevelBDI, Level: va.Level, BDI: va.BDI}

	default:
		res, err := p.resolver.ResolveDirect(va, access.Permissions{}, true)
		var denied resolver.Status
		if err != nil {
			res, denied, err = loadable(va, err)
			if err != nil {
				return err
			}
		}
		bd := res.Descriptor
		switch {
		case bd.Type == bank.QueueRepository:
			return &resolver.Fault{Reason: resolver.BDTypeInvalid, Level: res.Level, BDI: res.BDI}
		case bd.Type == bank.BasicMode && p.designator.Privilege > 1 &&
			!bd.GAP.Enter && !bd.SAP.Enter:
			br = register.Void()
		case denied&^(resolver.LimitsViolation|resolver.InvalidRealAddress) != 0:
			return &resolver.Fault{Reason: resolver.FatalAddressing, Level: va.Level, BDI: va.BDI}
		case va.Offset != 0:
			br = register.Subset(res.Level, res.BDI, bd, va.Offset)
		default:
			br = register.FromDescriptor(res.Level, res.BDI, bd)
		}
	}

	if err := p.regs.LoadBaseRegister(index, br); err != nil {
		return &resolver.Fault{Reason: resolver.InvalidBaseRegister, Level: va.Level, BDI: va.BDI}
	}
	debug.DebugCPUf(p.ID, debugMsk, debugLoad, "B%d <- %s", index, br.String())

	if index >= 1 && index <= register.NumABTEntries {
		entry := register.ActiveBaseTableEntry{}
		if !br.Void {
			entry = register.ActiveBaseTableEntry{Level: va.Level, BDI: va.BDI, Offset: va.Offset}
		}
		_ = p.regs.LoadActiveBaseTableEntry(index, entry)
	}
	return nil
}

// A load makes no access check, the bank found is handed back with the
// status it was refused with. No bank at all is an addressing exception.
func loadable(va address.VirtualAddress, err error) (*resolver.Resolution, resolver.Status, error) {
	denial := resolver.AsDenial(err)
	if denial == nil {
		return nil, 0, err
	}
	if denial.Resolution == nil || denial.Resolution.Descriptor == nil {
		return nil, 0, &resolver.Fault{Reason: resolver.FatalAddressing, Level: va.Level, BDI: va.BDI}
	}
	return denial.Resolution, denial.Status, nil
}

// Transfer to the bank named by va, going through a gate if needed.
// Extended mode targets load B0, basic mode targets B12 or B13 as
// selected by DB31.
func (p *Processor) Call(va address.VirtualAddress) (*resolver.Resolution, error) {
	res, err := p.resolver.ResolveCallEntry(va, resolver.CallOptions{})
	if err != nil {
		return nil, p.record("CALL", va, err)
	}

	br := register.FromDescriptor(res.Level, res.BDI, res.Descriptor)
	if res.Descriptor.Type == bank.BasicMode {
		index := 12
		if p.designator.DB31 {
			index = 13
		}
		_ = p.regs.LoadBaseRegister(0, register.Void())
		_ = p.regs.LoadBaseRegister(index, br)
		_ = p.regs.LoadActiveBaseTableEntry(index,
			register.ActiveBaseTableEntry{Level: res.Level, BDI: res.BDI})
		p.designator.BasicMode = true
		debug.DebugCPUf(p.ID, debugMsk, debugLoad, "B%d <- %s", index, br.String())
	} else {
		_ = p.regs.LoadBaseRegister(0, br)
		p.designator.BasicMode = false
		debug.DebugCPUf(p.ID, debugMsk, debugLoad, "B0 <- %s", br.String())
	}
	p.par = address.VirtualAddress{Level: res.Level, BDI: res.BDI, Offset: va.Offset}
	trace.Record(trace.Entry{
		Processor: p.ID,
		Operation: "CALL",
		Address:   va.String(),
		Target:    res.VirtualAddress().String(),
		Status:    resolver.Status(0).String(),
		Real:      res.Address.String(),
	})
	return res, nil
}

// Translate and validate. The status words are retained and the program
// address advances past the next instruction when skip is set.
func (p *Processor) TranslateValidate(va address.VirtualAddress, options uint64) (*resolver.ValidationReport, error) {
	if p.designator.BasicMode && p.designator.Privilege > 0 {
		return nil, p.record("TVA", va, &resolver.Fault{Reason: resolver.InvalidProcessorPrivilege,
			Level: va.Level, BDI: va.BDI})
	}
	report, err := p.resolver.ValidateAddress(va, resolver.DecodeValidateOptions(options))
	if err != nil {
		return nil, p.record("TVA", va, err)
	}
	p.tvaWords[0], p.tvaWords[1] = report.Words()
	if report.SkipNext {
		p.par.Offset = (p.par.Offset + 1) & uint32(address.OffsetMask)
	}
	entry := trace.Entry{
		Processor: p.ID,
		Operation: "TVA",
		Address:   va.String(),
		Status:    report.Status.String(),
	}
	if report.AddressValid {
		entry.Real = report.RealAddress.String()
	}
	trace.Record(entry)
	return report, nil
}

// Data reference resolution as the console sees it.
func (p *Processor) Resolve(va address.VirtualAddress, required access.Permissions, queue bool) (*resolver.Resolution, error) {
	res, err := p.resolver.ResolveDirect(va, required, queue)
	if err != nil {
		return nil, p.record("RESOLVE", va, err)
	}
	entry := trace.Entry{
		Processor: p.ID,
		Operation: "RESOLVE",
		Address:   va.String(),
		Target:    res.VirtualAddress().String(),
		Status:    resolver.Status(0).String(),
	}
	if res.AddressValid {
		entry.Real = res.Address.String()
	}
	trace.Record(entry)
	return res, nil
}

// Log outcome of a load or failed operation, passing err back.
func (p *Processor) record(op string, va address.VirtualAddress, err error) error {
	entry := trace.Entry{
		Processor: p.ID,
		Operation: op,
		Address:   va.String(),
	}
	switch {
	case err == nil:
		entry.Status = resolver.Status(0).String()
	case resolver.IsFatal(err):
		entry.Fault = err.Error()
	default:
		if denial := resolver.AsDenial(err); denial != nil {
			entry.Status = denial.Status.String()
			if denial.Resolution != nil {
				entry.Target = denial.Resolution.VirtualAddress().String()
			}
		} else {
			entry.Fault = err.Error()
		}
	}
	if err != nil {
		debug.DebugCPUf(p.ID, debugMsk, debugCmd, "%s %s: %s", op, va, err)
	}
	trace.Record(entry)
	return err
}
