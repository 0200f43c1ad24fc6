/*
 * EM2200 - Bank resolver tests
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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rcornwell/EM2200/emu/access"
	"github.com/rcornwell/EM2200/emu/address"
	"github.com/rcornwell/EM2200/emu/bank"
	"github.com/rcornwell/EM2200/emu/register"
	"go.uber.org/mock/gomock"
)

var (
	permNone = access.Permissions{}
	permE    = access.Permissions{Enter: true}
	permR    = access.Permissions{Read: true}
	permRW   = access.Permissions{Read: true, Write: true}
	permERW  = access.Permissions{Enter: true, Read: true, Write: true}
)

// Each level's BDT lives in its own part of segment 0.
func bdtBase(level uint8) address.AbsoluteAddress {
	return address.AbsoluteAddress{UPI: 0, Segment: 0, Offset: uint32(level) * 0100000}
}

func lbdi(level uint8, bdi uint16) uint32 {
	return uint32(level)<<15 | uint32(bdi)
}

func expectFault(err error, reason Reason) {
	GinkgoHelper()
	Expect(IsFatal(err)).To(BeTrue())
	var f *Fault
	Expect(errors.As(err, &f)).To(BeTrue())
	Expect(f.Reason).To(Equal(reason))
}

func expectDenial(err error, status Status) *Denial {
	GinkgoHelper()
	Expect(err).To(HaveOccurred())
	Expect(IsFatal(err)).To(BeFalse())
	d := AsDenial(err)
	Expect(d).NotTo(BeNil())
	Expect(d.Status).To(Equal(status))
	return d
}

var _ = Describe("Resolver", func() {
	var (
		mockCtrl  *gomock.Controller
		state     *MockState
		storage   *MockStorage
		resolver  *Resolver
		regs      [register.NumBaseRegisters]register.BaseRegister
		words     map[address.AbsoluteAddress]uint64
		reads     []address.AbsoluteAddress
		key       access.Info
		privilege uint8
	)

	putBD := func(level uint8, bdi uint16, bd *bank.Descriptor) {
		for i, word := range bd.Encode() {
			words[bdtBase(level).AddOffset(uint32(bdi)*bank.Size+uint32(i))] = word
		}
	}

	readWords := func() {
		storage.EXPECT().GetWord(gomock.Any()).
			DoAndReturn(func(addr address.AbsoluteAddress) (uint64, bool) {
				reads = append(reads, addr)
				return words[addr], false
			}).
			AnyTimes()
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		state = NewMockState(mockCtrl)
		storage = NewMockStorage(mockCtrl)
		words = map[address.AbsoluteAddress]uint64{}
		reads = nil
		key = access.Info{Ring: 2, Domain: 5}
		privilege = 0

		for i := range regs {
			regs[i] = register.Void()
		}
		for level := range uint8(register.NumLevels) {
			regs[register.BDTBase+int(level)] = register.FromLimits(bdtBase(level), 0, 077777,
				access.Info{}, permR, permR)
		}

		state.EXPECT().AccessKey().
			DoAndReturn(func() access.Info { return key }).
			AnyTimes()
		state.EXPECT().ProcessorPrivilege().
			DoAndReturn(func() uint8 { return privilege }).
			AnyTimes()
		state.EXPECT().BaseRegister(gomock.Any()).
			DoAndReturn(func(index int) *register.BaseRegister {
				if index < 0 || index >= len(regs) {
					return nil
				}
				return &regs[index]
			}).
			AnyTimes()

		resolver = New(state, storage)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("void bank range", func() {
		It("should resolve level 0 BDI below 32 without reading a descriptor", func() {
			res, err := resolver.ResolveDirect(address.VirtualAddress{Level: 0, BDI: 10, Offset: 5}, permR, false)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Void).To(BeTrue())
			Expect(res.Level).To(Equal(uint8(0)))
			Expect(res.BDI).To(Equal(uint16(10)))
			Expect(res.Descriptor).To(BeNil())
		})

		It("should treat 0,4 as void", func() {
			res, err := resolver.ResolveDirect(address.VirtualAddress{Level: 0, BDI: 4, Offset: 100}, permR, false)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Void).To(BeTrue())
		})

		It("should fail a void lookup only when redirected", func() {
			bd, err := resolver.FindBankDescriptor(0, 31, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(bd).To(BeNil())

			_, err = resolver.FindBankDescriptor(0, 31, true)
			expectFault(err, FatalAddressing)
		})
	})

	Context("finding bank descriptors", func() {
		BeforeEach(func() {
			readWords()
		})

		It("should read eight words at eight times the BDI", func() {
			putBD(4, 4, &bank.Descriptor{Type: bank.ExtendedMode, UpperLimit: 0777})

			bd, err := resolver.FindBankDescriptor(4, 4, false)

			Expect(err).NotTo(HaveOccurred())
			Expect(bd.Type).To(Equal(bank.ExtendedMode))
			Expect(reads).To(HaveLen(8))
			Expect(reads[0]).To(Equal(bdtBase(4).AddOffset(32)))
			Expect(reads[7]).To(Equal(bdtBase(4).AddOffset(39)))
		})

		It("should not find a descriptor outside the BDT", func() {
			bd, err := resolver.FindBankDescriptor(4, 010000, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(bd).To(BeNil())
			Expect(reads).To(BeEmpty())

			_, err = resolver.FindBankDescriptor(4, 010000, true)
			expectFault(err, FatalAddressing)
		})

		It("should not find a descriptor without read access to the BDT", func() {
			regs[register.BDTBase+3] = register.FromLimits(bdtBase(3), 0, 077777,
				access.Info{Ring: 3, Domain: 1}, permNone, permR)

			bd, err := resolver.FindBankDescriptor(3, 040, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(bd).To(BeNil())

			_, err = resolver.FindBankDescriptor(3, 040, true)
			expectFault(err, FatalAddressing)
		})

		It("should not find a descriptor on a void BDT register", func() {
			regs[register.BDTBase+5] = register.Void()

			bd, err := resolver.FindBankDescriptor(5, 040, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(bd).To(BeNil())
		})
	})

	Context("storage errors", func() {
		It("should not find a descriptor that can't be read", func() {
			storage.EXPECT().GetWord(gomock.Any()).Return(uint64(0), true).Times(2)

			bd, err := resolver.FindBankDescriptor(4, 040, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(bd).To(BeNil())

			_, err = resolver.FindBankDescriptor(4, 040, true)
			expectFault(err, FatalAddressing)
		})
	})

	Context("direct references", func() {
		var scenario *bank.Descriptor

		BeforeEach(func() {
			readWords()
			scenario = &bank.Descriptor{
				Type:       bank.BasicMode,
				Lock:       key,
				GAP:        permRW,
				SAP:        permRW,
				LowerLimit: 0,
				UpperLimit: 999,
				Base:       address.AbsoluteAddress{UPI: 1, Segment: 2, Offset: 010000},
			}
			putBD(4, 4, scenario)
		})

		It("should resolve an offset inside the bank", func() {
			res, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100}, permR, false)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Void).To(BeFalse())
			Expect(res.AddressValid).To(BeTrue())
			Expect(res.Address).To(Equal(scenario.Base.AddOffset(100)))
			Expect(res.Descriptor.Type).To(Equal(bank.BasicMode))
			Expect(reads[0]).To(Equal(bdtBase(4).AddOffset(32)))
		})

		It("should report a limits violation without access denied", func() {
			_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 4, Offset: 1500}, permR, false)

			d := expectDenial(err, LimitsViolation|InvalidRealAddress)
			Expect(d.Status.Has(AccessDenied)).To(BeFalse())
			Expect(d.Resolution).NotTo(BeNil())
			Expect(d.Resolution.AddressValid).To(BeFalse())
		})

		It("should include both limits", func() {
			scenario.LowerLimit = 1
			scenario.UpperLimit = 01010
			putBD(4, 4, scenario)

			for _, offset := range []uint32{01000, 01005, 01010} {
				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 4, Offset: offset}, permR, false)
				Expect(err).NotTo(HaveOccurred())
			}
			for _, offset := range []uint32{0777, 01011} {
				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 4, Offset: offset}, permR, false)
				expectDenial(err, LimitsViolation|InvalidRealAddress)
			}
		})

		It("should deny access the selected permissions lack", func() {
			scenario.SAP = permR
			putBD(4, 4, scenario)

			_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100}, permRW, false)

			d := expectDenial(err, AccessDenied)
			Expect(d.Resolution.AddressValid).To(BeTrue())
		})

		It("should let a limits violation replace access denied", func() {
			scenario.SAP = permR
			putBD(4, 4, scenario)

			_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 4, Offset: 1500}, permRW, false)

			expectDenial(err, LimitsViolation|InvalidRealAddress)
		})

		It("should select GAP for a more privileged key", func() {
			scenario.Lock = access.Info{Ring: 3, Domain: 5}
			scenario.GAP = permNone
			putBD(4, 4, scenario)

			_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100}, permR, false)

			expectDenial(err, AccessDenied)
		})

		It("should report a general fault without faulting", func() {
			scenario.GeneralFault = true
			putBD(4, 4, scenario)

			_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100}, permR, false)

			d := expectDenial(err, GeneralFault)
			Expect(d.Resolution.Descriptor.GeneralFault).To(BeTrue())
		})

		It("should report a missing descriptor as invalid real address", func() {
			_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 010000, Offset: 0}, permR, false)

			d := expectDenial(err, InvalidRealAddress)
			Expect(d.Resolution).To(BeNil())
		})

		It("should fault on an invalid bank type", func() {
			putBD(4, 5, &bank.Descriptor{Type: bank.Invalid})

			_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 5, Offset: 0}, permR, false)

			expectFault(err, BDTypeInvalid)
		})

		It("should reference a gate as data", func() {
			putBD(4, 020, &bank.Descriptor{
				Type: bank.Gate, Lock: key, GAP: permR, SAP: permR,
				UpperLimit: 0777, TargetLBDI: lbdi(2, 050),
				Base: address.AbsoluteAddress{UPI: 1, Segment: 5},
			})

			res, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 020, Offset: 010}, permR, false)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Descriptor.Type).To(Equal(bank.Gate))
			Expect(res.Level).To(Equal(uint8(4)))
			Expect(res.Gated).To(BeFalse())
			Expect(res.Address).To(Equal(address.AbsoluteAddress{UPI: 1, Segment: 5, Offset: 010}))
		})

		Context("indirect banks", func() {
			BeforeEach(func() {
				putBD(4, 010, &bank.Descriptor{Type: bank.Indirect, TargetLBDI: lbdi(2, 050)})
				putBD(2, 050, &bank.Descriptor{
					Type: bank.ExtendedMode, GAP: permNone, SAP: permRW,
					UpperLimit: 07777,
					Base:       address.AbsoluteAddress{UPI: 2, Segment: 3},
				})
			})

			It("should redirect once", func() {
				res, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 010, Offset: 5}, permR, false)

				Expect(err).NotTo(HaveOccurred())
				Expect(res.Level).To(Equal(uint8(2)))
				Expect(res.BDI).To(Equal(uint16(050)))
				Expect(res.Source.Type).To(Equal(bank.Indirect))
				Expect(res.Address).To(Equal(address.AbsoluteAddress{UPI: 2, Segment: 3, Offset: 5}))
				Expect(reads).To(HaveLen(16))
			})

			It("should fault on a second indirect", func() {
				putBD(2, 050, &bank.Descriptor{Type: bank.Indirect, TargetLBDI: lbdi(2, 051)})

				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 010, Offset: 5}, permR, false)

				expectFault(err, FatalAddressing)
			})

			It("should fault on an indirect to a gate", func() {
				putBD(2, 050, &bank.Descriptor{Type: bank.Gate, TargetLBDI: lbdi(2, 051), UpperLimit: 0777})

				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 010, Offset: 5}, permR, false)

				expectFault(err, FatalAddressing)
			})

			It("should fault when the indirect has the G bit", func() {
				putBD(4, 010, &bank.Descriptor{Type: bank.Indirect, GeneralFault: true, TargetLBDI: lbdi(2, 050)})

				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 010, Offset: 5}, permR, false)

				expectFault(err, GBitSetIndirect)
			})

			It("should fault on an indirect into the void range", func() {
				putBD(4, 010, &bank.Descriptor{Type: bank.Indirect, TargetLBDI: lbdi(0, 5)})

				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 010, Offset: 5}, permR, false)

				expectFault(err, FatalAddressing)
			})

			It("should fault on an indirect outside the target BDT", func() {
				putBD(4, 010, &bank.Descriptor{Type: bank.Indirect, TargetLBDI: lbdi(2, 010000)})

				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 010, Offset: 5}, permR, false)

				expectFault(err, FatalAddressing)
			})
		})

		Context("queue banks", func() {
			BeforeEach(func() {
				putBD(4, 030, &bank.Descriptor{
					Type: bank.Queue, Lock: key, GAP: permNone, SAP: permR, UpperLimit: 0777,
				})
				putBD(4, 031, &bank.Descriptor{
					Type: bank.QueueRepository, Lock: key, GAP: permR, SAP: permR, UpperLimit: 0777,
				})
			})

			It("should refuse a queue bank without the queue flag", func() {
				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 030}, permR, false)

				expectDenial(err, AccessDenied|InvalidRealAddress)
			})

			It("should check a queue bank with the queue flag", func() {
				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 030}, permR, true)
				Expect(err).NotTo(HaveOccurred())

				_, err = resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 030}, permRW, true)
				expectDenial(err, AccessDenied)
			})

			It("should always refuse a queue repository", func() {
				_, err := resolver.ResolveDirect(address.VirtualAddress{Level: 4, BDI: 031}, permR, true)

				expectDenial(err, AccessDenied|InvalidRealAddress|QBRFound)
			})
		})
	})

	Context("call entry", func() {
		var target *bank.Descriptor

		BeforeEach(func() {
			readWords()
			putBD(4, 020, &bank.Descriptor{
				Type: bank.Gate, Lock: key, GAP: permNone, SAP: permE,
				LowerLimit: 0, UpperLimit: 0777, TargetLBDI: lbdi(2, 050),
			})
			target = &bank.Descriptor{
				Type: bank.ExtendedMode, GAP: permNone, SAP: permERW,
				UpperLimit: 07777,
				Base:       address.AbsoluteAddress{UPI: 2, Segment: 3, Offset: 01000},
			}
			putBD(2, 050, target)
		})

		It("should enter through a gate", func() {
			res, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 020, Offset: 0100}, CallOptions{})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Gated).To(BeTrue())
			Expect(res.Level).To(Equal(uint8(2)))
			Expect(res.BDI).To(Equal(uint16(050)))
			Expect(res.Source.Type).To(Equal(bank.Gate))
			Expect(res.Address).To(Equal(address.AbsoluteAddress{UPI: 2, Segment: 3, Offset: 01100}))
		})

		It("should stop at a gate the key can't enter", func() {
			key = access.Info{Ring: 1, Domain: 5}

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 020, Offset: 0100}, CallOptions{})

			d := expectDenial(err, GateViolation|InvalidRealAddress)
			Expect(d.Resolution).To(BeNil())
			Expect(reads).To(HaveLen(8))
		})

		It("should refuse an offset outside the gate", func() {
			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 020, Offset: 01000}, CallOptions{})

			expectDenial(err, InvalidRealAddress)
			Expect(reads).To(HaveLen(8))
		})

		It("should fault on a gate with the G bit", func() {
			putBD(4, 020, &bank.Descriptor{
				Type: bank.Gate, Lock: key, SAP: permE, UpperLimit: 0777,
				GeneralFault: true, TargetLBDI: lbdi(2, 050),
			})

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 020, Offset: 0100}, CallOptions{})

			expectFault(err, GBitSetIndirect)
		})

		It("should fault on a gate leading to a gate", func() {
			putBD(2, 050, &bank.Descriptor{Type: bank.Gate, SAP: permE, UpperLimit: 0777, TargetLBDI: lbdi(2, 051)})

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 020, Offset: 0100}, CallOptions{})

			expectFault(err, FatalAddressing)
		})

		It("should check enter on a gated target", func() {
			target.SAP = permRW
			putBD(2, 050, target)

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 020, Offset: 0100}, CallOptions{})

			expectDenial(err, AccessDenied)
		})

		It("should imply enter for an extended mode bank reached without a gate", func() {
			target.SAP = permNone
			putBD(2, 050, target)

			res, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 2, BDI: 050, Offset: 0100}, CallOptions{})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Gated).To(BeFalse())
		})

		It("should check enter on a basic mode bank", func() {
			putBD(4, 040, &bank.Descriptor{Type: bank.BasicMode, Lock: key, SAP: permRW, UpperLimit: 0777})

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 040, Offset: 0100}, CallOptions{})

			expectDenial(err, AccessDenied)
		})

		It("should not enter a large bank", func() {
			putBD(4, 040, &bank.Descriptor{
				Type: bank.BasicMode, Lock: key, SAP: permE, LargeBank: true, UpperLimit: 0777,
			})

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 040, Offset: 0100}, CallOptions{})

			d := expectDenial(err, LimitsViolation|InvalidRealAddress)
			Expect(d.Resolution.AddressValid).To(BeTrue())
		})

		It("should report a general fault on the target", func() {
			target.GeneralFault = true
			putBD(2, 050, target)

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 020, Offset: 0100}, CallOptions{})

			expectDenial(err, GeneralFault)
		})

		It("should redirect through an indirect without a gate check", func() {
			putBD(4, 010, &bank.Descriptor{Type: bank.Indirect, TargetLBDI: lbdi(2, 050)})

			res, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 010, Offset: 0100}, CallOptions{})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Gated).To(BeFalse())
			Expect(res.Source.Type).To(Equal(bank.Indirect))
		})

		It("should refuse a queue bank unless queue access is requested", func() {
			putBD(4, 030, &bank.Descriptor{Type: bank.Queue, Lock: key, SAP: permR, UpperLimit: 0777})

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 030}, CallOptions{Read: true})
			expectDenial(err, AccessDenied|InvalidRealAddress)

			_, err = resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 030}, CallOptions{Queue: true, Read: true})
			Expect(err).NotTo(HaveOccurred())

			_, err = resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 030}, CallOptions{Queue: true, Write: true})
			expectDenial(err, AccessDenied)
		})

		It("should always refuse a queue repository", func() {
			putBD(4, 031, &bank.Descriptor{Type: bank.QueueRepository, Lock: key, SAP: permERW, UpperLimit: 0777})

			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 4, BDI: 031}, CallOptions{Queue: true})

			expectDenial(err, AccessDenied|InvalidRealAddress|QBRFound)
		})

		It("should refuse a call into the void range", func() {
			_, err := resolver.ResolveCallEntry(address.VirtualAddress{Level: 0, BDI: 3}, CallOptions{})

			expectDenial(err, InvalidRealAddress)
		})
	})

	Context("translate and validate", func() {
		BeforeEach(func() {
			readWords()
			putBD(4, 020, &bank.Descriptor{
				Type: bank.Gate, Lock: key, SAP: permE, UpperLimit: 0777, TargetLBDI: lbdi(2, 050),
			})
			putBD(2, 050, &bank.Descriptor{
				Type: bank.ExtendedMode, SAP: permERW, UpperLimit: 07777,
				Base: address.AbsoluteAddress{UPI: 2, Segment: 3, Offset: 01000},
			})
			putBD(4, 4, &bank.Descriptor{
				Type: bank.BasicMode, Lock: key, SAP: permR, UpperLimit: 999,
				Base: address.AbsoluteAddress{UPI: 1, Segment: 2, Offset: 010000},
			})
			putBD(4, 031, &bank.Descriptor{
				Type: bank.QueueRepository, Lock: key, SAP: permR, UpperLimit: 0777,
				Base: address.AbsoluteAddress{UPI: 1, Segment: 4},
			})
			putBD(4, 030, &bank.Descriptor{Type: bank.Queue, Lock: key, SAP: permR, UpperLimit: 0777})
		})

		It("should take the call path when enter is requested", func() {
			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 020, Offset: 0100},
				ValidateOptions{Enter: true, Translate: true})

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(Status(0)))
			Expect(report.SkipNext).To(BeTrue())
			Expect(report.AddressValid).To(BeTrue())
			word0, word1 := report.Words()
			Expect(word0).To(Equal(uint64(3)))
			Expect(word1).To(Equal(uint64(2)<<32 | 01100))
		})

		It("should report a gate violation and not skip", func() {
			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 020, Offset: 0100},
				ValidateOptions{Enter: true, Translate: true, AlternateKeyEnable: true,
					AlternateKey: access.Info{Ring: 1, Domain: 5}})

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(GateViolation | InvalidRealAddress))
			Expect(report.SkipNext).To(BeFalse())
			word0, word1 := report.Words()
			Expect(word0).To(Equal(uint64(GateViolation | InvalidRealAddress)))
			Expect(word1).To(BeZero())
		})

		It("should take the data path with read and write flags", func() {
			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100},
				ValidateOptions{Read: true, Translate: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(BeZero())
			Expect(report.RealAddress).To(Equal(address.AbsoluteAddress{UPI: 1, Segment: 2, Offset: 010144}))

			report, err = resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100},
				ValidateOptions{Write: true, Translate: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(AccessDenied))
			Expect(report.SkipNext).To(BeFalse())
		})

		It("should report limits on the data path", func() {
			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 4, Offset: 1500},
				ValidateOptions{Read: true, Translate: true})

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(LimitsViolation | InvalidRealAddress))
			Expect(report.AddressValid).To(BeFalse())
			Expect(report.SkipNext).To(BeFalse())
		})

		It("should withhold the address when translation is not requested", func() {
			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100},
				ValidateOptions{Read: true})

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(InvalidRealAddress))
			Expect(report.AddressValid).To(BeFalse())
			Expect(report.SkipNext).To(BeTrue())
		})

		It("should disclose nothing above privilege 1", func() {
			privilege = 2

			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100},
				ValidateOptions{Read: true, Translate: true})

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(InvalidRealAddress))
			Expect(report.AddressValid).To(BeFalse())
			word0, word1 := report.Words()
			Expect(word0).To(BeZero())
			Expect(word1).To(BeZero())
		})

		It("should report the void range as invalid real address", func() {
			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 0, BDI: 5},
				ValidateOptions{Read: true, Translate: true})

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(InvalidRealAddress))
			Expect(report.SkipNext).To(BeFalse())
		})

		It("should check a queue repository only on request", func() {
			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 031, Offset: 010},
				ValidateOptions{Read: true, Translate: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(AccessDenied | InvalidRealAddress | QBRFound))
			Expect(report.SkipNext).To(BeFalse())

			report, err = resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 031, Offset: 010},
				ValidateOptions{Read: true, Translate: true, QueueRepository: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(QBRFound))
			Expect(report.SkipNext).To(BeTrue())
			Expect(report.RealAddress).To(Equal(address.AbsoluteAddress{UPI: 1, Segment: 4, Offset: 010}))

			report, err = resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 031, Offset: 010},
				ValidateOptions{Write: true, Translate: true, QueueRepository: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(AccessDenied | QBRFound))
		})

		It("should check a queue bank only with the queue option", func() {
			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 030},
				ValidateOptions{Read: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(AccessDenied | InvalidRealAddress))

			report, err = resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 030},
				ValidateOptions{Read: true, Queue: true, Translate: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(BeZero())
		})

		It("should use the alternate key for bank checks", func() {
			putBD(4, 4, &bank.Descriptor{
				Type: bank.BasicMode, Lock: access.Info{Ring: 3, Domain: 7},
				GAP: permNone, SAP: permR, UpperLimit: 999,
			})

			report, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100},
				ValidateOptions{Read: true, Translate: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(Equal(AccessDenied))

			report, err = resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 4, Offset: 100},
				ValidateOptions{Read: true, Translate: true, AlternateKeyEnable: true,
					AlternateKey: access.Info{Ring: 3, Domain: 7}})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Status).To(BeZero())
		})

		It("should still raise fatal faults", func() {
			putBD(4, 010, &bank.Descriptor{Type: bank.Indirect, TargetLBDI: lbdi(4, 011)})
			putBD(4, 011, &bank.Descriptor{Type: bank.Indirect, TargetLBDI: lbdi(4, 4)})

			_, err := resolver.ValidateAddress(address.VirtualAddress{Level: 4, BDI: 010},
				ValidateOptions{Read: true})

			expectFault(err, FatalAddressing)
		})
	})
})

var _ = Describe("Validate options", func() {
	It("should decode the option word", func() {
		word := uint64(020000000000 | 004000000000 | 001000000000 | 000200000000 | 0200005)
		opts := DecodeValidateOptions(word)

		Expect(opts.Queue).To(BeTrue())
		Expect(opts.AlternateKeyEnable).To(BeTrue())
		Expect(opts.QueueRepository).To(BeFalse())
		Expect(opts.Translate).To(BeTrue())
		Expect(opts.Enter).To(BeFalse())
		Expect(opts.Read).To(BeTrue())
		Expect(opts.Write).To(BeFalse())
		Expect(opts.AlternateKey).To(Equal(access.Info{Ring: 1, Domain: 5}))
		Expect(opts.Word()).To(Equal(word))
	})
})

var _ = Describe("Status", func() {
	It("should name the bits", func() {
		Expect(Status(0).String()).To(Equal("OK"))
		Expect((AccessDenied | QBRFound).String()).To(Equal("AD,QBRF"))
		Expect((LimitsViolation | InvalidRealAddress).Has(LimitsViolation)).To(BeTrue())
		Expect(LimitsViolation.Has(LimitsViolation | InvalidRealAddress)).To(BeFalse())
	})

	It("should tell faults from denials", func() {
		var err error = &Fault{Reason: GBitSetIndirect, Level: 2, BDI: 050}
		Expect(IsFatal(err)).To(BeTrue())
		Expect(AsDenial(err)).To(BeNil())
		Expect(err.Error()).To(Equal("G bit set on indirect or gate at 2,00050"))

		err = &Denial{Status: AccessDenied}
		Expect(IsFatal(err)).To(BeFalse())
		Expect(AsDenial(err).Status).To(Equal(AccessDenied))
	})
})
