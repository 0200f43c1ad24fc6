/*
 * EM2200 - Processor run loops
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

package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rcornwell/EM2200/emu/master"
	"github.com/rcornwell/EM2200/emu/processor"
	"github.com/rcornwell/EM2200/emu/register"
	"github.com/rcornwell/EM2200/util/trace"
)

const MaxProcessors = 8

// Set of processors, each serving requests from its own goroutine.
type Core struct {
	wg      sync.WaitGroup
	done    chan struct{} // Signal to shutdown simulator.
	running bool
	procs   []*processor.Processor
	chans   []chan master.Packet
}

// Create core for processors sharing storage.
func NewCore(count int, storage processor.Storage) (*Core, error) {
	if count < 1 || count > MaxProcessors {
		return nil, fmt.Errorf("number of processors must be 1 to %d: %d", MaxProcessors, count)
	}
	core := &Core{done: make(chan struct{})}
	for i := range count {
		core.procs = append(core.procs, processor.New(i, storage))
		core.chans = append(core.chans, make(chan master.Packet))
	}
	return core, nil
}

// Number of processors.
func (core *Core) Processors() int {
	return len(core.procs)
}

// Processor by number, only safe to use before Start.
func (core *Core) Processor(cpu int) *processor.Processor {
	if cpu < 0 || cpu >= len(core.procs) {
		return nil
	}
	return core.procs[cpu]
}

// Start a goroutine for each processor.
func (core *Core) Start() {
	if core.running {
		return
	}
	core.running = true
	for i, p := range core.procs {
		core.wg.Add(1)
		go core.run(p, core.chans[i])
	}
}

func (core *Core) run(p *processor.Processor, packets chan master.Packet) {
	defer core.wg.Done()
	for {
		select {
		case <-core.done:
			return
		case packet := <-packets:
			reply := processPacket(p, packet)
			if packet.Reply != nil {
				packet.Reply <- reply
			}
		}
	}
}

// Stop a running core.
func (core *Core) Stop() {
	slog.Info("Shutting down processors")
	close(core.done)
	done := make(chan struct{})
	go func() {
		core.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for processors to finish.")
		return
	}
}

// Send packet to its processor and wait for the reply.
func (core *Core) Send(packet master.Packet) master.Reply {
	if packet.CPU < 0 || packet.CPU >= len(core.chans) {
		return master.Reply{Err: fmt.Errorf("no processor %d", packet.CPU)}
	}
	if !core.running {
		return master.Reply{Err: errors.New("processors not started")}
	}
	packet.Reply = make(chan master.Reply, 1)
	select {
	case core.chans[packet.CPU] <- packet:
	case <-core.done:
		return master.Reply{Err: errors.New("processors stopped")}
	}
	return <-packet.Reply
}

// Send packet to every processor.
func (core *Core) Broadcast(packet master.Packet) {
	for i := range core.chans {
		packet.CPU = i
		_ = core.Send(packet)
	}
}

// Process a packet sent to a processor.
func processPacket(p *processor.Processor, packet master.Packet) master.Reply {
	var reply master.Reply
	switch packet.Msg {
	case master.Resolve:
		reply.Resolution, reply.Err = p.Resolve(packet.Address, packet.Required, packet.Queue)
	case master.Call:
		reply.Resolution, reply.Err = p.Call(packet.Address)
	case master.Validate:
		reply.Report, reply.Err = p.TranslateValidate(packet.Address, packet.Options)
	case master.LoadBankUser:
		reply.Err = p.LoadBankUser(packet.Register, packet.Address)
	case master.LoadBankExec:
		reply.Err = p.LoadBankExec(packet.Register, packet.Address)
	case master.SetKey:
		p.SetAccessKey(packet.Key)
	case master.SetDesignator:
		reply.Err = p.SetDesignator(processor.Designator{
			Privilege: packet.Privilege,
			BasicMode: packet.BasicMode,
			DB31:      packet.DB31,
		})
	case master.FindBD:
		reply.Descriptor, reply.Err = p.Resolver().FindBankDescriptor(packet.Address.Level,
			packet.Address.BDI, false)
	case master.Show:
		reply.Text, reply.Err = show(p, packet.Item)
	case master.Reset:
		p.Reset()
	case master.TimeClock:
		if s := trace.Current(); s != nil {
			reply.Err = s.Flush()
		}
	default:
		reply.Err = fmt.Errorf("unknown request: %d", packet.Msg)
	}
	return reply
}

// Format processor state.
func show(p *processor.Processor, item string) (string, error) {
	var str strings.Builder
	switch strings.ToUpper(item) {
	case "BR":
		for i := range register.NumBaseRegisters {
			fmt.Fprintf(&str, "B%-2d %s\n", i, p.BaseRegister(i))
		}
	case "ABT":
		for i := 1; i <= register.NumABTEntries; i++ {
			entry, _ := p.Registers().ActiveBaseTableEntry(i)
			fmt.Fprintf(&str, "B%-2d %o,%05o %06o\n", i, entry.Level, entry.BDI, entry.Offset)
		}
	case "KEY":
		fmt.Fprintf(&str, "key:%s %s par:%s\n", p.AccessKey(), p.Designator(), p.ProgramAddress())
		w0, w1 := p.ValidateWords()
		fmt.Fprintf(&str, "tva:%012o %012o\n", w0, w1)
	default:
		return "", errors.New("show what: " + item)
	}
	return str.String(), nil
}
