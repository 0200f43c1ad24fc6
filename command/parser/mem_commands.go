/*
 * EM2200 - Console storage commands
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	core "github.com/rcornwell/EM2200/emu/core"
	"github.com/rcornwell/EM2200/emu/memory"
	"github.com/rcornwell/EM2200/util/octal"
)

// Words shown on one examine line.
const wordsPerLine = 4

// Storage the storage commands use.
var storage = memory.Default()

// Examine storage: examine upi:seg:offset [count].
func examine(line *cmdLine, _ *core.Core) (bool, error) {
	slog.Debug("Command Examine")
	addr, err := line.getAbsolute()
	if err != nil {
		return false, err
	}
	count := uint64(1)
	line.skipSpace()
	if !line.isEOL() {
		count, err = line.getOctal(01000)
		if err != nil {
			return false, err
		}
		if count == 0 {
			return false, errors.New("count must be non zero")
		}
	}
	if err := line.checkEOL(); err != nil {
		return false, err
	}

	// Stop at the end of the segment.
	words := []uint64{}
	for i := range uint32(count) {
		word, bad := storage.GetWord(addr.AddOffset(i))
		if bad {
			break
		}
		words = append(words, word)
	}
	if len(words) == 0 {
		return false, fmt.Errorf("address not in storage: %s", addr)
	}

	var str strings.Builder
	for i := 0; i < len(words); i += wordsPerLine {
		group := words[i:min(i+wordsPerLine, len(words))]
		str.WriteString(addr.AddOffset(uint32(i)).String())
		str.WriteString("  ")
		octal.FormatWord(&str, group)
		for _, word := range group {
			octal.FormatFieldata(&str, word)
		}
		str.WriteByte('\n')
	}
	fmt.Fprint(out, str.String())
	return false, nil
}

// Deposit words: deposit upi:seg:offset word [word...].
func deposit(line *cmdLine, _ *core.Core) (bool, error) {
	slog.Debug("Command Deposit")
	addr, err := line.getAbsolute()
	if err != nil {
		return false, err
	}
	words := []uint64{}
	for {
		line.skipSpace()
		if line.isEOL() {
			break
		}
		token := line.getToken()
		word, err := octal.ParseWord(token)
		if err != nil {
			return false, err
		}
		words = append(words, word)
	}
	if len(words) == 0 {
		return false, errors.New("deposit requires a value")
	}
	if storage.PutWords(addr, words) {
		return false, fmt.Errorf("address not in storage: %s", addr)
	}
	return false, nil
}
