/*
 * EM2200 - Console command completion
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
	"slices"
	"strings"
	"unicode"

	command "github.com/rcornwell/EM2200/command/command"
)

// Called to complete a command line, during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord(false)

	// We have a command, let it try and complete it.
	if !line.isEOL() && unicode.IsSpace(rune(line.line[line.pos])) {
		// See if there is a completer for this command.
		match := matchList(name)
		if len(match) != 1 || match[0].Complete == nil {
			return nil
		}
		return match[0].Complete(&line)
	}

	// Try and match one command.
	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			matches = append(matches, m.Name+" ")
		}
	}
	slices.Sort(matches)
	return matches
}

// Position and text of the last word on the line.
func (line *cmdLine) lastWord() (int, string) {
	start := len(line.line)
	for start > line.pos && !unicode.IsSpace(rune(line.line[start-1])) {
		start--
	}
	return start, line.line[start:]
}

// Complete last word against names, leading text is kept.
func (line *cmdLine) completeWord(names []string, suffix func(string) string) []string {
	start, partial := line.lastWord()
	partial = strings.ToLower(partial)
	leading := line.line[:start]
	matches := []string{}
	for _, name := range names {
		if strings.HasPrefix(name, partial) {
			matches = append(matches, leading+name+suffix(name))
		}
	}
	slices.Sort(matches)
	return matches
}

// Completer for commands taking options of cmdType.
func optionComplete(cmdType int) func(*cmdLine) []string {
	return func(line *cmdLine) []string {
		return line.completeWord(command.Names(cmdType), func(name string) string {
			opt, _ := command.Lookup(name, cmdType)
			if opt.OptionType == command.OptionNumber {
				return "="
			}
			return " "
		})
	}
}

// Complete the item of a show command.
func showComplete(line *cmdLine) []string {
	line.skipSpace()
	if strings.ContainsFunc(line.line[line.pos:], unicode.IsSpace) {
		return nil
	}
	return line.completeWord(command.ShowItems, func(string) string { return " " })
}
