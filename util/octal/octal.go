/*
 * EM2200 - Convert octal words to strings
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

package octal

import (
	"fmt"
	"strconv"
	"strings"
)

const wordMask uint64 = 0777777777777

var octMap = "01234567"

// Fieldata character set, 6 bits per character.
var fieldata = "@[]#^ ABCDEFGHIJKLMNOPQRSTUVWXYZ)-+<=>&$*(%:?!,\\0123456789';/.\"_"

// Twelve digits per 36 bit word.
func FormatWord(str *strings.Builder, word []uint64) {
	for _, full := range word {
		shift := 33
		for range 12 {
			str.WriteByte(octMap[(full>>shift)&07])
			shift -= 3
		}
		str.WriteByte(' ')
	}
}

// Word as two half words.
func FormatHalf(str *strings.Builder, word uint64) {
	FormatDigits(str, 6, word>>18)
	str.WriteByte(' ')
	FormatDigits(str, 6, word)
}

// Low count digits of value.
func FormatDigits(str *strings.Builder, count int, value uint64) {
	for i := count - 1; i >= 0; i-- {
		str.WriteByte(octMap[(value>>(3*i))&07])
	}
}

// Six fieldata characters.
func FormatFieldata(str *strings.Builder, word uint64) {
	shift := 30
	for range 6 {
		str.WriteByte(fieldata[(word>>shift)&077])
		shift -= 6
	}
}

// Parse octal number that must fit in limit.
func Parse(text string, limit uint64) (uint64, error) {
	value, err := strconv.ParseUint(text, 8, 64)
	if err != nil {
		return 0, fmt.Errorf("not an octal number: %s", text)
	}
	if value > limit {
		return 0, fmt.Errorf("number too large: %s", text)
	}
	return value, nil
}

// Parse a 36 bit word.
func ParseWord(text string) (uint64, error) {
	return Parse(text, wordMask)
}
