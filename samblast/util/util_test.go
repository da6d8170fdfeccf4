// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package util

import "testing"

func TestNumDigits(t *testing.T) {
	cases := [][2]int{{0, 1}, {9, 1}, {10, 2}, {109, 3}, {-5, 2}, {1000000, 7}}
	for _, c := range cases {
		if NumDigits(c[0]) != c[1] {
			t.Errorf("%d: expected: %d, results: %d", c[0], c[1], NumDigits(c[0]))
		}
	}
}

func TestPercent(t *testing.T) {
	cases := [][3]int{{10, 10, 100}, {0, 10, 0}, {1, 3, 33}, {2, 3, 67}, {1, 8, 13}, {5, 0, 0}}
	for _, c := range cases {
		if Percent(c[0], c[1]) != c[2] {
			t.Errorf("%d/%d: expected: %d, results: %d", c[0], c[1], c[2], Percent(c[0], c[1]))
		}
	}
}

func TestReverse(t *testing.T) {
	s := []byte("ACGTT")
	ReverseBytes(s)
	if string(s) != "TTGCA" {
		t.Errorf("expected: %s, results: %s", "TTGCA", s)
	}

	b := []bool{true, false, false}
	ReverseBools(b)
	if b[0] || !b[2] || CountTrue(b) != 1 {
		t.Errorf("unexpected result: %v", b)
	}
}
