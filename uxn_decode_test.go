package main

import "testing"

func TestDecodeSplitsOpAndModeBits(t *testing.T) {
	cases := []struct {
		ins                byte
		op                 byte
		short, ret, keep bool
	}{
		{0x18, 0x18, false, false, false}, // ADD
		{0x38, 0x18, true, false, false},  // ADD2
		{0x58, 0x18, false, true, false},  // ADDr
		{0x98, 0x18, false, false, true},  // ADDk
		{0xf8, 0x18, true, true, true},    // ADD2kr
	}
	for _, c := range cases {
		d := decode(c.ins)
		if d.op != c.op || d.short != c.short || d.ret != c.ret || d.keep != c.keep {
			t.Errorf("decode(%#x) = %+v, want op=%#x short=%v ret=%v keep=%v",
				c.ins, d, c.op, c.short, c.ret, c.keep)
		}
	}
}

func TestDecodeImmediateSelectsAllEight(t *testing.T) {
	cases := []struct {
		ins  byte
		want immediate
	}{
		{0x00, immBRK},
		{0x20, immJCI},
		{0x40, immJMI},
		{0x60, immJSI},
		{0x80, immLIT},
		{0xa0, immLIT2},
		{0xc0, immLITr},
		{0xe0, immLIT2r},
	}
	for _, c := range cases {
		if decode(c.ins).op != 0 {
			t.Fatalf("ins %#x has nonzero op, not an immediate encoding", c.ins)
		}
		if got := decodeImmediate(c.ins); got != c.want {
			t.Errorf("decodeImmediate(%#x) = %v, want %v", c.ins, got, c.want)
		}
	}
}
