package domain

import (
	"testing"
)

func TestRRType_IsValid(t *testing.T) {
	cases := []struct {
		rrtype RRType
		want   bool
	}{
		{1, true}, {2, true}, {5, true}, {6, true}, {12, true}, {15, true},
		{16, true}, {28, true}, {39, true}, {255, true},
		{0, false}, {3, false}, {13, false}, {46, false}, {254, false},
	}
	for _, tc := range cases {
		if got := tc.rrtype.IsValid(); got != tc.want {
			t.Errorf("IsValid(%d) = %v, want %v", tc.rrtype, got, tc.want)
		}
	}
}

func TestRRType_String(t *testing.T) {
	cases := []struct {
		rrtype RRType
		want   string
	}{
		{1, "A"}, {2, "NS"}, {5, "CNAME"}, {6, "SOA"}, {12, "PTR"},
		{15, "MX"}, {16, "TXT"}, {28, "AAAA"}, {39, "DNAME"}, {255, "ANY"},
		{13, "TYPE13"}, {0, "TYPE0"}, {65280, "TYPE65280"},
	}
	for _, tc := range cases {
		if got := tc.rrtype.String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", tc.rrtype, got, tc.want)
		}
	}
}

func TestRRTypeFromString(t *testing.T) {
	cases := []struct {
		input string
		want  RRType
	}{
		{"A", 1}, {"NS", 2}, {"CNAME", 5}, {"SOA", 6}, {"PTR", 12},
		{"MX", 15}, {"TXT", 16}, {"AAAA", 28}, {"DNAME", 39}, {"ANY", 255},
		{"a", 1}, {"dname", 39}, {" MX ", 15},
		{"", 0}, {"BOGUS", 0}, {"HINFO", 0},
	}
	for _, tc := range cases {
		if got := RRTypeFromString(tc.input); got != tc.want {
			t.Errorf("RRTypeFromString(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestRRClass(t *testing.T) {
	if !RRClassIN.IsValid() || !RRClassCH.IsValid() || !RRClassANY.IsValid() {
		t.Error("IN, CH, and ANY classes should be valid")
	}
	if RRClass(0).IsValid() || RRClass(2).IsValid() {
		t.Error("unassigned classes should be invalid")
	}
	if RRClassIN.String() != "IN" || RRClassCH.String() != "CH" || RRClassANY.String() != "ANY" {
		t.Error("class names should round-trip")
	}
	if RRClass(200).String() != "UNKNOWN" {
		t.Error("unassigned class should stringify as UNKNOWN")
	}
	if ParseRRClass("IN") != RRClassIN || ParseRRClass("CH") != RRClassCH || ParseRRClass("ANY") != RRClassANY {
		t.Error("ParseRRClass should map known names")
	}
	if ParseRRClass("HS") != 0 || ParseRRClass("") != 0 {
		t.Error("ParseRRClass should return 0 for unknown names")
	}
}
