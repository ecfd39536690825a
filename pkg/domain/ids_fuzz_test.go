package domain

import "testing"

// FuzzParseAddress tests that parsing never panics on arbitrary input
// and that anything accepted round-trips to the same text.
//
// Justification: Trust boundary functions must handle arbitrary input safely.
func FuzzParseAddress(f *testing.F) {
	f.Add("")
	f.Add(zeroAddressText)
	f.Add("not-an-address")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add(zeroAddressText + "\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		addr, err := ParseAddress(input)
		if err != nil {
			return
		}
		roundTrip, err := ParseAddress(addr.String())
		if err != nil {
			t.Errorf("valid address failed round-trip: %v", err)
		}
		if roundTrip != addr {
			t.Error("round-trip changed address value")
		}
	})
}

func FuzzParseAppID(f *testing.F) {
	f.Add("1")
	f.Add("0")
	f.Add("-5")
	f.Add("99999999999999999999")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseAppID(input)
		if err == nil && id.IsNil() {
			t.Error("zero app ID was accepted")
		}
	})
}
