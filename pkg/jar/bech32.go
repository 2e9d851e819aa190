package jar

import (
	"fmt"
	"strings"
)

// Bech32 charset used for encoding (BIP-173).
const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Checksum constants: bech32 for witness v0, bech32m for v1+ (BIP-350).
const (
	bech32Const  uint32 = 1
	bech32mConst uint32 = 0x2bc830a3
)

// maxBech32Len is the BIP-173 length limit for segwit addresses.
const maxBech32Len = 90

// bech32CharsetRev maps bech32 characters to their 5-bit values. -1 = invalid.
var bech32CharsetRev [128]int8

func init() {
	for i := range bech32CharsetRev {
		bech32CharsetRev[i] = -1
	}
	for i, c := range bech32Charset {
		bech32CharsetRev[c] = int8(i)
	}
}

// EncodeSegwit encodes a witness program as a segwit address. Version 0 uses
// the bech32 checksum, later versions use bech32m.
func EncodeSegwit(hrp string, version byte, program []byte) (string, error) {
	if len(hrp) == 0 {
		return "", fmt.Errorf("bech32: empty HRP")
	}
	if version > 16 {
		return "", fmt.Errorf("bech32: invalid witness version %d", version)
	}
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return "", fmt.Errorf("bech32: invalid HRP character %q", c)
		}
	}

	conv, err := convertBits(program, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("bech32: convert bits: %w", err)
	}
	data := append([]byte{version}, conv...)
	hrp = strings.ToLower(hrp)
	chk := createChecksum(hrp, data, checksumConst(version))

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + 6)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, b := range data {
		sb.WriteByte(bech32Charset[b])
	}
	for _, b := range chk {
		sb.WriteByte(bech32Charset[b])
	}
	return sb.String(), nil
}

// DecodeSegwit decodes a segwit address into its human-readable part,
// witness version and witness program.
func DecodeSegwit(s string) (string, byte, []byte, error) {
	if len(s) == 0 {
		return "", 0, nil, fmt.Errorf("bech32: empty string")
	}
	if len(s) > maxBech32Len {
		return "", 0, nil, fmt.Errorf("bech32: too long")
	}

	// Reject mixed case.
	hasUpper := false
	hasLower := false
	for _, c := range s {
		if c >= 'A' && c <= 'Z' {
			hasUpper = true
		}
		if c >= 'a' && c <= 'z' {
			hasLower = true
		}
	}
	if hasUpper && hasLower {
		return "", 0, nil, fmt.Errorf("bech32: mixed case")
	}
	s = strings.ToLower(s)

	// Find the last '1' separator.
	sepIdx := strings.LastIndex(s, "1")
	if sepIdx < 1 {
		return "", 0, nil, fmt.Errorf("bech32: missing separator")
	}
	if sepIdx+7 > len(s) {
		return "", 0, nil, fmt.Errorf("bech32: too short")
	}

	hrp := s[:sepIdx]
	dataStr := s[sepIdx+1:]

	data5 := make([]byte, len(dataStr))
	for i, c := range dataStr {
		if c > 127 {
			return "", 0, nil, fmt.Errorf("bech32: invalid character %q", c)
		}
		val := bech32CharsetRev[c]
		if val < 0 {
			return "", 0, nil, fmt.Errorf("bech32: invalid character %q", c)
		}
		data5[i] = byte(val)
	}

	// Witness version plus the 6-character checksum.
	if len(data5) < 7 {
		return "", 0, nil, fmt.Errorf("bech32: too short")
	}
	version := data5[0]
	if version > 16 {
		return "", 0, nil, fmt.Errorf("bech32: invalid witness version %d", version)
	}
	if polymod(append(hrpExpand(hrp), data5...)) != checksumConst(version) {
		return "", 0, nil, fmt.Errorf("bech32: invalid checksum")
	}

	program, err := convertBits(data5[1:len(data5)-6], 5, 8, false)
	if err != nil {
		return "", 0, nil, fmt.Errorf("bech32: convert bits: %w", err)
	}
	if len(program) < 2 || len(program) > 40 {
		return "", 0, nil, fmt.Errorf("bech32: invalid program length %d", len(program))
	}
	if version == 0 && len(program) != 20 && len(program) != 32 {
		return "", 0, nil, fmt.Errorf("bech32: invalid v0 program length %d", len(program))
	}

	return hrp, version, program, nil
}

func checksumConst(version byte) uint32 {
	if version == 0 {
		return bech32Const
	}
	return bech32mConst
}

// polymod computes the bech32 polynomial modulus.
func polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

// hrpExpand expands the HRP for checksum computation.
func hrpExpand(hrp string) []byte {
	ret := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		ret = append(ret, byte(c>>5))
	}
	ret = append(ret, 0)
	for _, c := range hrp {
		ret = append(ret, byte(c&31))
	}
	return ret
}

func createChecksum(hrp string, data []byte, constant uint32) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ constant
	ret := make([]byte, 6)
	for i := 0; i < 6; i++ {
		ret[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return ret
}

// convertBits converts between bit groups.
// fromBits/toBits are the source/destination group sizes (e.g. 8 and 5).
// pad controls whether incomplete groups are zero-padded.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	acc := uint32(0)
	bits := uint(0)
	maxv := uint32((1 << toBits) - 1)
	var ret []byte

	for _, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, fmt.Errorf("invalid data byte: %d", b)
		}
		acc = acc<<fromBits | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			ret = append(ret, byte((acc>>bits)&maxv))
		}
	}

	if pad {
		if bits > 0 {
			ret = append(ret, byte((acc<<(toBits-bits))&maxv))
		}
	} else {
		if bits >= fromBits {
			return nil, fmt.Errorf("non-zero padding")
		}
		if (acc<<(toBits-bits))&maxv != 0 {
			return nil, fmt.Errorf("non-zero padding")
		}
	}

	return ret, nil
}
