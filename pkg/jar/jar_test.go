package jar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortAddress(t *testing.T) {
	tests := []struct {
		name  string
		addr  string
		chars int
		want  string
	}{
		{"long", "opt1pabcdefghijklmnopqrstuvwxyz", 6, "opt1pa…uvwxyz"},
		{"exactly twice", "abcdefghijkl", 6, "abcdefghijkl"},
		{"short", "abc", 6, "abc"},
		{"empty", "", 6, ""},
		{"custom chars", "0x1234567890", 2, "0x…90"},
		{"zero chars", "0x1234567890", 0, "0x1234567890"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortAddress(tt.addr, tt.chars))
		})
	}
}

func TestLink(t *testing.T) {
	link, err := Link("https://tipjar.example", "opt1pxyz")
	require.NoError(t, err)
	assert.Equal(t, "https://tipjar.example/send?to=opt1pxyz", link)

	// Trailing slash and path are dropped, address is escaped.
	link, err = Link("http://localhost:5173/jar/", "a b&c")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/send?to=a+b%26c", link)

	_, err = Link("https://tipjar.example", "")
	assert.ErrorIs(t, err, ErrNoAddress)

	_, err = Link("tipjar.example", "opt1pxyz")
	assert.ErrorIs(t, err, ErrBadOrigin)

	_, err = Link("ftp://tipjar.example", "opt1pxyz")
	assert.ErrorIs(t, err, ErrBadOrigin)
}

func TestQRCodeURL(t *testing.T) {
	got := QRCodeURL("https://tipjar.example/send?to=opt1p", 180)
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=180x180&data=https%3A%2F%2Ftipjar.example%2Fsend%3Fto%3Dopt1p",
		got)

	assert.Contains(t, QRCodeURL("x", 0), "size=180x180")
}

func TestNewInfo(t *testing.T) {
	info, err := NewInfo("https://tipjar.example", "opt1pabcdefghijklmnopqrstuvwxyz")
	require.NoError(t, err)
	assert.Equal(t, "opt1pabcdefghijklmnopqrstuvwxyz", info.Address)
	assert.Equal(t, "opt1pa…uvwxyz", info.Short)
	assert.Equal(t, "https://tipjar.example/send?to=opt1pabcdefghijklmnopqrstuvwxyz", info.Link)
	assert.Equal(t, QRCodeURL(info.Link, DefaultQRSize), info.QRCode)

	_, err = NewInfo("https://tipjar.example", "")
	assert.ErrorIs(t, err, ErrNoAddress)
}

func TestValidateRecipient(t *testing.T) {
	taproot, err := EncodeSegwit("opt", 1, make([]byte, 32))
	require.NoError(t, err)
	mainnet, err := EncodeSegwit("bc", 1, make([]byte, 32))
	require.NoError(t, err)
	corrupted := taproot[:len(taproot)-1] + "q"
	if corrupted == taproot {
		corrupted = taproot[:len(taproot)-1] + "p"
	}

	tests := []struct {
		name    string
		addr    string
		wantErr error
	}{
		{"segwit ok", taproot, nil},
		{"segwit with spaces", "  " + taproot + " ", nil},
		{"segwit bad checksum", corrupted, ErrInvalidAddress},
		{"wrong network", mainnet, ErrInvalidAddress},
		{"hex ok", "0xb09fc29c112af8293539477e23d8df1d3126639642767d707277131352040cbb", nil},
		{"hex odd", "0xabc", ErrInvalidAddress},
		{"hex empty", "0x", ErrInvalidAddress},
		{"hex garbage", "0xzz", ErrInvalidAddress},
		{"legacy passes through", "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", nil},
		{"empty", "   ", ErrNoAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecipient(tt.addr, "opt")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// The same mainnet address is checked when the network expects it.
	assert.NoError(t, ValidateRecipient(mainnet, "bc"))
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindHex, Kind("0xabcd", "opt"))
	assert.Equal(t, KindSegwit, Kind("OPT1PQQ", "opt"))
	assert.Equal(t, KindUnknown, Kind("bc1pqq", "opt"))
	assert.Equal(t, KindUnknown, Kind("opt1pqq", ""))
}
