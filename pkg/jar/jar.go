// Package jar builds the shareable pieces of a tip jar: the short display
// form of a receiving address, the link that opens the send page pre-filled
// with that address, and a QR code URL for the link.
package jar

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultShortChars is how many characters ShortAddress keeps on each side.
	DefaultShortChars = 6

	// DefaultQRSize is the QR image edge in pixels.
	DefaultQRSize = 180

	// SendPath is the send page path on the web front end.
	SendPath = "/send"

	qrServiceURL = "https://api.qrserver.com/v1/create-qr-code/"
)

var (
	// ErrNoAddress is returned when a jar is requested for an empty address.
	ErrNoAddress = errors.New("no receiving address")

	// ErrBadOrigin is returned when the site origin is not an absolute URL.
	ErrBadOrigin = errors.New("origin must be an absolute http(s) URL")
)

// Info describes a tip jar for display.
type Info struct {
	Address string `json:"address"`
	Short   string `json:"short"`
	Link    string `json:"link"`
	QRCode  string `json:"qr_code"`
}

// ShortAddress abbreviates addr to its first and last chars characters,
// joined by an ellipsis. Addresses short enough to show in full are returned
// unchanged.
func ShortAddress(addr string, chars int) string {
	if chars <= 0 || len(addr) <= chars*2 {
		return addr
	}
	return addr[:chars] + "…" + addr[len(addr)-chars:]
}

// Link returns the send page URL with the recipient pre-filled.
func Link(origin, address string) (string, error) {
	if address == "" {
		return "", ErrNoAddress
	}
	u, err := url.Parse(strings.TrimRight(origin, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrBadOrigin, origin)
	}
	return u.Scheme + "://" + u.Host + SendPath + "?to=" + url.QueryEscape(address), nil
}

// QRCodeURL returns an image URL encoding data as a size x size QR code.
func QRCodeURL(data string, size int) string {
	if size <= 0 {
		size = DefaultQRSize
	}
	dim := strconv.Itoa(size)
	return qrServiceURL + "?size=" + dim + "x" + dim + "&data=" + url.QueryEscape(data)
}

// NewInfo assembles the jar for address as served from origin.
func NewInfo(origin, address string) (*Info, error) {
	link, err := Link(origin, address)
	if err != nil {
		return nil, err
	}
	return &Info{
		Address: address,
		Short:   ShortAddress(address, DefaultShortChars),
		Link:    link,
		QRCode:  QRCodeURL(link, DefaultQRSize),
	}, nil
}
