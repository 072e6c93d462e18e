package wire

import (
	"encoding/binary"
	"net"
)

// putFixedString writes s into dst, truncating to len(dst) and null-padding
// the remainder. dst's length is the wire field width.
func putFixedString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// getFixedString trims trailing nulls from a fixed-width field.
func getFixedString(src []byte) string {
	end := len(src)
	for end > 0 && src[end-1] == 0 {
		end--
	}
	return string(src[:end])
}

// PlayerName is the (name, tag) pair spec.md §3 calls a "full name".
type PlayerName struct {
	Name string
	Tag  uint16
}

func (p PlayerName) encode(dst []byte) {
	putFixedString(dst[:NameSize], p.Name)
	binary.BigEndian.PutUint16(dst[NameSize:NameSize+2], p.Tag)
}

func (p *PlayerName) decode(src []byte) {
	p.Name = getFixedString(src[:NameSize])
	p.Tag = binary.BigEndian.Uint16(src[NameSize : NameSize+2])
}

const playerNameSize = NameSize + 2

// Endpoint is 16 bytes of (v4-mapped) IPv6 followed by a big-endian port,
// per spec.md §6.
type Endpoint struct {
	IP   net.IP // always a 16-byte form; IPv4 stored as ::ffff:a.b.c.d
	Port uint16
}

// NewEndpoint maps ip (v4 or v6) into the wire's 16-byte representation.
func NewEndpoint(ip net.IP, port uint16) Endpoint {
	if v4 := ip.To4(); v4 != nil {
		mapped := make(net.IP, 16)
		mapped[10], mapped[11] = 0xff, 0xff
		copy(mapped[12:], v4)
		return Endpoint{IP: mapped, Port: port}
	}
	v6 := ip.To16()
	out := make(net.IP, 16)
	copy(out, v6)
	return Endpoint{IP: out, Port: port}
}

func (e Endpoint) encode(dst []byte) {
	ip := e.IP.To16()
	if ip == nil {
		ip = make(net.IP, 16)
	}
	copy(dst[:16], ip)
	binary.BigEndian.PutUint16(dst[16:18], e.Port)
}

func (e *Endpoint) decode(src []byte) {
	ip := make(net.IP, 16)
	copy(ip, src[:16])
	e.IP = ip
	e.Port = binary.BigEndian.Uint16(src[16:18])
}

// Header is the 1-byte client-request preamble.
type Header struct {
	Kind Kind
}

func EncodeHeader(k Kind) []byte { return []byte{byte(k)} }

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != 1 {
		return Header{}, &MalformedFrame{Record: "message_header", Reason: "expected 1 byte"}
	}
	return Header{Kind: Kind(b[0])}, nil
}

// ReplyHeader is the 2-byte server-reply preamble: kind then error code.
type ReplyHeader struct {
	Kind      Kind
	ErrorCode ErrorCode
}

func (h ReplyHeader) Encode() []byte {
	return []byte{byte(h.Kind), byte(h.ErrorCode)}
}

func DecodeReplyHeader(b []byte) (ReplyHeader, error) {
	if len(b) != 2 {
		return ReplyHeader{}, &MalformedFrame{Record: "reply_message_header", Reason: "expected 2 bytes"}
	}
	return ReplyHeader{Kind: Kind(b[0]), ErrorCode: ErrorCode(b[1])}, nil
}
