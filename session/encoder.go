package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordFormatVersionCurrent = 1

// ErrRecordCorrupt is returned when a stored blob cannot be decoded.
var ErrRecordCorrupt = errors.New("session record corrupt")

// Encode serializes a record into the compact versioned binary format the
// stores persist. Short identity fields are byte-length-prefixed; the
// principal payload and user agent carry 16-bit lengths.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionCurrent)

	if len(r.SessionRef) > 255 {
		return nil, errors.New("session ref too long")
	}
	buf.WriteByte(byte(len(r.SessionRef)))
	buf.WriteString(r.SessionRef)

	if len(r.OwnerID) > 255 {
		return nil, errors.New("owner id too long")
	}
	buf.WriteByte(byte(len(r.OwnerID)))
	buf.WriteString(r.OwnerID)

	if len(r.Principal) > 65535 {
		return nil, errors.New("principal payload too large")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.Principal))); err != nil {
		return nil, err
	}
	buf.Write(r.Principal)

	if len(r.Device.IP) > 255 {
		return nil, errors.New("device ip too long")
	}
	buf.WriteByte(byte(len(r.Device.IP)))
	buf.WriteString(r.Device.IP)

	if len(r.Device.UserAgent) > 65535 {
		return nil, errors.New("device user agent too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.Device.UserAgent))); err != nil {
		return nil, err
	}
	buf.WriteString(r.Device.UserAgent)

	if err := binary.Write(&buf, binary.BigEndian, r.Device.LoginAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode]. Any structural violation
// yields [ErrRecordCorrupt]; decode never panics on hostile input.
func Decode(data []byte) (*Record, error) {
	rd := bytes.NewReader(data)

	version, err := rd.ReadByte()
	if err != nil {
		return nil, ErrRecordCorrupt
	}
	if version != recordFormatVersionCurrent {
		return nil, ErrRecordCorrupt
	}

	r := &Record{}

	if r.SessionRef, err = readShortString(rd); err != nil {
		return nil, ErrRecordCorrupt
	}
	if r.OwnerID, err = readShortString(rd); err != nil {
		return nil, ErrRecordCorrupt
	}
	if r.Principal, err = readWideBytes(rd); err != nil {
		return nil, ErrRecordCorrupt
	}
	if r.Device.IP, err = readShortString(rd); err != nil {
		return nil, ErrRecordCorrupt
	}
	ua, err := readWideBytes(rd)
	if err != nil {
		return nil, ErrRecordCorrupt
	}
	r.Device.UserAgent = string(ua)

	if err := binary.Read(rd, binary.BigEndian, &r.Device.LoginAt); err != nil {
		return nil, ErrRecordCorrupt
	}
	if err := binary.Read(rd, binary.BigEndian, &r.CreatedAt); err != nil {
		return nil, ErrRecordCorrupt
	}
	if err := binary.Read(rd, binary.BigEndian, &r.ExpiresAt); err != nil {
		return nil, ErrRecordCorrupt
	}

	if rd.Len() != 0 {
		return nil, ErrRecordCorrupt
	}
	if len(r.Principal) == 0 {
		r.Principal = nil
	}

	return r, nil
}

func readShortString(rd *bytes.Reader) (string, error) {
	n, err := rd.ReadByte()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}

	out := make([]byte, n)
	if _, err := io.ReadFull(rd, out); err != nil {
		return "", err
	}
	return string(out), nil
}

func readWideBytes(rd *bytes.Reader) ([]byte, error) {
	var n uint16
	if err := binary.Read(rd, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	out := make([]byte, n)
	if _, err := io.ReadFull(rd, out); err != nil {
		return nil, err
	}
	return out, nil
}
