package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	recordFormatVersionV1 = 1
)

// Encode serializes a [Record] into the compact binary store format. The
// encoder is append-only: new versions add fields but never reinterpret old
// ones.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionV1)

	if len(r.Subject) > 255 {
		return nil, errors.New("subject too long")
	}
	buf.WriteByte(byte(len(r.Subject)))
	buf.WriteString(r.Subject)

	if len(r.Nonce) > 255 {
		return nil, errors.New("nonce too long")
	}
	buf.WriteByte(byte(len(r.Nonce)))
	buf.WriteString(r.Nonce)

	if err := binary.Write(&buf, binary.BigEndian, r.CreatedAt); err != nil {
		return nil, err
	}

	if len(r.Token) > 65535 {
		return nil, errors.New("token too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(r.Token))); err != nil {
		return nil, err
	}
	buf.WriteString(r.Token)

	return buf.Bytes(), nil
}

// Decode parses the binary store format back into a [Record].
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionV1 {
		return nil, errors.New("invalid session record version")
	}

	record := &Record{}

	if record.Subject, err = readShortString(reader); err != nil {
		return nil, err
	}
	if record.Nonce, err = readShortString(reader); err != nil {
		return nil, err
	}

	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}

	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}
	record.Token = string(token)

	return record, nil
}

func readShortString(reader *bytes.Reader) (string, error) {
	n, err := reader.ReadByte()
	if err != nil {
		return "", err
	}

	out := make([]byte, n)
	if _, err := io.ReadFull(reader, out); err != nil {
		return "", err
	}

	return string(out), nil
}
