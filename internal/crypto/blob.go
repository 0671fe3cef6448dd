package crypto

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"
)

const (
	blobVersion = 0x01

	// version | time | memory | threads | salt
	headerLen = 1 + 4 + 4 + 1 + saltLen

	// GCM tag size; the smallest valid ciphertext is an empty plaintext.
	tagLen = 16

	minBlobLen = headerLen + nonceLen + tagLen
)

// EncryptedBlob is the persisted form of the private key.
//
// Byte layout before base64:
//
//	version(1) | time(4) | memoryKiB(4) | threads(1) | salt(32) | nonce(12) | ciphertext||tag
//
// Integers are big endian. The header up to and including the salt is bound
// to the ciphertext as AEAD associated data.
type EncryptedBlob struct {
	Params     KDFParams
	Salt       []byte
	Nonce      []byte
	CipherText []byte
}

// header returns the serialized header, which doubles as associated data.
func (b *EncryptedBlob) header() []byte {
	h := make([]byte, 0, headerLen)
	h = append(h, blobVersion)
	h = binary.BigEndian.AppendUint32(h, b.Params.Time)
	h = binary.BigEndian.AppendUint32(h, b.Params.MemoryKiB)
	h = append(h, b.Params.Threads)
	h = append(h, b.Salt...)
	return h
}

// Encode serializes the blob as a single base64 text line.
func (b *EncryptedBlob) Encode() string {
	raw := b.header()
	raw = append(raw, b.Nonce...)
	raw = append(raw, b.CipherText...)
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeBlob parses the text produced by Encode. Any structural problem is
// reported as model.ErrFormat.
func DecodeBlob(text string) (*EncryptedBlob, error) {
	// Skip UTF-8 BOM if present
	text = strings.TrimPrefix(text, "\uFEFF")

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode blob: %w", model.ErrFormat, err)
	}
	if len(raw) < minBlobLen {
		return nil, fmt.Errorf("%w: blob too short (%d bytes)", model.ErrFormat, len(raw))
	}
	if raw[0] != blobVersion {
		return nil, fmt.Errorf("%w: unknown blob version %d", model.ErrFormat, raw[0])
	}

	params := KDFParams{
		Time:      binary.BigEndian.Uint32(raw[1:5]),
		MemoryKiB: binary.BigEndian.Uint32(raw[5:9]),
		Threads:   raw[9],
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	saltEnd := headerLen
	nonceEnd := saltEnd + nonceLen

	return &EncryptedBlob{
		Params:     params,
		Salt:       raw[10:saltEnd],
		Nonce:      raw[saltEnd:nonceEnd],
		CipherText: raw[nonceEnd:],
	}, nil
}
