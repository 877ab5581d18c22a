// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. The same expression tree
// always produces identical tag bytes, which is what lets cells
// carrying the same visibility expression share storage-level
// deduplication downstream.
var encMode cbor.EncMode

// decMode is the CBOR decoder. UTF8DecodeInvalid is rejected and
// duplicate map keys are an error: a tag is produced only by this
// engine, so anything irregular is corruption, not a compatibility
// case to paper over. MaxNestedLevels is raised to the format
// maximum: every expression node costs two nesting levels (its map
// plus its children array), so the library default of 32 would
// reject deep expressions this engine itself encoded.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		UTF8:            cbor.UTF8RejectInvalid,
		MaxNestedLevels: 65535,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v. Trailing bytes after the first
// data item are an error.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data. Corrupt-tag logging uses it to show what a rejected tag
// contained when its bytes are still well-formed CBOR.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
