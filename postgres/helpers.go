// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"strings"

	"github.com/diffeo/go-collection/collection"
	"github.com/ugorji/go/codec"
)

// record <-> binary encoders.  Records travel to and from the JSONB
// column as plain JSON text.

var jsonHandle codec.JsonHandle

func recordToBytes(rec collection.Record) (out []byte, err error) {
	encoder := codec.NewEncoderBytes(&out, &jsonHandle)
	err = encoder.Encode(rec)
	return
}

func bytesToRecord(in []byte) (out collection.Record, err error) {
	decoder := codec.NewDecoderBytes(in, &jsonHandle)
	err = decoder.Decode(&out)
	return
}

// likePattern converts a plain substring into a LIKE/ILIKE pattern
// matching that substring anywhere, quoting the pattern
// metacharacters.
func likePattern(substring string) string {
	quoter := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + quoter.Replace(substring) + "%"
}
