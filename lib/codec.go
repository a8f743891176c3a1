package lib

import (
	"encoding/hex"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

/* This file implements the json codec shared by the config, the storage records and the request/response frames */

// cdc is a drop in replacement of encoding/json
var cdc = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON() serializes a message into a JSON byte slice
func MarshalJSON(message any) ([]byte, ErrorI) {
	bz, err := cdc.Marshal(message)
	if err != nil {
		return nil, ErrJSONMarshal(err)
	}
	return bz, nil
}

// MarshalJSONIndent() serializes a message into an indented JSON byte slice
func MarshalJSONIndent(message any) ([]byte, ErrorI) {
	bz, err := cdc.MarshalIndent(message, "", "  ")
	if err != nil {
		return nil, ErrJSONMarshal(err)
	}
	return bz, nil
}

// MarshalJSONIndentString() serializes a message into an indented JSON string
func MarshalJSONIndentString(message any) (string, ErrorI) {
	bz, err := MarshalJSONIndent(message)
	return string(bz), err
}

// UnmarshalJSON() deserializes a JSON byte slice into the specified object
func UnmarshalJSON(bz []byte, ptr any) ErrorI {
	if err := cdc.Unmarshal(bz, ptr); err != nil {
		return ErrJSONUnmarshal(err)
	}
	return nil
}

// NewJSONFromFile() reads a json object from file
func NewJSONFromFile(o any, dataDirPath, filePath string) ErrorI {
	bz, err := os.ReadFile(filepath.Join(dataDirPath, filePath))
	if err != nil {
		return ErrReadFile(err)
	}
	return UnmarshalJSON(bz, o)
}

// SaveJSONToFile() saves a json object to a file
func SaveJSONToFile(j any, dataDirPath, filePath string) (err ErrorI) {
	bz, err := MarshalJSONIndent(j)
	if err != nil {
		return
	}
	if e := os.WriteFile(filepath.Join(dataDirPath, filePath), bz, 0600); e != nil {
		return ErrWriteFile(e)
	}
	return
}

// HexBytes is a byte slice that renders as a hex string in json
type HexBytes []byte

// NewHexBytesFromString() decodes a hex string
func NewHexBytesFromString(s string) (HexBytes, ErrorI) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidArgument(err.Error())
	}
	return bz, nil
}

// String() returns the hex encoding
func (x HexBytes) String() string { return hex.EncodeToString(x) }

// MarshalJSON() is the json.Marshaller implementation for HexBytes
func (x HexBytes) MarshalJSON() ([]byte, error) { return cdc.Marshal(x.String()) }

// UnmarshalJSON() is the json.Unmarshaler implementation for HexBytes
func (x *HexBytes) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err = cdc.Unmarshal(b, &s); err != nil {
		return
	}
	*x, err = hex.DecodeString(s)
	return
}
