// Package savefile opens compressed save archives and exposes the single
// XML payload they contain.
package savefile

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrCorruptArchive marks an archive that is unreadable or whose payload
// is missing or ambiguous. Errors returned by Read wrap it.
var ErrCorruptArchive = errors.New("corrupt save archive")

// A save holds exactly one match on one map, so payloads are bounded.
const maxPayloadBytes = 256 << 20

// Read opens the archive at path and returns the bytes of the single XML
// document inside it. Directories in the archive are ignored; anything
// other than exactly one regular .xml entry is a corrupt archive.
func Read(path string) ([]byte, error) {
	name := filepath.Base(path)

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, name, err)
	}
	defer r.Close()

	var payload *zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if payload != nil {
			return nil, fmt.Errorf("%w: %s: multiple payload files", ErrCorruptArchive, name)
		}
		payload = f
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: %s: no payload file", ErrCorruptArchive, name)
	}
	if !strings.EqualFold(filepath.Ext(payload.Name), ".xml") {
		return nil, fmt.Errorf("%w: %s: payload %s is not XML", ErrCorruptArchive, name, payload.Name)
	}

	rc, err := payload.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: opening payload: %v", ErrCorruptArchive, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading payload: %v", ErrCorruptArchive, name, err)
	}
	if len(data) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: %s: payload exceeds %d bytes", ErrCorruptArchive, name, maxPayloadBytes)
	}
	return data, nil
}
