package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/report"
)

const (
	reportFile = "report.json"
	sealFile   = "seal.json"
)

// Archive writes the bundle for one analysis under its asset id:
// {asset_id}/report.json holding the full report and {asset_id}/seal.json
// holding the seal alone for quick inspection. Unsealed reports are
// refused; an archived report that cannot be verified later is not
// evidence.
func Archive(ctx context.Context, fs FileStore, r *report.Report) error {
	if r.Seal == nil {
		return errors.New("storage: refusing to archive an unsealed report")
	}
	dir, err := assetDir(r.Document.AssetID)
	if err != nil {
		return err
	}

	err = writeFile(ctx, fs, dir+"/"+reportFile, func(w io.Writer) error {
		return report.EncodeJSON(w, r)
	})
	if err != nil {
		return err
	}
	return writeFile(ctx, fs, dir+"/"+sealFile, func(w io.Writer) error {
		data, err := json.MarshalIndent(r.Seal, "", "  ")
		if err != nil {
			return fmt.Errorf("storage: encode seal: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	})
}

// ReadReport loads an archived bundle. The embedded document is schema
// checked by the decoder before anyone trusts its hashes.
func ReadReport(ctx context.Context, fs FileStore, assetID string) (*report.Report, error) {
	dir, err := assetDir(assetID)
	if err != nil {
		return nil, err
	}
	rc, err := fs.Read(ctx, dir+"/"+reportFile)
	if err != nil {
		return nil, fmt.Errorf("storage: open archived report for %s: %w", assetID, err)
	}
	defer rc.Close()
	return report.DecodeJSON(rc)
}

// assetDir validates an asset id for use as an archive directory. Ids
// derive from file stems, but a crafted id must not escape the store.
func assetDir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("storage: asset id %q cannot name an archive directory", id)
	}
	return id, nil
}

func writeFile(ctx context.Context, fs FileStore, path string, fill func(io.Writer) error) error {
	w, err := fs.Write(ctx, path)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := fill(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: finish %s: %w", path, err)
	}
	return nil
}
