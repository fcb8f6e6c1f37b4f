package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atinyakov/daybook/internal/service"
)

// FileDeliverer writes delivered documents into Dir.
type FileDeliverer struct {
	Dir string
	// Written is set to the path of the last file written.
	Written string
}

// Deliver decodes base64Data and writes it to Dir/fileName.
func (d *FileDeliverer) Deliver(ctx context.Context, base64Data, fileName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	name := filepath.Base(fileName)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid file name %q", fileName)
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	d.Written = path
	return nil
}

// Save hands an exported document to d. Failures wrap service.ErrDelivery.
func Save(ctx context.Context, d service.Deliverer, e *Export) error {
	if err := d.Deliver(ctx, e.Base64, e.FileName); err != nil {
		return fmt.Errorf("%w: %w", service.ErrDelivery, err)
	}
	return nil
}
