package services

import (
	"archive/zip"
	"context"
	"io"
	"path"
	"strings"

	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/google/uuid"
)

// ArchiveName is the download name of a project's zip archive.
func ArchiveName(projectID uuid.UUID) string {
	return "project-" + projectID.String() + ".zip"
}

// WriteArchive zips every file of the project into w. When the pipeline
// emitted the same path more than once, the latest emission wins.
func WriteArchive(ctx context.Context, svc ProjectService, projectID uuid.UUID, w io.Writer) error {
	files, err := svc.ListFiles(ctx, projectID)
	if err != nil {
		return err
	}

	latest := make(map[string]int, len(files))
	order := make([]string, 0, len(files))
	for i, f := range files {
		name := archivePath(f.Filename)
		if _, seen := latest[name]; !seen {
			order = append(order, name)
		}
		latest[name] = i
	}

	zw := zip.NewWriter(w)
	for _, name := range order {
		f := files[latest[name]]
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: f.CreatedAt}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "write archive entry failed")
		}
		if _, err := io.WriteString(fw, f.Content); err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "write archive entry failed")
		}
	}
	if err := zw.Close(); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "finish archive failed")
	}
	return nil
}

// archivePath keeps generated paths relative and inside the archive root.
func archivePath(filename string) string {
	p := path.Clean("/" + strings.ReplaceAll(filename, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}
