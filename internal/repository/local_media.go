package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/mansoorceksport/retailermedia/internal/logger"
	"github.com/spf13/afero"
)

const (
	mediaDirMode  = 0o755
	mediaFileMode = 0o644
)

// LocalMediaUploader writes uploads below a media root on an afero filesystem
type LocalMediaUploader struct {
	fs   afero.Fs
	root string
}

// NewLocalMediaUploader creates an uploader rooted at root
func NewLocalMediaUploader(fs afero.Fs, root string) *LocalMediaUploader {
	return &LocalMediaUploader{
		fs:   fs,
		root: root,
	}
}

// AbsolutePath resolves a media-relative path
func (u *LocalMediaUploader) AbsolutePath(rel string) string {
	return filepath.Join(u.root, filepath.FromSlash(rel))
}

// Save validates and writes file into destination.
// With AllowRenameFiles a taken name becomes name_1, name_2, ...; names are
// claimed with O_EXCL so concurrent uploads never share a file.
func (u *LocalMediaUploader) Save(ctx context.Context, file *domain.UploadedFile, destination string, opts domain.SaveOptions) (*domain.SavedFile, error) {
	if err := checkUpload(file, opts); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewIOError("The file cannot be saved.", err)
	}

	name := correctFileName(file.Name)
	dir := u.AbsolutePath(destination)
	prefix := ""
	if opts.FilesDispersion {
		prefix = dispersionPath(name)
		dir = filepath.Join(dir, filepath.FromSlash(prefix))
	}

	if err := u.fs.MkdirAll(dir, mediaDirMode); err != nil {
		return nil, domain.NewIOError("Destination folder is not writable or does not exists.", err)
	}

	f, finalName, err := u.create(dir, name, opts.AllowRenameFiles)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(dir, finalName)

	written, err := io.Copy(f, limitContent(file.Content, opts.MaxFileSizeKB))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && exceedsLimit(written, opts.MaxFileSizeKB) {
		err = domain.NewFileTooLargeError(opts.MaxFileSizeKB)
	}
	if err != nil {
		if rmErr := u.fs.Remove(target); rmErr != nil {
			logger.Warnf("failed to remove partial upload %s: %v", target, rmErr)
		}
		var uploadErr *domain.UploadError
		if errors.As(err, &uploadErr) {
			return nil, uploadErr
		}
		return nil, domain.NewIOError("The file cannot be saved.", err)
	}

	return &domain.SavedFile{
		Name: finalName,
		File: prefix + "/" + finalName,
		Size: written,
		Type: file.ContentType,
		Path: dir,
	}, nil
}

func (u *LocalMediaUploader) create(dir, name string, allowRename bool) (afero.File, string, error) {
	if !allowRename {
		f, err := u.fs.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mediaFileMode)
		if err != nil {
			return nil, "", domain.NewIOError("The file cannot be saved.", err)
		}
		return f, name, nil
	}

	for attempt := 0; attempt < maxRenameAttempts; attempt++ {
		candidate := candidateName(name, attempt)
		f, err := u.fs.OpenFile(filepath.Join(dir, candidate), os.O_CREATE|os.O_EXCL|os.O_WRONLY, mediaFileMode)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", domain.NewIOError("The file cannot be saved.", err)
		}
	}
	return nil, "", domain.NewIOError("The file cannot be saved.", errors.New("no free file name"))
}
