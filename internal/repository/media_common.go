package repository

import (
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/mansoorceksport/retailermedia/internal/domain"
)

// maxRenameAttempts bounds the name_N probing on collision
const maxRenameAttempts = 1000

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.]+`)
	onlyUnderscores = regexp.MustCompile(`^_+$`)
)

// checkUpload runs the checks shared by every uploader before anything is written
func checkUpload(file *domain.UploadedFile, opts domain.SaveOptions) error {
	if file == nil || file.Name == "" || file.Content == nil {
		return domain.ErrFileNotUploaded
	}
	if !extensionAllowed(fileExtension(file.Name), opts.AllowedExtensions) {
		return domain.ErrDisallowedFileType
	}
	for _, validate := range opts.Validators {
		if err := validate(file); err != nil {
			return err
		}
	}
	return nil
}

// fileExtension returns the lowercase extension without the dot
func fileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// extensionAllowed accepts everything when allowed is empty
func extensionAllowed(ext string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return true
		}
	}
	return false
}

// correctFileName drops any client path and replaces unsafe characters
func correctFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" || onlyUnderscores.MatchString(base) || strings.Trim(base, ".") == "" {
		return "file" + ext
	}
	return name
}

// candidateName returns name for attempt 0 and base_N.ext afterwards
func candidateName(name string, attempt int) string {
	if attempt == 0 {
		return name
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(attempt) + ext
}

// dispersionPath spreads files over two levels named after their first characters
func dispersionPath(name string) string {
	var parts []string
	for i := 0; i < 2 && i < len(name); i++ {
		c := strings.ToLower(name[i : i+1])
		if c == "." {
			c = "_"
		}
		parts = append(parts, c)
	}
	return "/" + strings.Join(parts, "/")
}

// limitContent stops reading one byte past maxKB so oversize streams are detectable
func limitContent(r io.Reader, maxKB int64) io.Reader {
	if maxKB <= 0 {
		return r
	}
	return io.LimitReader(r, maxKB*1024+1)
}

func exceedsLimit(written, maxKB int64) bool {
	return maxKB > 0 && written > maxKB*1024
}
